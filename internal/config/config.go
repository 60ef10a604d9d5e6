package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// NATSConfig carries the optional supplemental snapshot mirror target.
// Leaving both fields empty disables the mirror; Validate rejects a
// config that sets only one of them.
type NATSConfig struct {
	URL     string `json:"url"`
	Subject string `json:"subject"`
}

// Config represents the aggregator's top-level configuration.
type Config struct {
	Exchanges   []string   `json:"exchanges"`
	TradingPair string     `json:"trading_pair"`
	MaxOrders   int        `json:"max_orders"`
	GRPCAddr    string     `json:"grpc_addr"`
	AdminAddr   string     `json:"admin_addr"`
	NATS        NATSConfig `json:"nats"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(filePath string) (*Config, error) {
	if filePath == "" {
		return nil, fmt.Errorf("config file path cannot be empty")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	config := Config{
		MaxOrders: 10,
		GRPCAddr:  "127.0.0.1:50051",
		AdminAddr: ":8080",
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", filePath, err)
	}

	return &config, nil
}

// Validate checks the configuration for the minimum shape the
// aggregator needs to start.
func (c *Config) Validate() error {
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("exchanges cannot be empty")
	}

	if c.TradingPair == "" {
		return fmt.Errorf("trading_pair cannot be empty")
	}

	if c.MaxOrders <= 0 || c.MaxOrders > 100 {
		return fmt.Errorf("max_orders must be a positive integer <= 100, got %d", c.MaxOrders)
	}

	if c.GRPCAddr == "" {
		return fmt.Errorf("grpc_addr cannot be empty")
	}

	if c.AdminAddr == "" {
		return fmt.Errorf("admin_addr cannot be empty")
	}

	// NATS is optional: either both fields are set, or both are empty.
	if (c.NATS.URL == "") != (c.NATS.Subject == "") {
		return fmt.Errorf("nats.url and nats.subject must both be set or both be empty")
	}

	return nil
}

// MirrorEnabled reports whether the optional NATS snapshot mirror
// should be started.
func (c *Config) MirrorEnabled() bool {
	return c.NATS.URL != "" && c.NATS.Subject != ""
}
