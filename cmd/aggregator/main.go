package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/BullionBear/obagg/internal/admin"
	"github.com/BullionBear/obagg/internal/config"
	"github.com/BullionBear/obagg/internal/feed"
	"github.com/BullionBear/obagg/internal/feed/binance"
	"github.com/BullionBear/obagg/internal/feed/bitstamp"
	"github.com/BullionBear/obagg/internal/mirror"
	"github.com/BullionBear/obagg/internal/processor"
	"github.com/BullionBear/obagg/internal/rpc"
	"github.com/BullionBear/obagg/internal/rpc/orderbookpb"
	"github.com/BullionBear/obagg/internal/venue"
	"github.com/BullionBear/obagg/pkg/logger"
	"github.com/BullionBear/obagg/pkg/shutdown"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "c", "config/aggregator.json", "configuration file path")
	flag.Parse()

	logger.InitLogger()
	log := logger.Log

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	pair := strings.ToLower(strings.ReplaceAll(cfg.TradingPair, "-", ""))

	adapters := make([]feed.Adapter, 0, len(cfg.Exchanges))
	for _, name := range cfg.Exchanges {
		switch venue.Parse(name) {
		case venue.Binance:
			adapters = append(adapters, binance.New(pair, log))
		case venue.Bitstamp:
			adapters = append(adapters, bitstamp.New(pair, log))
		default:
			log.Error().Str("exchange", name).Msg("unsupported venue")
			os.Exit(1)
		}
	}

	var snapshotMirror *mirror.Mirror
	if cfg.MirrorEnabled() {
		snapshotMirror = mirror.Connect(cfg.NATS.URL, cfg.NATS.Subject, log)
	}

	proc := processor.New(adapters, cfg.MaxOrders, snapshotMirror, log)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	if err := proc.InitialiseExchanges(initCtx); err != nil {
		log.Error().Err(err).Msg("failed to initialise venue adapters")
		os.Exit(1)
	}

	down := shutdown.NewShutdown(log)

	driveCtx, cancelDrive := context.WithCancel(context.Background())
	go func() {
		if err := proc.DriveAndBroadcast(driveCtx); err != nil && driveCtx.Err() == nil {
			log.Error().Err(err).Msg("drive loop exited unexpectedly")
		}
	}()
	down.HookShutdownCallback("drive-loop", cancelDrive, 5*time.Second)

	adminServer := admin.NewServer(proc.Hub())
	readySub := proc.Subscribe()
	go func() {
		if _, err := readySub.Receive(driveCtx); err == nil {
			adminServer.MarkReady()
			log.Info().Msg("first snapshot published, admin server marked ready")
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.GRPCAddr).Msg("failed to bind gRPC listener")
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	orderbookpb.RegisterOrderbookAggregatorServer(grpcServer, rpc.NewServer(proc, log))
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server stopped")
		}
	}()
	down.HookShutdownCallback("grpc-server", grpcServer.GracefulStop, 10*time.Second)

	router := gin.New()
	router.Use(gin.Recovery())
	adminServer.Register(router)
	adminHTTP := &http.Server{Addr: cfg.AdminAddr, Handler: router}
	go func() {
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin HTTP server listening")
		if err := adminHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("admin HTTP server stopped")
		}
	}()
	down.HookShutdownCallback("admin-http", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adminHTTP.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("admin HTTP server shutdown error")
		}
	}, 10*time.Second)

	if snapshotMirror != nil {
		down.HookShutdownCallback("snapshot-mirror", snapshotMirror.Close, 5*time.Second)
	}

	down.WaitForShutdown(syscall.SIGINT, syscall.SIGTERM)
	fmt.Println("aggregator shut down")
}
