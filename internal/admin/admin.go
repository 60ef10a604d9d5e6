// Package admin exposes a small gin HTTP surface for liveness,
// readiness, and a human-readable snapshot dump, separate from the
// gRPC surface. It only ever reads the same fan-out slot gRPC
// subscribers read — it can never affect CombinedBook state.
package admin

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/BullionBear/obagg/internal/fanout"
	"github.com/gin-gonic/gin"
)

// Server wires /healthz, /readyz, and /stats onto a gin router group.
type Server struct {
	hub   *fanout.Hub
	ready atomic.Bool
}

// NewServer creates an admin Server that reads hub's latest snapshot
// for /stats. MarkReady should be called once the processor has
// published at least one snapshot.
func NewServer(hub *fanout.Hub) *Server {
	return &Server{hub: hub}
}

// MarkReady flips /readyz from 503 to 200. Safe to call more than
// once or concurrently.
func (s *Server) MarkReady() {
	s.ready.Store(true)
}

// Register mounts the admin routes on rg.
func (s *Server) Register(rg gin.IRouter) {
	rg.GET("/healthz", s.healthz)
	rg.GET("/readyz", s.readyz)
	rg.GET("/stats", s.stats)
}

// @Summary Liveness probe
// @Description Always returns 200 once the process is running.
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness probe
// @Description Returns 200 once every adapter has initialised and at
// least one snapshot has been published, 503 otherwise.
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /readyz [get]
func (s *Server) readyz(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// statsResponse is the JSON shape returned by /stats.
type statsResponse struct {
	Spread  string      `json:"spread"`
	BestBid string      `json:"best_bid,omitempty"`
	BestAsk string      `json:"best_ask,omitempty"`
	Bids    int         `json:"bid_levels"`
	Asks    int         `json:"ask_levels"`
	Venues  []venueStat `json:"venues"`
}

// venueStat reports how long ago a venue's last update was applied to
// the combined book.
type venueStat struct {
	Venue                string  `json:"venue"`
	LastUpdateAgeSeconds float64 `json:"last_update_age_seconds"`
}

// @Summary Current book stats
// @Description Best bid/ask, spread, and per-venue last-update age of the latest published snapshot.
// @Produce json
// @Success 200 {object} statsResponse
// @Router /stats [get]
func (s *Server) stats(c *gin.Context) {
	snap := s.hub.Latest()
	resp := statsResponse{Spread: snap.Spread.String(), Bids: len(snap.Bids), Asks: len(snap.Asks)}
	if len(snap.Bids) > 0 {
		resp.BestBid = snap.Bids[0].Price.String()
	}
	if len(snap.Asks) > 0 {
		resp.BestAsk = snap.Asks[0].Price.String()
	}

	now := time.Now()
	resp.Venues = make([]venueStat, 0, len(snap.LastUpdate))
	for v, at := range snap.LastUpdate {
		resp.Venues = append(resp.Venues, venueStat{Venue: v.String(), LastUpdateAgeSeconds: now.Sub(at).Seconds()})
	}

	c.JSON(http.StatusOK, resp)
}
