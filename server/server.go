// Package server exposes the relay's HTTP surface: the webhook intake plus
// the health, debug, and root introspection endpoints.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"
	gocmd "github.com/goliatone/go-command"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/query"
	"github.com/goliatone/go-conversation-relay/webhooks"
)

// maxWebhookBodyBytes caps inbound payload reads. Conversation events are
// small; anything bigger is rejected before parsing.
const maxWebhookBodyBytes int64 = 1 << 20

// DeliveryProcessor runs one webhook delivery through the pipeline.
type DeliveryProcessor interface {
	Process(ctx context.Context, body []byte) webhooks.Outcome
}

// Server wires the pipeline and introspection queries behind gin.
type Server struct {
	cfg        core.Config
	processor  DeliveryProcessor
	deliveries gocmd.Querier[query.RecentDeliveriesMessage, []core.DeliveryEntry]
	logger     core.Logger
	engine     *gin.Engine
}

type Option func(*Server)

func WithLogger(logger core.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecentDeliveries enables the ledger section of the debug endpoint.
func WithRecentDeliveries(q gocmd.Querier[query.RecentDeliveriesMessage, []core.DeliveryEntry]) Option {
	return func(s *Server) {
		s.deliveries = q
	}
}

func New(cfg core.Config, processor DeliveryProcessor, options ...Option) *Server {
	server := &Server{
		cfg:       cfg,
		processor: processor,
		logger:    glog.Nop(),
	}
	for _, option := range options {
		option(server)
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/intercom-webhook", server.handleWebhook)
	engine.GET("/health", server.handleHealth)
	engine.GET("/debug", server.handleDebug)
	engine.GET("/", server.handleRoot)

	server.engine = engine
	return server
}

// Engine exposes the router for tests and embedding.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks serving on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		s.logger.Warn("webhook: read request body failed", "error", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid JSON",
		})
		return
	}
	if int64(len(body)) > maxWebhookBodyBytes {
		s.logger.Warn("webhook: payload exceeds size limit", "limit_bytes", maxWebhookBodyBytes)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid JSON",
		})
		return
	}
	if s.processor == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Asana client not configured",
		})
		return
	}
	outcome := s.processor.Process(c.Request.Context(), body)
	c.JSON(outcome.StatusCode, outcome.Body)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                  "healthy",
		"asana_client_configured": s.processor != nil,
		"environment_check": gin.H{
			"ASANA_ACCESS_TOKEN":       strings.TrimSpace(s.cfg.Directory.AccessToken) != "",
			"ASANA_PROJECT_GID":        strings.TrimSpace(s.cfg.Directory.ProjectGID) != "",
			"ASANA_TARGET_SECTION_GID": strings.TrimSpace(s.cfg.Directory.TargetSectionGID) != "",
		},
	})
}

func (s *Server) handleDebug(c *gin.Context) {
	payload := gin.H{
		"environment_variables": gin.H{
			"ASANA_ACCESS_TOKEN":       maskPresence(s.cfg.Directory.AccessToken),
			"ASANA_PROJECT_GID":        valueOrNotSet(s.cfg.Directory.ProjectGID),
			"ASANA_TARGET_SECTION_GID": valueOrNotSet(s.cfg.Directory.TargetSectionGID),
			"PORT":                     fmt.Sprintf("%d", s.cfg.Port),
			"DEBUG":                    fmt.Sprintf("%t", s.cfg.Debug),
		},
		"asana_client_initialized": s.processor != nil,
		"go_version":               runtime.Version(),
	}

	if s.deliveries != nil {
		entries, err := s.deliveries.Query(c.Request.Context(), query.RecentDeliveriesMessage{})
		if err != nil {
			mapped := core.MapError(err)
			s.logger.Warn("debug: delivery ledger read failed",
				"error", mapped,
				"text_code", mapped.TextCode,
			)
		} else {
			payload["recent_deliveries"] = entries
		}
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Intercom Webhook Handler",
		"endpoints": gin.H{
			"webhook": "/intercom-webhook",
			"health":  "/health",
			"debug":   "/debug",
		},
	})
}

func maskPresence(value string) string {
	if strings.TrimSpace(value) == "" {
		return "NOT SET"
	}
	return "***HIDDEN***"
}

func valueOrNotSet(value string) string {
	if strings.TrimSpace(value) == "" {
		return "NOT SET"
	}
	return value
}
