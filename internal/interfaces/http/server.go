package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
	"github.com/colmeia/hive/internal/interfaces/http/handlers"
	"github.com/colmeia/hive/internal/interfaces/websocket"
)

// Server is the console HTTP server.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// Config configures the HTTP server.
type Config struct {
	Host string
	Port int
	Mode string // local, production
}

// NewServer builds the router and the server.
func NewServer(cfg Config, app *application.App, hub *websocket.Hub, logger *zap.Logger) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logger))

	agentHandler := handlers.NewAgentHandler(app, logger)
	conversationHandler := handlers.NewConversationHandler(app, logger)
	messageHandler := handlers.NewMessageHandler(app, logger)
	settingsHandler := handlers.NewSettingsHandler(app, logger)
	transferHandler := handlers.NewTransferHandler(app, logger)

	setupRoutes(router, hub, agentHandler, conversationHandler, messageHandler, settingsHandler, transferHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: logger,
	}
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func setupRoutes(
	router *gin.Engine,
	hub *websocket.Hub,
	agents *handlers.AgentHandler,
	conversations *handlers.ConversationHandler,
	messages *handlers.MessageHandler,
	settings *handlers.SettingsHandler,
	transfer *handlers.TransferHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	if hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			hub.Serve(c.Writer, c.Request)
		})
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/agents", agents.List)
		v1.POST("/agents", agents.Create)
		v1.DELETE("/agents/:id", agents.Delete)
		v1.POST("/agents/generate-instruction", agents.GenerateInstruction)

		v1.GET("/conversations", conversations.List)
		v1.POST("/conversations", conversations.Create)
		v1.GET("/conversations/current", conversations.Current)
		v1.GET("/conversations/:id", conversations.Get)
		v1.PUT("/conversations/:id/select", conversations.Select)

		v1.POST("/conversations/:id/messages", messages.Send)

		v1.GET("/settings", settings.Get)
		v1.PUT("/settings", settings.Update)
		v1.PUT("/settings/memory", settings.SetMemory)

		v1.GET("/export", transfer.Export)
		v1.POST("/import", transfer.Import)
	}
}

// ginLogger is the zap request-log middleware.
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
