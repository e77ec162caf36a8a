// Package tasksrepobridge exposes the task service over HTTP and WebSocket.
package tasksrepobridge

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/jrazmi/minimaltodo/core/services/taskservice"
	"github.com/jrazmi/minimaltodo/infrastructure/web"
	"github.com/jrazmi/minimaltodo/sdk/logger"
)

// Config holds configuration for the Task bridge
type Config struct {
	Log     *logger.Logger
	Service *taskservice.Service

	// StoreName labels the backend in /health.
	StoreName string
	// StatusCheck pings the backend for /health. Nil means always healthy.
	StatusCheck func(ctx context.Context) error
	// AllowedOrigins limits browser WebSocket connections; "*" allows any.
	AllowedOrigins []string

	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Task
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg)

	group.GET("/tasks", b.httpList, cfg.Middleware...)
	group.POST("/tasks", b.httpCreate, cfg.Middleware...)
	group.GET("/tasks/export.pdf", b.httpExportPDF, cfg.Middleware...)
	group.GET("/tasks/live", b.httpLive, cfg.Middleware...)
	group.PUT("/tasks/{task_id}", b.httpUpdate, cfg.Middleware...)
	group.PATCH("/tasks/{task_id}/toggle", b.httpToggle, cfg.Middleware...)
	group.DELETE("/tasks/{task_id}", b.httpDelete, cfg.Middleware...)
	group.GET("/health", b.httpHealth, cfg.Middleware...)
}

type bridge struct {
	log         *logger.Logger
	service     *taskservice.Service
	storeName   string
	statusCheck func(ctx context.Context) error
	upgrader    websocket.Upgrader
}

func newBridge(cfg Config) *bridge {
	b := &bridge{
		log:         cfg.Log,
		service:     cfg.Service,
		storeName:   cfg.StoreName,
		statusCheck: cfg.StatusCheck,
	}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return b
}
