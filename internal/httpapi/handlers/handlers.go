// Package handlers implements the HTTP endpoints of the render
// service: job submission, log streaming, and health.
package handlers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"manimrunner/internal/pkg/logger"
	"manimrunner/internal/stream"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "manim-runner"

// Runner executes one rendering job and returns the public video URL.
type Runner interface {
	Execute(ctx context.Context, jobID, code string, metadata map[string]any) (string, error)
}

// Deps carries the collaborators handlers need.
type Deps struct {
	Registry *stream.Registry
	Runner   Runner
	Log      *logger.Logger

	// Redis is optional; when nil the deep health check skips it.
	Redis *redis.Client

	// Provider is the active storage provider name, for health output.
	Provider string

	// IdleTimeout is the streaming keepalive window. Defaults to 30s.
	IdleTimeout time.Duration
}

// Handler holds the endpoint implementations.
type Handler struct {
	registry    *stream.Registry
	runner      Runner
	log         *logger.Logger
	rdb         *redis.Client
	provider    string
	idleTimeout time.Duration
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	idle := d.IdleTimeout
	if idle <= 0 {
		idle = 30 * time.Second
	}

	return &Handler{
		registry:    d.Registry,
		runner:      d.Runner,
		log:         log.WithComponent("http"),
		rdb:         d.Redis,
		provider:    d.Provider,
		idleTimeout: idle,
	}
}
