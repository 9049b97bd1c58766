package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/middleware"
	"github.com/jwalitptl/directory-admin/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimit  float64
	RateBurst  int
	CORSConfig middleware.CORSConfig
	SizeLimit  middleware.SizeLimitConfig
	// Metrics is optional.
	Metrics middleware.HTTPRecorder
}

type Router struct {
	engine  *gin.Engine
	health  Handler
	console []Handler
}

// NewRouter builds the engine with the core middleware chain. Console
// handlers are mounted under /api/v1/console by Setup.
func NewRouter(log *logger.Logger, health Handler, console []Handler, config RouterConfig) *Router {
	engine := gin.New() // Use New() instead of Default() for more control

	// Add core middlewares
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Toasts(),
		middleware.Logger(log),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	engine.Use(
		middleware.CORS(config.CORSConfig),
		middleware.ErrorHandler(log),
	)

	r := &Router{
		engine:  engine,
		health:  health,
		console: console,
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimit,
		Burst: config.RateBurst,
	})
	r.setup(rateLimiter, config.SizeLimit)
	return r
}

func (r *Router) setup(rl *middleware.RateLimiter, size middleware.SizeLimitConfig) {
	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Health check endpoints
	if r.health != nil {
		r.health.RegisterRoutes(api)
	}

	console := api.Group("/console")
	console.Use(rl.RateLimit(), middleware.SizeLimit(size))
	for _, h := range r.console {
		h.RegisterRoutes(console)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
