package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/forayhq/foray/internal/dbpool"
	"github.com/forayhq/foray/internal/middleware"
	"github.com/forayhq/foray/internal/security"
	"github.com/forayhq/foray/internal/service"
	"github.com/forayhq/foray/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Graph       GraphService
	Discovery   DiscoveryService
	Combiner    CombinationService
	Audit       AuditRepository
	Admin       AdminService
	UserLookup  middleware.UserLookup
	EmbedWorker *service.EmbedWorker // used by admin handler only
	CORSOrigins []string
	Version     string
	OllamaURL   string
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version, deps.OllamaURL)
	interests := NewInterestHandler(deps.Graph, log)
	nodes := NewNodeHandler(deps.Graph, log)
	discovery := NewDiscoveryHandler(deps.Discovery, deps.Hub, log)
	combinations := NewCombinationHandler(deps.Combiner, deps.Graph, log)
	stats := NewStatsHandler(deps.Graph, log)
	audit := NewAuditHandler(deps.Audit, log)
	admin := NewAdminHandler(deps.Admin, deps.EmbedWorker, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	bfGuard := security.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	api.Use(middleware.AuthMiddleware(middleware.NewCachedUserLookup(ctx, deps.UserLookup), log, bfGuard))

	// Interests.
	api.POST("/interests", interests.Create)
	api.GET("/interests", interests.List)
	api.DELETE("/interests/:name", interests.Remove)

	// Nodes (read-only; nodes are created via interests and feedback).
	api.GET("/nodes", nodes.List)
	api.GET("/nodes/:id", nodes.Get)

	// Discovery and feedback.
	api.POST("/discovery/run", discovery.Run)
	api.POST("/feedback", discovery.Feedback)

	// Combinations.
	api.POST("/combinations/synthesize", combinations.Synthesize)
	api.POST("/combinations", combinations.Accept)

	// Stats.
	api.GET("/stats", stats.GetStats)

	// Audit.
	api.GET("/audit", audit.Query)
	api.DELETE("/audit", audit.Purge)

	// Admin.
	api.POST("/admin/backfill-embeddings", admin.BackfillEmbeddings)

	// WebSocket endpoint.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, deps.UserLookup))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
