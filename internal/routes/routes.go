package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/config"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/handler"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/middleware"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/cache"
)

// Setup configures the gateway routes. redisClient and store may be nil;
// rate limiting and response caching are then skipped.
func Setup(
	router *gin.Engine,
	proxy *handler.ProxyHandler,
	store cache.Service,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limit := middleware.DefaultRateLimitConfig()
	limit.RequestsPerMinute = cfg.Gateway.RateLimitPerMinute

	// Public profiles (participant resolution, user search)
	users := router.Group("/api/auth/public/users",
		middleware.RateLimit(redisClient, limit),
		middleware.Cache(store, middleware.CacheConfig{
			TTL:       cfg.Gateway.UserCacheTTL,
			KeyPrefix: cache.PrefixPublicUser,
			Public:    true,
		}),
	)
	users.Any("/*path", proxy.Forward)

	// Direct messages need a caller
	dm := router.Group("/api/direct-messages",
		middleware.RequireBearer(),
		middleware.RateLimit(redisClient, limit),
	)
	dm.Any("", proxy.Forward)
	dm.Any("/*path", proxy.Forward)

	// Every other /api route goes straight through
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			proxy.Forward(c)
			return
		}
		common.ErrorResponse(c, http.StatusNotFound, "Route not found", nil)
	})
}
