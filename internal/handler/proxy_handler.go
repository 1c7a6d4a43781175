package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/middleware"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

type ginContextKey struct{}

// ProxyHandler forwards API requests to the marketplace backend
type ProxyHandler struct {
	target *url.URL
	proxy  *httputil.ReverseProxy
}

// NewProxyHandler creates a proxy to baseURL. timeout bounds the wait for
// response headers; zero means no limit.
func NewProxyHandler(baseURL string, timeout time.Duration) (*ProxyHandler, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", baseURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	h := &ProxyHandler{target: target}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport:    transport,
		ErrorHandler: h.upstreamError,
	}
	return h, nil
}

// Forward proxies the request unchanged (path, query, headers, body)
func (h *ProxyHandler) Forward(c *gin.Context) {
	req := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
	h.proxy.ServeHTTP(c.Writer, req)
}

func (h *ProxyHandler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.RecordUpstreamError()
	logger.GetLogger().Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("backend", h.target.Host).
		Msg("backend unreachable")

	if c, ok := r.Context().Value(ginContextKey{}).(*gin.Context); ok {
		common.ErrorResponse(c, http.StatusBadGateway, "Backend unavailable", err)
		return
	}
	w.WriteHeader(http.StatusBadGateway)
}

// Health reports gateway liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
