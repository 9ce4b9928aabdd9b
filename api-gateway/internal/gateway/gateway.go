// Package gateway forwards /api traffic to the owning service by path prefix.
package gateway

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/middleware"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

// Upstreams holds the base URL of each backing service.
type Upstreams struct {
	Identity   string
	Resource   string
	Sports     string
	Storefront string
}

// hop-by-hop headers are not forwarded in either direction.
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// Routes mounts the prefix proxies on r. Requests carrying a valid token get
// the caller's id and email forwarded as headers.
func Routes(r gin.IRouter, up Upstreams, client *http.Client) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	api := r.Group("/api", middleware.OptionalAuth())
	api.Any("/identity/*path", proxyTo(client, up.Identity))
	api.Any("/resource/*path", proxyTo(client, up.Resource))
	api.Any("/store/*path", proxyTo(client, up.Storefront))
	api.Any("/v1/*path", proxyTo(client, up.Sports))
}

func proxyTo(client *http.Client, serviceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var body io.Reader
		if c.Request.Body != nil {
			bodyBytes, err := io.ReadAll(c.Request.Body)
			if err != nil {
				middleware.RespondWithError(c, http.StatusBadRequest, "failed to read request body")
				return
			}
			body = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusInternalServerError, "failed to create request")
			return
		}
		copyHeaders(req.Header, c.Request.Header)

		// Identity headers only ever come from a verified token.
		req.Header.Del(HeaderUserID)
		req.Header.Del(HeaderUserEmail)
		if userID, ok := middleware.GetUserID(c); ok && userID != "" {
			req.Header.Set(HeaderUserID, userID)
			req.Header.Set(HeaderUserEmail, middleware.GetEmail(c))
		}

		resp, err := client.Do(req)
		if err != nil {
			log.WithError(err).WithField("target", targetURL).Error("proxy request failed")
			middleware.RespondWithError(c, http.StatusBadGateway, "service unavailable")
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadGateway, "failed to read response")
			return
		}

		copyHeaders(c.Writer.Header(), resp.Header)
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
