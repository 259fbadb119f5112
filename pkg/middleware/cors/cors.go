package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	defaultHeaders = []string{"Content-Type", "X-Requested-With", "X-Request-ID"}
	exposedHeaders = "X-Request-ID, Content-Disposition, X-Export-Rows"
)

// Matcher reports whether a browser origin is allowed. An empty allow list admits every origin.
type Matcher struct {
	allowAll bool
	origins  map[string]struct{}
}

// NewMatcher builds a matcher over allowedOrigins. Trailing slashes are ignored.
func NewMatcher(allowedOrigins []string) Matcher {
	m := Matcher{allowAll: len(allowedOrigins) == 0, origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		m.origins[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return m
}

// Allows reports whether origin may call the API.
func (m Matcher) Allows(origin string) bool {
	if m.allowAll {
		return true
	}
	_, ok := m.origins[strings.TrimRight(origin, "/")]
	return ok
}

// CheckOrigin adapts the matcher to websocket upgraders. Requests without an Origin header are
// not browser initiated and pass.
func (m Matcher) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || m.Allows(origin)
}

// New returns a CORS middleware that honors a list of allowed origins.
// extraHeaders are appended to the allowed request headers.
func New(allowedOrigins []string, extraHeaders ...string) gin.HandlerFunc {
	matcher := NewMatcher(allowedOrigins)
	headers := strings.Join(append(append([]string{}, defaultHeaders...), extraHeaders...), ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && matcher.Allows(origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && matcher.allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", headers)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposedHeaders)
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
