package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func operatorRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Operator("admin@marketplace.local"))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, OperatorFromContext(c))
	})
	return router
}

func TestOperatorUsesHeader(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(OperatorHeader, "  maria.lopez@marketplace.local ")
	operatorRouter().ServeHTTP(w, req)

	assert.Equal(t, "maria.lopez@marketplace.local", w.Body.String())
}

func TestOperatorFallsBackToDefault(t *testing.T) {
	for name, header := range map[string]string{
		"missing":  "",
		"too long": strings.Repeat("a", maxOperatorLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set(OperatorHeader, header)
			}
			operatorRouter().ServeHTTP(w, req)
			assert.Equal(t, "admin@marketplace.local", w.Body.String())
		})
	}
}

func TestOperatorLogFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, OperatorLogFields(c))

	c.Set(ContextOperatorKey, "ops")
	fields := OperatorLogFields(c)
	if assert.Len(t, fields, 1) {
		assert.Equal(t, "operator", fields[0].Key)
		assert.Equal(t, "ops", fields[0].String)
	}
}
