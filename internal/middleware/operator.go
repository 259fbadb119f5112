package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextOperatorKey is the gin context key storing the operator identity.
	ContextOperatorKey = "operator"
	// OperatorHeader carries the operator identity stamped on committed records.
	OperatorHeader = "X-Operator-ID"

	maxOperatorLength = 254
)

// Operator resolves the operator identity from OperatorHeader, falling back to defaultOperator.
// This is identity stamping only; nothing is authenticated.
func Operator(defaultOperator string) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if operator == "" || len(operator) > maxOperatorLength {
			operator = defaultOperator
		}
		c.Set(ContextOperatorKey, operator)
		c.Next()
	}
}

// OperatorFromContext returns the operator set by Operator, or "".
func OperatorFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(ContextOperatorKey)
}

// OperatorLogFields adds the operator to request log lines.
func OperatorLogFields(c *gin.Context) []zap.Field {
	if operator := OperatorFromContext(c); operator != "" {
		return []zap.Field{zap.String("operator", operator)}
	}
	return nil
}
