package graphql

import (
	"net/http"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"

	"sick-fits/internal/core/auth"
)

type request struct {
	Query         string                 `json:"query" binding:"required"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes one GraphQL request. The response writer rides along in
// the context so auth mutations can set and clear the session cookie.
func Handler(schema *graphql.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
			return
		}
		ctx := auth.WithResponseWriter(c.Request.Context(), c.Writer)
		res := schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
		c.JSON(http.StatusOK, res)
	}
}
