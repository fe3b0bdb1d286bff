package router

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sick-fits/internal/core/server"
	httpez "sick-fits/internal/transport/http/ez"
	mdw "sick-fits/internal/transport/http/middleware"
)

type AdminDeps struct {
	Users  AdminUsers
	Tokens mdw.TokenParser
	Health func(ctx context.Context) error
	Limits Limits
}

// NewAdminEngine serves the back-office REST API. Every /admin/v1 route needs
// a session; the permission gate runs in the service.
func NewAdminEngine(l *zap.Logger, d AdminDeps) *gin.Engine {
	r := server.NewRouter(l, server.Options{})
	r.Use(common(l, d.Limits)...)
	r.Use(mdw.Session(d.Tokens, l))

	r.GET("/health", health(d.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.RequireSession())
	mountAdminActions(httpez.New(admin, l), d.Users)
	return r
}
