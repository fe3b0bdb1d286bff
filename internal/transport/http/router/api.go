package router

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sick-fits/internal/core/server"
	"sick-fits/internal/domain"
	"sick-fits/internal/storage"
	gql "sick-fits/internal/transport/graphql"
	httpez "sick-fits/internal/transport/http/ez"
	mdw "sick-fits/internal/transport/http/middleware"
)

const maxUploadBytes = 10 << 20

type ImageUploader interface {
	Upload(ctx context.Context, name string, data []byte) (storage.ItemImages, error)
}

type Limits struct {
	RPS           float64
	Burst         int
	MaxConcurrent int64
	Timeout       time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.MaxConcurrent <= 0 {
		l.MaxConcurrent = 300
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

type APIDeps struct {
	Schema       *graphql.Schema
	Tokens       mdw.TokenParser
	Images       ImageUploader // nil disables uploads
	Health       func(ctx context.Context) error
	AllowOrigins []string
	Limits       Limits
}

func common(l *zap.Logger, lim Limits) []gin.HandlerFunc {
	lim = lim.withDefaults()
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst, 10*time.Minute),
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(maxUploadBytes + 1<<20),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	}
}

func health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	}
}

// NewAPIEngine serves the storefront: GraphQL, image uploads, health and
// metrics.
func NewAPIEngine(l *zap.Logger, d APIDeps) *gin.Engine {
	r := server.NewRouter(l, server.Options{AllowOrigins: d.AllowOrigins})
	r.Use(common(l, d.Limits)...)
	r.Use(mdw.Session(d.Tokens, l))

	r.GET("/health", health(d.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/graphql", gql.Handler(d.Schema))

	if d.Images != nil {
		api := r.Group("/api/v1")
		api.Use(mdw.RequireSession())
		mountUploads(httpez.New(api, l), d.Images)
	}
	return r
}

func mountUploads(e httpez.EZ, images ImageUploader) {
	httpez.POSTFILES(e, "/uploads", "file", func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		fh := files[0]
		if fh.Size > maxUploadBytes {
			return nil, domain.Validation("Image is too large")
		}
		data, err := readUpload(fh)
		if err != nil {
			return nil, domain.Internal("read upload", err)
		}
		out, err := images.Upload(c.Request.Context(), fh.Filename, data)
		switch {
		case errors.Is(err, storage.ErrNotAnImage):
			return nil, domain.Validation("Only jpeg and png images can be uploaded")
		case errors.Is(err, storage.ErrImageTooLarge):
			return nil, domain.Validation("Image dimensions are too large")
		}
		if err != nil {
			return nil, domain.Internal("upload image", err)
		}
		return out, nil
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}
