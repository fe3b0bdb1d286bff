package ez

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"sick-fits/internal/domain"
	resp "sick-fits/internal/transport/http/response"
)

// EZ registers envelope-returning handlers on a router group.
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Binder selects how the input is filled. The zero value binds nothing and
// leaves the handler to read c.Param or the form itself.
type Binder string

const (
	BindQuery Binder = "query"
	// BindURIJSON binds path params first, then the JSON body.
	BindURIJSON Binder = "uri+json"
)

// Action is a single non-CRUD endpoint: I is the bound input, O the data
// placed in the envelope.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool // require a session userId
	Handler func(c *gin.Context, in *I) (O, error)
}

func (e EZ) fail(c *gin.Context, err error) {
	if domain.KindOf(err) == domain.KindInternal {
		e.log.Error("request failed",
			zap.String("rid", c.GetString("rid")),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, resp.FromError(err))
}

func bind[I any](c *gin.Context, b Binder, in *I) error {
	switch b {
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindURIJSON:
		// path params are mapped without validation; the JSON bind validates
		// the whole struct once both halves are filled
		params := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = []string{p.Value}
		}
		if err := binding.MapFormWithTag(in, params, "uri"); err != nil {
			return err
		}
		return c.ShouldBindJSON(in)
	default:
		return nil
	}
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth && c.GetString("userId") == "" {
			e.fail(c, domain.AuthRequired())
			return
		}
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// POSTFILES handles a multipart upload of one or more files under fieldName.
func POSTFILES(e EZ, path, fieldName string, h func(c *gin.Context, files []*multipart.FileHeader) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "invalid multipart form: "+err.Error()))
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "no files uploaded"))
			return
		}
		data, err := h(c, files)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}
