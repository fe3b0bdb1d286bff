package ez

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sick-fits/internal/domain"
	resp "sick-fits/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, req *http.Request) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type renameIn struct {
	ID   string `uri:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

func TestRegisterAction(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User"); uid != "" {
			c.Set("userId", uid)
		}
	})
	e := New(r.Group("/v1"), nil)
	RegisterAction(e, Action[renameIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/things/:id",
		Binder: BindURIJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *renameIn) (gin.H, error) {
			switch in.Name {
			case "forbidden":
				return nil, domain.Forbidden("not yours")
			case "boom":
				return nil, errors.New("db down")
			}
			return gin.H{"id": in.ID, "name": in.Name}, nil
		},
	})

	put := func(body, user string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/v1/things/42", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if user != "" {
			req.Header.Set("X-User", user)
		}
		return req
	}

	env := do(t, r, put(`{"name":"hat"}`, ""))
	assert.Equal(t, resp.CodeUnauthorized, env.Code)

	env = do(t, r, put(`{"name":"hat"}`, "u1"))
	assert.Equal(t, resp.CodeOK, env.Code)
	assert.JSONEq(t, `{"id":"42","name":"hat"}`, string(env.Data))

	env = do(t, r, put(`{}`, "u1"))
	assert.Equal(t, resp.CodeBadRequest, env.Code)

	env = do(t, r, put(`{"name":"forbidden"}`, "u1"))
	assert.Equal(t, resp.CodeForbidden, env.Code)
	assert.Equal(t, "not yours", env.Msg)

	env = do(t, r, put(`{"name":"boom"}`, "u1"))
	assert.Equal(t, resp.CodeServerError, env.Code)
	assert.NotContains(t, env.Msg, "db down")
}

func TestPOSTFILES(t *testing.T) {
	r := gin.New()
	POSTFILES(New(r.Group(""), nil), "/upload", "file", func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		return gin.H{"name": files[0].Filename}, nil
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "hat.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("data"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	env := do(t, r, req)
	assert.Equal(t, resp.CodeOK, env.Code)
	assert.JSONEq(t, `{"name":"hat.png"}`, string(env.Data))

	var empty bytes.Buffer
	mw = multipart.NewWriter(&empty)
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/upload", &empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	env = do(t, r, req)
	assert.Equal(t, resp.CodeBadRequest, env.Code)
}

func TestRegisterAction_ZeroBinderAndQuery(t *testing.T) {
	type pageQ struct {
		Limit int `form:"limit,default=20"`
	}
	r := gin.New()
	e := New(r.Group(""), nil)
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/things/:id",
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"id": c.Param("id")}, nil
		},
	})
	RegisterAction(e, Action[pageQ, gin.H]{
		Method: http.MethodGet,
		Path:   "/things",
		Binder: BindQuery,
		Handler: func(_ *gin.Context, in *pageQ) (gin.H, error) {
			return gin.H{"limit": in.Limit}, nil
		},
	})

	env := do(t, r, httptest.NewRequest(http.MethodDelete, "/things/7", nil))
	assert.Equal(t, resp.CodeOK, env.Code)
	assert.JSONEq(t, `{"id":"7"}`, string(env.Data))

	env = do(t, r, httptest.NewRequest(http.MethodGet, "/things", nil))
	assert.JSONEq(t, `{"limit":20}`, string(env.Data))

	env = do(t, r, httptest.NewRequest(http.MethodGet, "/things?limit=abc", nil))
	assert.Equal(t, resp.CodeBadRequest, env.Code)
}
