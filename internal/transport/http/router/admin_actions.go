package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sick-fits/internal/domain"
	httpez "sick-fits/internal/transport/http/ez"
	mdw "sick-fits/internal/transport/http/middleware"
)

// AdminUsers is the slice of the auth service the admin API drives.
type AdminUsers interface {
	Users(ctx context.Context, actorID string, f domain.UserFilter) ([]domain.User, int64, error)
	UpdatePermissions(ctx context.Context, actorID, targetID string, permissions []string) (*domain.User, error)
}

type userRow struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toRow(u *domain.User) userRow {
	return userRow{ID: u.ID, Email: u.Email, Name: u.Name, Permissions: u.Permissions.Strings(), CreatedAt: u.CreatedAt}
}

func mountAdminActions(e httpez.EZ, users AdminUsers) {
	// GET /admin/v1/users
	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"`
	}
	type listOut struct {
		Total int64     `json:"total"`
		Items []userRow `json:"items"`
	}
	httpez.RegisterAction(e, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			if in.Offset < 0 {
				in.Offset = 0
			}
			us, total, err := users.Users(c.Request.Context(), c.GetString(mdw.KeyUserID),
				domain.UserFilter{Offset: in.Offset, Limit: in.Limit, Query: in.Q})
			if err != nil {
				return listOut{}, err
			}
			out := listOut{Total: total, Items: make([]userRow, 0, len(us))}
			for i := range us {
				out.Items = append(out.Items, toRow(&us[i]))
			}
			return out, nil
		},
	})

	// PUT /admin/v1/users/:id/permissions
	type permsIn struct {
		ID          string   `uri:"id" binding:"required"`
		Permissions []string `json:"permissions" binding:"required"`
	}
	httpez.RegisterAction(e, httpez.Action[permsIn, userRow]{
		Method: http.MethodPut,
		Path:   "/users/:id/permissions",
		Binder: httpez.BindURIJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *permsIn) (userRow, error) {
			u, err := users.UpdatePermissions(c.Request.Context(), c.GetString(mdw.KeyUserID), in.ID, in.Permissions)
			if err != nil {
				return userRow{}, err
			}
			return toRow(u), nil
		},
	})
}
