package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"sick-fits/internal/domain"
)

type userResolver struct {
	u *domain.User
}

func newUser(u *domain.User) *userResolver {
	if u == nil {
		return nil
	}
	return &userResolver{u: u}
}

func (r *userResolver) ID() graphql.ID          { return graphql.ID(r.u.ID) }
func (r *userResolver) Name() string            { return r.u.Name }
func (r *userResolver) Email() string           { return r.u.Email }
func (r *userResolver) Permissions() []string   { return r.u.Permissions.Strings() }
func (r *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }

type itemResolver struct {
	root *Resolver
	it   *domain.Item
}

func (r *Resolver) newItem(it *domain.Item) *itemResolver {
	if it == nil {
		return nil
	}
	return &itemResolver{root: r, it: it}
}

func (r *itemResolver) ID() graphql.ID          { return graphql.ID(r.it.ID) }
func (r *itemResolver) Title() string           { return r.it.Title }
func (r *itemResolver) Description() string     { return r.it.Description }
func (r *itemResolver) Price() int32            { return int32(r.it.Price) }
func (r *itemResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.it.CreatedAt} }
func (r *itemResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.it.UpdatedAt} }

func (r *itemResolver) Image() *string      { return optional(r.it.Image) }
func (r *itemResolver) LargeImage() *string { return optional(r.it.LargeImage) }

// User is the owner; it is loaded on demand when the item came without it.
func (r *itemResolver) User(ctx context.Context) (*userResolver, error) {
	if r.it.User != nil {
		return newUser(r.it.User), nil
	}
	u, err := r.root.auth.Me(ctx, r.it.UserID)
	if err != nil {
		return nil, r.root.fail(ctx, "item.user", err)
	}
	return newUser(u), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type successResolver struct {
	msg string
}

func (r *successResolver) Message() *string { return &r.msg }

type connectionResolver struct {
	root *Resolver
}

func (r *connectionResolver) Aggregate() *aggregateResolver { return &aggregateResolver{root: r.root} }

type aggregateResolver struct {
	root *Resolver
}

func (r *aggregateResolver) Count(ctx context.Context) (int32, error) {
	n, err := r.root.items.Count(ctx)
	if err != nil {
		return 0, r.root.fail(ctx, "itemsConnection", err)
	}
	return int32(n), nil
}
