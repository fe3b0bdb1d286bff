package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"sick-fits/internal/core/auth"
	"sick-fits/internal/domain"
	"sick-fits/internal/service"
)

// Resolver is the root for both queries and mutations.
type Resolver struct {
	auth    *service.AuthService
	items   *service.ItemService
	cookies auth.Cookies
	log     *zap.Logger
}

type Deps struct {
	Auth    *service.AuthService
	Items   *service.ItemService
	Cookies auth.Cookies
	Log     *zap.Logger
}

func NewResolver(d Deps) *Resolver {
	r := &Resolver{auth: d.Auth, items: d.Items, cookies: d.Cookies, log: d.Log}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// NewSchema parses the schema against a resolver; it panics on a schema and
// resolver mismatch, which is a programming error.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(Schema, r, graphql.MaxDepth(8))
}

func (r *Resolver) fail(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) == domain.KindInternal {
		r.log.Error("graphql resolver failed",
			zap.String("op", op),
			zap.String("user_id", auth.UserIDFrom(ctx)),
			zap.Error(err))
	}
	return &queryError{err: err}
}

func (r *Resolver) attach(ctx context.Context, token string) {
	if w, ok := auth.ResponseWriterFrom(ctx); ok {
		r.cookies.Attach(w, token)
	}
}

/* ---------- queries ---------- */

func (r *Resolver) Items(ctx context.Context, args struct {
	Skip    *int32
	First   *int32
	OrderBy *string
}) ([]*itemResolver, error) {
	f := domain.ItemFilter{}
	if args.Skip != nil {
		f.Skip = int(*args.Skip)
	}
	if args.First != nil {
		f.First = int(*args.First)
	}
	if args.OrderBy != nil {
		f.OrderBy = domain.ItemOrder(*args.OrderBy)
	}
	items, err := r.items.Items(ctx, f)
	if err != nil {
		return nil, r.fail(ctx, "items", err)
	}
	out := make([]*itemResolver, 0, len(items))
	for i := range items {
		out = append(out, r.newItem(&items[i]))
	}
	return out, nil
}

func (r *Resolver) Item(ctx context.Context, args struct{ Where struct{ ID graphql.ID } }) (*itemResolver, error) {
	it, err := r.items.Item(ctx, string(args.Where.ID))
	if err != nil {
		return nil, r.fail(ctx, "item", err)
	}
	return r.newItem(it), nil
}

func (r *Resolver) ItemsConnection() *connectionResolver { return &connectionResolver{root: r} }

// Me is null for anonymous callers rather than an error.
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	u, err := r.auth.Me(ctx, auth.UserIDFrom(ctx))
	if err != nil {
		return nil, r.fail(ctx, "me", err)
	}
	return newUser(u), nil
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	users, _, err := r.auth.Users(ctx, auth.UserIDFrom(ctx), domain.UserFilter{})
	if err != nil {
		return nil, r.fail(ctx, "users", err)
	}
	out := make([]*userResolver, 0, len(users))
	for i := range users {
		out = append(out, newUser(&users[i]))
	}
	return out, nil
}

/* ---------- mutations ---------- */

func (r *Resolver) CreateItem(ctx context.Context, args struct {
	Title       string
	Description string
	Price       int32
	Image       *string
	LargeImage  *string
}) (*itemResolver, error) {
	in := service.CreateItemInput{
		Title:       args.Title,
		Description: args.Description,
		Price:       int(args.Price),
	}
	if args.Image != nil {
		in.Image = *args.Image
	}
	if args.LargeImage != nil {
		in.LargeImage = *args.LargeImage
	}
	it, err := r.items.CreateItem(ctx, auth.UserIDFrom(ctx), in)
	if err != nil {
		return nil, r.fail(ctx, "createItem", err)
	}
	return r.newItem(it), nil
}

func (r *Resolver) UpdateItem(ctx context.Context, args struct {
	ID          graphql.ID
	Title       *string
	Description *string
	Price       *int32
}) (*itemResolver, error) {
	p := domain.ItemPatch{Title: args.Title, Description: args.Description}
	if args.Price != nil {
		price := int(*args.Price)
		p.Price = &price
	}
	it, err := r.items.UpdateItem(ctx, auth.UserIDFrom(ctx), string(args.ID), p)
	if err != nil {
		return nil, r.fail(ctx, "updateItem", err)
	}
	return r.newItem(it), nil
}

func (r *Resolver) DeleteItem(ctx context.Context, args struct{ ID graphql.ID }) (*itemResolver, error) {
	it, err := r.items.DeleteItem(ctx, auth.UserIDFrom(ctx), string(args.ID))
	if err != nil {
		return nil, r.fail(ctx, "deleteItem", err)
	}
	return r.newItem(it), nil
}

func (r *Resolver) Signup(ctx context.Context, args struct {
	Email    string
	Password string
	Name     string
}) (*userResolver, error) {
	s, err := r.auth.Signup(ctx, service.SignupInput{Email: args.Email, Password: args.Password, Name: args.Name})
	if err != nil {
		return nil, r.fail(ctx, "signup", err)
	}
	r.attach(ctx, s.Token)
	return newUser(s.User), nil
}

func (r *Resolver) Signin(ctx context.Context, args struct {
	Email    string
	Password string
}) (*userResolver, error) {
	s, err := r.auth.Signin(ctx, args.Email, args.Password)
	if err != nil {
		return nil, r.fail(ctx, "signin", err)
	}
	r.attach(ctx, s.Token)
	return newUser(s.User), nil
}

func (r *Resolver) Signout(ctx context.Context) *successResolver {
	if w, ok := auth.ResponseWriterFrom(ctx); ok {
		r.cookies.Clear(w)
	}
	return &successResolver{msg: "Goodbye!"}
}

func (r *Resolver) RequestReset(ctx context.Context, args struct{ Email string }) (*successResolver, error) {
	if err := r.auth.RequestReset(ctx, args.Email); err != nil {
		return nil, r.fail(ctx, "requestReset", err)
	}
	return &successResolver{msg: "Thanks!"}, nil
}

func (r *Resolver) ResetPassword(ctx context.Context, args struct {
	ResetToken      string
	Password        string
	ConfirmPassword string
}) (*userResolver, error) {
	s, err := r.auth.ResetPassword(ctx, args.ResetToken, args.Password, args.ConfirmPassword)
	if err != nil {
		return nil, r.fail(ctx, "resetPassword", err)
	}
	r.attach(ctx, s.Token)
	return newUser(s.User), nil
}

func (r *Resolver) UpdatePermissions(ctx context.Context, args struct {
	Permissions []string
	UserID      graphql.ID
}) (*userResolver, error) {
	u, err := r.auth.UpdatePermissions(ctx, auth.UserIDFrom(ctx), string(args.UserID), args.Permissions)
	if err != nil {
		return nil, r.fail(ctx, "updatePermissions", err)
	}
	return newUser(u), nil
}
