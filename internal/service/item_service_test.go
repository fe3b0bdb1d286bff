package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sick-fits/internal/core/cache"
	"sick-fits/internal/domain"
)

type itemFixture struct {
	svc   *ItemService
	users *memUsers
	items *memItems
	owner *domain.User
}

func addUser(t *testing.T, users *memUsers, id string, perms ...domain.Permission) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: id + "@b.com", Name: id, Permissions: perms}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func newItemFixture(t *testing.T, c *cache.Cache) *itemFixture {
	t.Helper()
	users := newMemUsers()
	items := newMemItems(users)
	f := &itemFixture{
		svc:   NewItemService(ItemDeps{Items: items, Users: users, Cache: c, CacheTTL: time.Minute}),
		users: users,
		items: items,
		owner: addUser(t, users, "owner", domain.PermUser),
	}
	return f
}

func (f *itemFixture) create(t *testing.T) *domain.Item {
	t.Helper()
	it, err := f.svc.CreateItem(context.Background(), f.owner.ID, CreateItemInput{
		Title: "Hat", Description: "A fine hat", Price: 1500, Image: "i.jpg", LargeImage: "l.jpg",
	})
	require.NoError(t, err)
	return it
}

func ptr[T any](v T) *T { return &v }

func TestItemService_CreateItem(t *testing.T) {
	f := newItemFixture(t, nil)
	it := f.create(t)
	assert.Equal(t, f.owner.ID, it.UserID)
	assert.Equal(t, f.owner.ID, it.User.ID)

	got, err := f.svc.Item(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hat", got.Title)
}

func TestItemService_CreateItemRequiresSession(t *testing.T) {
	f := newItemFixture(t, nil)
	_, err := f.svc.CreateItem(context.Background(), "", CreateItemInput{Title: "x", Description: "y"})
	assert.Equal(t, domain.KindAuthRequired, domain.KindOf(err))
	assert.Equal(t, "You must be logged in to do that!", err.Error())

	_, err = f.svc.CreateItem(context.Background(), "ghost", CreateItemInput{Title: "x", Description: "y"})
	assert.Equal(t, domain.KindAuthRequired, domain.KindOf(err))

	n, _ := f.items.Count(context.Background())
	assert.Zero(t, n)
}

func TestItemService_CreateItemValidation(t *testing.T) {
	f := newItemFixture(t, nil)
	_, err := f.svc.CreateItem(context.Background(), f.owner.ID, CreateItemInput{Title: " ", Description: "y"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.svc.CreateItem(context.Background(), f.owner.ID, CreateItemInput{Title: "x", Description: "y", Price: -1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestItemService_DeleteItem(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f *itemFixture) string
		wantErr domain.Kind
	}{
		{"owner", func(f *itemFixture) string { return f.owner.ID }, -1},
		{"admin", func(f *itemFixture) string { return addUser(t, f.users, "admin", domain.PermAdmin).ID }, -1},
		{"item deleter", func(f *itemFixture) string { return addUser(t, f.users, "del", domain.PermItemDelete).ID }, -1},
		{"stranger", func(f *itemFixture) string { return addUser(t, f.users, "stranger", domain.PermUser).ID }, domain.KindForbidden},
		{"item updater", func(f *itemFixture) string { return addUser(t, f.users, "upd", domain.PermItemUpdate).ID }, domain.KindForbidden},
		{"anonymous", func(*itemFixture) string { return "" }, domain.KindAuthRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newItemFixture(t, nil)
			it := f.create(t)

			deleted, err := f.svc.DeleteItem(context.Background(), tt.actor(f), it.ID)
			after, _ := f.svc.Item(context.Background(), it.ID)
			if tt.wantErr >= 0 {
				assert.Equal(t, tt.wantErr, domain.KindOf(err))
				require.NotNil(t, after)
				assert.Equal(t, "Hat", after.Title)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, it.ID, deleted.ID)
			assert.Nil(t, after)
		})
	}
}

func TestItemService_DeleteMissing(t *testing.T) {
	f := newItemFixture(t, nil)
	_, err := f.svc.DeleteItem(context.Background(), f.owner.ID, "nope")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestItemService_UpdateItem(t *testing.T) {
	f := newItemFixture(t, nil)
	it := f.create(t)
	stranger := addUser(t, f.users, "stranger", domain.PermUser)
	updater := addUser(t, f.users, "upd", domain.PermItemUpdate)

	_, err := f.svc.UpdateItem(context.Background(), stranger.ID, it.ID, domain.ItemPatch{Title: ptr("Stolen")})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	got, err := f.svc.UpdateItem(context.Background(), f.owner.ID, it.ID, domain.ItemPatch{Title: ptr("Cap"), Price: ptr(900)})
	require.NoError(t, err)
	assert.Equal(t, "Cap", got.Title)
	assert.Equal(t, 900, got.Price)
	assert.Equal(t, "A fine hat", got.Description)
	assert.Equal(t, f.owner.ID, got.UserID)

	got, err = f.svc.UpdateItem(context.Background(), updater.ID, it.ID, domain.ItemPatch{Description: ptr("Worn once")})
	require.NoError(t, err)
	assert.Equal(t, "Worn once", got.Description)

	_, err = f.svc.UpdateItem(context.Background(), f.owner.ID, it.ID, domain.ItemPatch{Price: ptr(-5)})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.svc.UpdateItem(context.Background(), f.owner.ID, "missing", domain.ItemPatch{Title: ptr("x")})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = f.svc.UpdateItem(context.Background(), "", it.ID, domain.ItemPatch{Title: ptr("x")})
	assert.Equal(t, domain.KindAuthRequired, domain.KindOf(err))
}

func TestItemService_ListAndCount(t *testing.T) {
	f := newItemFixture(t, nil)
	for i := 0; i < 5; i++ {
		f.create(t)
	}
	items, err := f.svc.Items(context.Background(), domain.ItemFilter{Skip: 1, First: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = f.svc.Items(context.Background(), domain.ItemFilter{Skip: -3})
	require.NoError(t, err)
	assert.Len(t, items, 5)

	n, err := f.svc.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestItemService_CacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	f := newItemFixture(t, c)
	ctx := context.Background()
	it := f.create(t)

	got, err := f.svc.Item(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hat", got.Title)
	assert.True(t, mr.Exists("sickfits:item:"+it.ID))

	_, err = f.svc.UpdateItem(ctx, f.owner.ID, it.ID, domain.ItemPatch{Title: ptr("Cap")})
	require.NoError(t, err)
	got, err = f.svc.Item(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cap", got.Title)

	_, err = f.svc.DeleteItem(ctx, f.owner.ID, it.ID)
	require.NoError(t, err)
	got, err = f.svc.Item(ctx, it.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestItemService_CachedItemOmitsOwner(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	f := newItemFixture(t, c)
	ctx := context.Background()
	it := f.create(t)

	got, err := f.svc.Item(ctx, it.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.User)
	assert.Equal(t, f.owner.ID, got.UserID)

	raw, err := mr.Get("sickfits:item:" + it.ID)
	require.NoError(t, err)
	assert.NotContains(t, raw, f.owner.Email)
	assert.NotContains(t, raw, "permissions")
}
