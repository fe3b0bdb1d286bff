package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sick-fits/internal/core/cache"
	"sick-fits/internal/domain"
	"sick-fits/pkg/utils"
)

const maxPageSize = 100

type ItemDeps struct {
	Items    domain.ItemRepository
	Users    domain.UserRepository
	Cache    *cache.Cache // nil disables caching
	CacheTTL time.Duration
	Log      *zap.Logger
}

type ItemService struct {
	items domain.ItemRepository
	users domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewItemService(d ItemDeps) *ItemService {
	s := &ItemService{items: d.Items, users: d.Users, cache: d.Cache, ttl: d.CacheTTL, log: d.Log}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.ttl <= 0 {
		s.ttl = time.Minute
	}
	return s
}

func itemKey(id string) string { return "item:" + id }

type CreateItemInput struct {
	Title       string
	Description string
	Price       int
	Image       string
	LargeImage  string
}

func (s *ItemService) actor(ctx context.Context, actorID string) (*domain.User, error) {
	if actorID == "" {
		return nil, domain.AuthRequired()
	}
	u, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, domain.Internal("could not load user", err)
	}
	if u == nil {
		return nil, domain.AuthRequired()
	}
	return u, nil
}

func validateItemFields(title, description *string, price *int) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return domain.Validation("A title is required")
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return domain.Validation("A description is required")
	}
	if price != nil && *price < 0 {
		return domain.Validation("Price cannot be negative")
	}
	return nil
}

// CreateItem persists a new item owned by the session user.
func (s *ItemService) CreateItem(ctx context.Context, actorID string, in CreateItemInput) (*domain.Item, error) {
	owner, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := validateItemFields(&in.Title, &in.Description, &in.Price); err != nil {
		return nil, err
	}
	it := &domain.Item{
		ID:          utils.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       in.Image,
		LargeImage:  in.LargeImage,
		UserID:      owner.ID,
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, domain.Internal("could not create item", err)
	}
	it.User = owner
	s.log.Info("item created", zap.String("item_id", it.ID), zap.String("user_id", owner.ID))
	return it, nil
}

// UpdateItem applies p to the item. Only the owner, ADMIN or ITEMUPDATE may
// update; the id and owner are never part of the patch.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, id string, p domain.ItemPatch) (*domain.Item, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("could not load item", err)
	}
	if it == nil {
		return nil, domain.NotFound("No item found with id %s", id)
	}
	if !domain.CanModifyItem(actor, it, domain.PermItemUpdate) {
		return nil, domain.Forbidden("You don't have permission to do that!")
	}
	if err := validateItemFields(p.Title, p.Description, p.Price); err != nil {
		return nil, err
	}
	if !p.Empty() {
		if err := s.items.Update(ctx, id, p); err != nil {
			return nil, domain.Internal("could not update item", err)
		}
		s.invalidate(ctx, id)
	}
	updated, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("could not load item", err)
	}
	if updated == nil {
		return nil, domain.NotFound("No item found with id %s", id)
	}
	return updated, nil
}

// DeleteItem removes the item when the actor owns it or holds ADMIN or
// ITEMDELETE, and returns what was deleted.
func (s *ItemService) DeleteItem(ctx context.Context, actorID, id string) (*domain.Item, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("could not load item", err)
	}
	if it == nil {
		return nil, domain.NotFound("No item found with id %s", id)
	}
	if !domain.CanModifyItem(actor, it, domain.PermItemDelete) {
		return nil, domain.Forbidden("You don't have permission to do that!")
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return nil, domain.Internal("could not delete item", err)
	}
	s.invalidate(ctx, id)
	s.log.Info("item deleted", zap.String("item_id", id), zap.String("user_id", actor.ID))
	return it, nil
}

func (s *ItemService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, itemKey(id)); err != nil {
		s.log.Warn("item cache invalidation failed", zap.String("item_id", id), zap.Error(err))
	}
}

// Item returns nil when no item has id. The owner is not part of the cached
// value: profile and permission changes never go through item invalidation,
// so callers resolve it from UserID.
func (s *ItemService) Item(ctx context.Context, id string) (*domain.Item, error) {
	it, err := cache.GetOrLoadJSON(s.cache, ctx, itemKey(id), s.ttl, func(ctx context.Context) (*domain.Item, error) {
		it, err := s.items.FindByID(ctx, id)
		if it != nil {
			it.User = nil
		}
		return it, err
	})
	if err != nil {
		return nil, domain.Internal("could not load item", err)
	}
	return it, nil
}

func (s *ItemService) Items(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.First <= 0 || f.First > maxPageSize {
		f.First = maxPageSize
	}
	items, err := s.items.List(ctx, f)
	if err != nil {
		return nil, domain.Internal("could not list items", err)
	}
	return items, nil
}

func (s *ItemService) Count(ctx context.Context) (int64, error) {
	n, err := s.items.Count(ctx)
	if err != nil {
		return 0, domain.Internal("could not count items", err)
	}
	return n, nil
}
