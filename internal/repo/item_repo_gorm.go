package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sick-fits/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

var _ domain.ItemRepository = (*ItemRepo)(nil)

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(it).Error
}

// FindByID loads the item with its owner.
func (r *ItemRepo) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	err := r.db.WithContext(ctx).Preload("User").First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

var itemOrders = map[domain.ItemOrder]clause.OrderByColumn{
	domain.ItemOrderCreatedDesc: {Column: clause.Column{Name: "created_at"}, Desc: true},
	domain.ItemOrderCreatedAsc:  {Column: clause.Column{Name: "created_at"}},
	domain.ItemOrderPriceAsc:    {Column: clause.Column{Name: "price"}},
	domain.ItemOrderPriceDesc:   {Column: clause.Column{Name: "price"}, Desc: true},
}

func (r *ItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	order, ok := itemOrders[f.OrderBy]
	if !ok {
		order = itemOrders[domain.ItemOrderCreatedDesc]
	}
	tx := r.db.WithContext(ctx).Preload("User").Order(order).Offset(f.Skip)
	if f.First > 0 {
		tx = tx.Limit(f.First)
	}
	var items []domain.Item
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Item{}).Count(&n).Error
	return n, err
}

func (r *ItemRepo) Update(ctx context.Context, id string, p domain.ItemPatch) error {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Image != nil {
		cols["image"] = *p.Image
	}
	if p.LargeImage != nil {
		cols["large_image"] = *p.LargeImage
	}
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Updates(cols).Error
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{}).Error
}
