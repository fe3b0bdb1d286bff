package domain

import (
	"context"
	"time"
)

type Item struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       int       `gorm:"not null" json:"price"` // cents
	Image       string    `gorm:"size:512" json:"image"`
	LargeImage  string    `gorm:"size:512" json:"largeImage"`
	UserID      string    `gorm:"index;size:36;not null" json:"userId"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return "items" }

// ItemPatch carries the mutable item fields; nil means unchanged. There is no
// ID or owner field: neither can be updated.
type ItemPatch struct {
	Title       *string
	Description *string
	Price       *int
	Image       *string
	LargeImage  *string
}

func (p ItemPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Image == nil && p.LargeImage == nil
}

type ItemOrder string

const (
	ItemOrderCreatedDesc ItemOrder = "createdAt_DESC"
	ItemOrderCreatedAsc  ItemOrder = "createdAt_ASC"
	ItemOrderPriceAsc    ItemOrder = "price_ASC"
	ItemOrderPriceDesc   ItemOrder = "price_DESC"
)

type ItemFilter struct {
	Skip    int
	First   int
	OrderBy ItemOrder
}

// ItemRepository returns (nil, nil) from FindByID when the item does not exist.
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	FindByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, f ItemFilter) ([]Item, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, p ItemPatch) error
	Delete(ctx context.Context, id string) error
}
