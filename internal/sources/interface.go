package sources

import (
	"context"

	"github.com/healthshield/mentions-bot/internal/models"
)

// Item is a raw entry normalized from a feed or search result
type Item struct {
	Title     string
	Summary   string
	Link      string
	Published models.Date // zero when the source gave no usable date
	Outlet    string
	ImageURL  string
	Score     float64
}

// Source interface defines the contract for all item sources
type Source interface {
	GetName() string
	FetchItems(ctx context.Context, keywords []string) ([]Item, error)
	IsEnabled() bool
}
