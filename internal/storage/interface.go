package storage

import (
	"context"

	"github.com/healthshield/mentions-bot/internal/models"
)

// MentionStore persists mentions. Lookups that find nothing return models.ErrNotFound.
type MentionStore interface {
	FindByLink(ctx context.Context, link string) (*models.Mention, error)
	Insert(ctx context.Context, m *models.Mention) (*models.Mention, error)
	UpdateFields(ctx context.Context, id string, patch models.MentionPatch) (*models.Mention, error)
	List(ctx context.Context, filter models.ListFilter) ([]models.Mention, int, error)
	ListMissingLocation(ctx context.Context, limit int) ([]models.Mention, error)
	ListMissingMetadata(ctx context.Context, limit int) ([]models.Mention, error)
}

// KeywordStore persists operator keywords
type KeywordStore interface {
	ListActiveKeywords(ctx context.Context) ([]models.Keyword, error)
	AddKeyword(ctx context.Context, text string) (*models.Keyword, error)
	FindKeywordCI(ctx context.Context, text string) (*models.Keyword, error)
	DisableKeyword(ctx context.Context, id string) (*models.Keyword, error)
	DeleteKeyword(ctx context.Context, id string) error
}

// Store is the full persistence contract used by the pipeline
type Store interface {
	MentionStore
	KeywordStore
}

// ArchiveInterface defines the contract for the run archive blob store
type ArchiveInterface interface {
	Store(ctx context.Context, filename string, data []byte) error
	Retrieve(ctx context.Context, filename string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
