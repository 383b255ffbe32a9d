package keywords

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// MinLength is the shortest keyword accepted, after trimming.
const MinLength = 2

// Manager validates and applies operator keyword changes
type Manager struct {
	store storage.KeywordStore
}

// NewManager creates a keyword manager backed by store
func NewManager(store storage.KeywordStore) *Manager {
	return &Manager{store: store}
}

// Add creates an enabled keyword. It rejects keywords shorter than MinLength
// and keywords already enabled under any casing.
func (m *Manager) Add(ctx context.Context, text string) (*models.Keyword, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinLength {
		return nil, fmt.Errorf("%w: keyword must be at least %d characters", models.ErrValidation, MinLength)
	}

	existing, err := m.store.FindKeywordCI(ctx, text)
	switch {
	case err == nil && existing.Enabled:
		return nil, fmt.Errorf("%w: %q", models.ErrDuplicateKeyword, existing.Keyword)
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	kw, err := m.store.AddKeyword(ctx, text)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Added keyword %q", kw.Keyword)
	return kw, nil
}

// Active lists the enabled keywords.
func (m *Manager) Active(ctx context.Context) ([]models.Keyword, error) {
	return m.store.ListActiveKeywords(ctx)
}

// Remove disables a keyword, or deletes the row when hard is set.
func (m *Manager) Remove(ctx context.Context, id string, hard bool) error {
	if hard {
		if err := m.store.DeleteKeyword(ctx, id); err != nil {
			return err
		}
		logrus.Infof("Deleted keyword %s", id)
		return nil
	}

	kw, err := m.store.DisableKeyword(ctx, id)
	if err != nil {
		return err
	}
	logrus.Infof("Disabled keyword %q", kw.Keyword)
	return nil
}
