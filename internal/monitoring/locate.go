package monitoring

import (
	"context"

	"github.com/healthshield/mentions-bot/internal/location"
	"github.com/healthshield/mentions-bot/internal/models"
)

// LocationModel is the model-backed stage of location extraction
type LocationModel interface {
	Extract(ctx context.Context, title, summary string) (models.Location, bool)
}

// Locator resolves where a mention is set: gazetteer rules first, then the
// model when enabled.
type Locator struct {
	model   LocationModel
	enabled bool
}

func NewLocator(model LocationModel, enabled bool) *Locator {
	return &Locator{model: model, enabled: enabled}
}

// Locate returns nil when neither stage yields a usable field.
func (l *Locator) Locate(ctx context.Context, title, summary string) *models.Location {
	if loc, ok := location.MatchRules(title + " " + summary); ok {
		return &loc
	}
	if !l.enabled || l.model == nil {
		return nil
	}
	if loc, ok := l.model.Extract(ctx, title, summary); ok {
		return &loc
	}
	return nil
}
