package monitoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/healthshield/mentions-bot/internal/keywords"
	"github.com/healthshield/mentions-bot/internal/llm"
	"github.com/healthshield/mentions-bot/internal/location"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultJobLimit caps the rows a cleanup job examines when no limit is given.
	DefaultJobLimit = 50

	bodyPrefixLength = 1000
	sentenceFallback = 160

	unknownMedia       = "Unknown"
	summaryUnavailable = "Summary unavailable."
)

// JobResult counts the rows a cleanup job examined and changed
type JobResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
}

// BackfillLocations looks up the article text of mentions without a location
// and stores the location found in it. Mentions whose text cannot be
// retrieved are skipped.
func (s *Service) BackfillLocations(ctx context.Context, limit int) (*JobResult, error) {
	if limit <= 0 {
		limit = DefaultJobLimit
	}

	rows, err := s.store.ListMissingLocation(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions missing location: %w", err)
	}

	result := &JobResult{}
	for _, m := range rows {
		result.Processed++
		text := s.articleText(ctx, m.Link)
		if text == "" {
			continue
		}

		loc := s.locator.Locate(ctx, m.Headline, leading(text, bodyPrefixLength))
		if loc == nil {
			continue
		}
		if _, err := s.store.UpdateFields(ctx, m.ID, models.MentionPatch{Location: loc}); err != nil {
			logrus.Warnf("Failed updating location for %s: %v", m.ID, err)
			continue
		}
		result.Updated++
	}

	s.addJobMetrics(result.Updated, 0)
	logrus.Infof("Location backfill processed %d mentions, updated %d", result.Processed, result.Updated)
	return result, nil
}

// CleanMetadata fills the missing media name, keywords, location and summary
// of stored mentions. Fields that already hold a value are never rewritten.
func (s *Service) CleanMetadata(ctx context.Context, limit int) (*JobResult, error) {
	if limit <= 0 {
		limit = DefaultJobLimit
	}

	kws, err := s.store.ListActiveKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active keywords: %w", err)
	}
	allowed := models.KeywordTexts(kws)

	rows, err := s.store.ListMissingMetadata(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions missing metadata: %w", err)
	}

	result := &JobResult{}
	for _, m := range rows {
		result.Processed++

		mediaEmpty := strings.TrimSpace(m.MediaName) == ""
		keywordsEmpty := len(m.Keywords) == 0
		locationEmpty := m.Location == nil || m.Location.IsEmpty()
		summaryEmpty := strings.TrimSpace(m.Summary) == ""
		if !mediaEmpty && !keywordsEmpty && !locationEmpty && !summaryEmpty {
			continue
		}

		text := s.articleText(ctx, m.Link)
		guess, _ := s.guesser.Guess(ctx, m.Link, text, allowed, m.MediaName)
		filled := fillDefaults(m.Link, guess, allowed, text)

		var patch models.MentionPatch
		if mediaEmpty {
			patch.MediaName = &filled.MediaName
		}
		if keywordsEmpty {
			patch.Keywords = []string{filled.Keyword}
		}
		if locationEmpty {
			patch.Location = &filled.Location
		}
		if summaryEmpty {
			patch.Summary = &filled.Summary
		}

		if _, err := s.store.UpdateFields(ctx, m.ID, patch); err != nil {
			logrus.Warnf("Failed to update cleaned mention %s: %v", m.ID, err)
			continue
		}
		result.Updated++
	}

	s.addJobMetrics(0, result.Updated)
	logrus.Infof("Metadata cleanup processed %d mentions, updated %d", result.Processed, result.Updated)
	return result, nil
}

func (s *Service) articleText(ctx context.Context, link string) string {
	if link == "" || s.extractor == nil {
		return ""
	}
	text, ok := s.extractor.ExtractText(ctx, link)
	if !ok {
		logrus.Debugf("No article text for %s", link)
		return ""
	}
	return text
}

// metadata is a complete, validated set of cleanup values
type metadata struct {
	MediaName string
	Keyword   string
	Location  models.Location
	Summary   string
}

// fillDefaults validates the model's guess and substitutes a deterministic
// value for every field it left empty or invalid.
func fillDefaults(link string, guess llm.MetadataGuess, allowed []string, text string) metadata {
	out := metadata{MediaName: guess.MediaName, Summary: guess.Summary}

	if out.MediaName == "" {
		out.MediaName = sources.MediaNameFromURL(link)
	}
	if out.MediaName == "" {
		out.MediaName = unknownMedia
	}

	if contains(allowed, guess.Keyword) {
		out.Keyword = guess.Keyword
	} else {
		out.Keyword = keywords.ChooseBest(text, allowed)
	}

	if loc, ok := location.NormalizeLocation(guess.State, guess.District); ok {
		out.Location = loc
	} else {
		// Placeholder, not a real place: the mention is somewhere in the country.
		out.Location = location.Unresolved
	}

	if out.Summary == "" {
		out.Summary = firstSentence(text)
	}
	return out
}

// firstSentence cuts text at the first sentence break, else at 160 characters.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return summaryUnavailable
	}

	cut := -1
	for _, sep := range []string{". ", "! ", "? "} {
		if idx := strings.Index(text, sep); idx != -1 {
			cut = idx + 1
			break
		}
	}
	if cut == -1 {
		return strings.TrimSpace(leading(text, sentenceFallback))
	}
	return strings.TrimSpace(text[:cut])
}

func leading(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func contains(values []string, v string) bool {
	if v == "" {
		return false
	}
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
