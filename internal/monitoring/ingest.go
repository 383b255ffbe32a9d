package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/healthshield/mentions-bot/internal/keywords"
	"github.com/healthshield/mentions-bot/internal/llm"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	// NoKeywordsMessage is returned by runs that find no active keywords.
	NoKeywordsMessage = "No active keywords configured"

	// Lock name shared by every ingestion run.
	ingestionLock = "ingestion"

	relevanceBatchSize = 20
	snippetWidth       = 300
)

// RunResult is the outcome of an ingestion run
type RunResult struct {
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

type runKind struct {
	name       string
	sources    []sources.Source
	dataSource string
	mediaType  string
	summarize  bool
}

// candidate is a source item that matched at least one keyword
type candidate struct {
	item     sources.Item
	keywords []string
}

// RunScrape ingests every configured RSS feed.
func (s *Service) RunScrape(ctx context.Context) (*RunResult, error) {
	return s.runIngestion(ctx, runKind{
		name:       "scrape",
		sources:    s.feeds,
		dataSource: models.DataSourceNews,
		mediaType:  models.MediaTypeNews,
	})
}

// RunSearch ingests web search results for the active keywords.
func (s *Service) RunSearch(ctx context.Context) (*RunResult, error) {
	if s.search == nil || !s.search.IsEnabled() {
		return nil, fmt.Errorf("%w: web search is not configured", models.ErrConfiguration)
	}
	return s.runIngestion(ctx, runKind{
		name:       "search",
		sources:    []sources.Source{s.search},
		dataSource: models.DataSourceSearch,
		mediaType:  models.MediaTypeWeb,
		summarize:  true,
	})
}

func (s *Service) runIngestion(ctx context.Context, run runKind) (*RunResult, error) {
	release, err := s.lock.Acquire(ctx, ingestionLock)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	logrus.Infof("Starting %s run", run.name)

	kws, err := s.store.ListActiveKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active keywords: %w", err)
	}
	active := models.KeywordTexts(kws)
	if len(active) == 0 {
		logrus.Info("No active keywords configured, skipping run")
		return &RunResult{Message: NoKeywordsMessage}, nil
	}

	items, errorCount := s.collect(ctx, run.sources, active)
	logrus.Infof("Collected %d items from %d sources", len(items), len(run.sources))

	candidates := matchItems(items, active)
	logrus.Infof("%d items matched active keywords", len(candidates))

	if s.config.EnableRelevanceFilter {
		candidates = s.filterRelevant(ctx, candidates)
		logrus.Infof("After relevance filtering: %d items", len(candidates))
	}
	if run.summarize {
		s.summarize(ctx, candidates)
	}

	var inserted []models.Mention
	bySource := make(map[string]int)
	for _, c := range candidates {
		record := s.buildRecord(ctx, c, run)
		stored, created, err := s.Upsert(ctx, record)
		if err != nil {
			logrus.Warnf("Failed to upsert %s: %v", record.Link, err)
			errorCount++
			continue
		}
		if created {
			inserted = append(inserted, *stored)
			bySource[sourceLabel(*stored)]++
		}
	}

	s.publish(ctx, run.name, inserted, bySource)
	s.updateRunMetrics(run.name, bySource, len(inserted), time.Since(start), errorCount)

	logrus.Infof("%s run completed in %v, inserted %d mentions", run.name, time.Since(start), len(inserted))
	return &RunResult{Message: run.name + " completed", Inserted: len(inserted)}, nil
}

// collect fetches every enabled source concurrently. A failing source is
// logged and counted; it never stops the others.
func (s *Service) collect(ctx context.Context, srcs []sources.Source, active []string) ([]sources.Item, int) {
	results := make([][]sources.Item, len(srcs))
	failed := make([]bool, len(srcs))

	var wg sync.WaitGroup
	for i, source := range srcs {
		if source == nil || !source.IsEnabled() {
			continue
		}
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()

			items, err := src.FetchItems(ctx, active)
			if err != nil {
				logrus.Errorf("Error fetching from %s: %v", src.GetName(), err)
				failed[i] = true
				return
			}

			logrus.Debugf("Found %d items from %s", len(items), src.GetName())
			results[i] = items
		}(i, source)
	}
	wg.Wait()

	var all []sources.Item
	errorCount := 0
	for i := range srcs {
		if failed[i] {
			errorCount++
		}
		all = append(all, results[i]...)
	}
	return all, errorCount
}

func matchItems(items []sources.Item, active []string) []candidate {
	var out []candidate
	for _, item := range items {
		matched := keywords.Match(item.Title+" "+item.Summary, active)
		if len(matched) == 0 {
			continue
		}
		out = append(out, candidate{item: item, keywords: matched})
	}
	return out
}

func (s *Service) filterRelevant(ctx context.Context, candidates []candidate) []candidate {
	var kept []candidate
	for start := 0; start < len(candidates); start += relevanceBatchSize {
		end := start + relevanceBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		inputs := make([]llm.Candidate, len(batch))
		for i, c := range batch {
			inputs[i] = llm.Candidate{Title: c.item.Title, Summary: c.item.Summary}
		}
		verdicts := s.classifier.ClassifyMany(ctx, inputs)
		for i, c := range batch {
			if verdicts[i] {
				kept = append(kept, c)
			} else {
				logrus.Debugf("Dropped non-health item %s", c.item.Link)
			}
		}
	}
	return kept
}

// summarize replaces search snippets with one-sentence summaries, falling
// back to the snippet cut at a word boundary.
func (s *Service) summarize(ctx context.Context, candidates []candidate) {
	if len(candidates) == 0 {
		return
	}
	inputs := make([]llm.SummaryInput, len(candidates))
	for i, c := range candidates {
		inputs[i] = llm.SummaryInput{Title: c.item.Title, Text: c.item.Summary}
	}
	summaries := s.summarizer.SummarizeMany(ctx, inputs)
	for i := range candidates {
		if summary := strings.TrimSpace(summaries[i]); summary != "" {
			candidates[i].item.Summary = summary
		} else {
			candidates[i].item.Summary = llm.Shorten(candidates[i].item.Summary, snippetWidth)
		}
	}
}

func (s *Service) buildRecord(ctx context.Context, c candidate, run runKind) *models.Mention {
	date := c.item.Published
	if date.IsZero() {
		date = models.NewDate(s.now().UTC())
	}

	return &models.Mention{
		Date:        date,
		DataSource:  run.dataSource,
		Headline:    c.item.Title,
		Summary:     c.item.Summary,
		ImageURL:    c.item.ImageURL,
		Link:        c.item.Link,
		MediaType:   run.mediaType,
		MediaOutlet: c.item.Outlet,
		MediaName:   c.item.Outlet,
		Status:      models.StatusUnverified,
		Keywords:    models.StringSlice(c.keywords),
		Engagement:  0,
		Location:    s.locator.Locate(ctx, c.item.Title, c.item.Summary),
	}
}

// Upsert stores record unless a mention with the same non-empty link exists,
// in which case the stored mention is returned unchanged. created reports
// whether a row was inserted.
func (s *Service) Upsert(ctx context.Context, record *models.Mention) (*models.Mention, bool, error) {
	if record.Link != "" {
		existing, err := s.store.FindByLink(ctx, record.Link)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, false, err
		}
	}

	stored, err := s.store.Insert(ctx, record)
	if errors.Is(err, models.ErrDuplicateLink) {
		// Lost a race with another writer; the row it stored wins.
		existing, findErr := s.store.FindByLink(ctx, record.Link)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

func sourceLabel(m models.Mention) string {
	if m.MediaName != "" {
		return m.MediaName
	}
	return "Unknown"
}

// publish archives and announces the mentions a run inserted. Failures are
// logged; the run has already succeeded.
func (s *Service) publish(ctx context.Context, run string, inserted []models.Mention, bySource map[string]int) {
	if len(inserted) == 0 {
		return
	}

	finished := s.now()
	if s.archive != nil {
		name, err := storage.ArchiveRun(ctx, s.archive, run, finished, inserted)
		if err != nil {
			logrus.Errorf("Failed to archive %s run: %v", run, err)
		} else {
			logrus.Infof("Archived %s run to %s", run, name)
		}
	}

	if s.notifier != nil {
		digest := &models.Digest{
			GeneratedAt: finished.UTC(),
			Run:         run,
			Inserted:    len(inserted),
			BySource:    bySource,
			Mentions:    inserted,
		}
		if err := s.notifier.SendDigest(digest); err != nil {
			logrus.Errorf("Failed to send %s digest: %v", run, err)
		}
	}
}
