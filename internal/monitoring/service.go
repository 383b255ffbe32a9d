package monitoring

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/healthshield/mentions-bot/internal/config"
	"github.com/healthshield/mentions-bot/internal/llm"
	"github.com/healthshield/mentions-bot/internal/notifications"
	"github.com/healthshield/mentions-bot/internal/runlock"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/healthshield/mentions-bot/internal/storage"
)

// TextExtractor returns the article text behind a URL, or false.
type TextExtractor interface {
	ExtractText(ctx context.Context, url string) (string, bool)
}

// Components are the optional collaborators of a Service. Nil fields
// disable the matching feature.
type Components struct {
	Feeds     []sources.Source
	Search    sources.Source
	Extractor TextExtractor
	LLM       llm.Client
	Archive   storage.ArchiveInterface
	Notifier  notifications.NotificationInterface
	Lock      runlock.Locker
}

// Service runs ingestion and cleanup over the mention store
type Service struct {
	config     *config.Config
	store      storage.Store
	feeds      []sources.Source
	search     sources.Source
	extractor  TextExtractor
	archive    storage.ArchiveInterface
	notifier   notifications.NotificationInterface
	lock       runlock.Locker
	locator    *Locator
	classifier *llm.Classifier
	summarizer *llm.Summarizer
	guesser    *llm.MetadataGuesser
	metrics    *Metrics
	mu         sync.RWMutex
	now        func() time.Time
}

// Metrics holds statistics about the most recent runs
type Metrics struct {
	LastRun          time.Time      `json:"last_run"`
	LastRunKind      string         `json:"last_run_kind"`
	LastRunDuration  string         `json:"last_run_duration"`
	LastRunInserted  int            `json:"last_run_inserted"`
	TotalInserted    int            `json:"total_inserted"`
	SourceMetrics    map[string]int `json:"source_metrics"`
	ErrorCount       int            `json:"error_count"`
	LocationsUpdated int            `json:"locations_updated"`
	MetadataUpdated  int            `json:"metadata_updated"`
}

// NewService creates a new monitoring service
func NewService(cfg *config.Config, store storage.Store, c Components) *Service {
	lock := c.Lock
	if lock == nil {
		lock = runlock.NewLocalLocker()
	}

	locationLLM := c.LLM
	if !cfg.EnableLLMLocation {
		locationLLM = nil
	}

	return &Service{
		config:     cfg,
		store:      store,
		feeds:      c.Feeds,
		search:     c.Search,
		extractor:  c.Extractor,
		archive:    c.Archive,
		notifier:   c.Notifier,
		lock:       lock,
		locator:    NewLocator(llm.NewLocationExtractor(locationLLM), locationLLM != nil),
		classifier: llm.NewClassifier(c.LLM),
		summarizer: llm.NewSummarizer(c.LLM),
		guesser:    llm.NewMetadataGuesser(c.LLM),
		metrics: &Metrics{
			SourceMetrics: make(map[string]int),
		},
		now: time.Now,
	}
}

func (s *Service) updateRunMetrics(kind string, insertedBySource map[string]int, inserted int, duration time.Duration, errorCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = s.now().UTC()
	s.metrics.LastRunKind = kind
	s.metrics.LastRunDuration = duration.String()
	s.metrics.LastRunInserted = inserted
	s.metrics.TotalInserted += inserted
	s.metrics.ErrorCount = errorCount
	s.metrics.SourceMetrics = insertedBySource
}

func (s *Service) addJobMetrics(locations, metadata int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LocationsUpdated += locations
	s.metrics.MetadataUpdated += metadata
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
