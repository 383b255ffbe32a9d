package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/healthshield/mentions-bot/internal/config"
	"github.com/healthshield/mentions-bot/internal/monitoring"
	"github.com/healthshield/mentions-bot/internal/runlock"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scraper runs one RSS ingestion
type Scraper interface {
	RunScrape(ctx context.Context) (*monitoring.RunResult, error)
}

// Service handles scheduling of ingestion runs
type Service struct {
	config  *config.Config
	scraper Scraper
	cron    *cron.Cron
	timeout time.Duration
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, scraper Scraper) *Service {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	return &Service{
		config:  cfg,
		scraper: scraper,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		timeout: 30 * time.Minute,
	}
}

// Spec returns the cron expression for the configured interval
func (s *Service) Spec() string {
	return fmt.Sprintf("@every %dm", s.config.ScrapeIntervalMinutes)
}

// Start begins the scheduled scraping
func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.Spec(), s.runScrape); err != nil {
		return fmt.Errorf("failed to schedule scrape: %w", err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started, scraping %s", s.Spec())
	return nil
}

func (s *Service) runScrape() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logrus.Info("Starting scheduled scrape")
	result, err := s.scraper.RunScrape(ctx)
	switch {
	case errors.Is(err, runlock.ErrRunInProgress):
		logrus.Info("Skipping scheduled scrape, another run is in progress")
	case err != nil:
		logrus.Errorf("Scheduled scrape failed: %v", err)
	default:
		logrus.Infof("Scheduled scrape result: %s (%d inserted)", result.Message, result.Inserted)
	}
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
