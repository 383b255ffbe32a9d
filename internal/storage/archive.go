package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/healthshield/mentions-bot/internal/models"
)

// RunRecord is the archived form of one ingestion run
type RunRecord struct {
	Run        string           `json:"run"`
	FinishedAt time.Time        `json:"finished_at"`
	Mentions   []models.Mention `json:"mentions"`
}

// RunFileName names the archive file for a run finished at t. Scrape and
// search runs finishing in the same millisecond still get distinct names.
func RunFileName(run string, t time.Time) string {
	return fmt.Sprintf("mentions-%s-%s.json", run, t.UTC().Format("2006-01-02-15-04-05.000"))
}

// ArchiveRun writes the mentions inserted by a run and returns the file name used.
func ArchiveRun(ctx context.Context, archive ArchiveInterface, run string, finishedAt time.Time, mentions []models.Mention) (string, error) {
	data, err := json.Marshal(RunRecord{Run: run, FinishedAt: finishedAt.UTC(), Mentions: mentions})
	if err != nil {
		return "", fmt.Errorf("failed to marshal run record: %w", err)
	}
	name := RunFileName(run, finishedAt)
	if err := archive.Store(ctx, name, data); err != nil {
		return "", err
	}
	return name, nil
}

// LoadRun reads an archived run back.
func LoadRun(ctx context.Context, archive ArchiveInterface, filename string) (*RunRecord, error) {
	data, err := archive.Retrieve(ctx, filename)
	if err != nil {
		return nil, err
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode run record %s: %w", filename, err)
	}
	return &rec, nil
}

// DirArchive keeps run files in a local directory
type DirArchive struct {
	dir string
}

// Ensure DirArchive implements ArchiveInterface
var _ ArchiveInterface = (*DirArchive)(nil)

// NewDirArchive creates dir if needed.
func NewDirArchive(dir string) (*DirArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &DirArchive{dir: dir}, nil
}

func (a *DirArchive) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: invalid archive file name %q", models.ErrValidation, filename)
	}
	return filepath.Join(a.dir, filename), nil
}

// Store writes a run file
func (a *DirArchive) Store(_ context.Context, filename string, data []byte) error {
	p, err := a.path(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// Retrieve reads a run file
func (a *DirArchive) Retrieve(_ context.Context, filename string) ([]byte, error) {
	p, err := a.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("archive file %s: %w", filename, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

// List returns run file names under prefix, sorted
func (a *DirArchive) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
