package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type dialect struct {
	schema         []string
	keywordOverlap string
	keywordsEmpty  string
}

var dialects = map[string]dialect{
	DriverPostgres: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS mentions (
  id TEXT PRIMARY KEY,
  date DATE NOT NULL,
  data_source TEXT NOT NULL DEFAULT '',
  headline TEXT NOT NULL DEFAULT '',
  summary TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  media_type TEXT NOT NULL DEFAULT '',
  media_outlet TEXT NOT NULL DEFAULT '',
  media_name TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'unverified',
  keywords JSONB,
  engagement INTEGER NOT NULL DEFAULT 0,
  location JSONB,
  created_at TEXT NOT NULL
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_mentions_link ON mentions(link) WHERE link <> ''`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_date ON mentions(date)`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_status ON mentions(status)`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_keywords ON mentions USING GIN (keywords)`,
			`CREATE TABLE IF NOT EXISTS keywords (
  id TEXT PRIMARY KEY,
  keyword TEXT NOT NULL,
  enabled BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_keywords_lower ON keywords(LOWER(keyword))`,
		},
		keywordOverlap: `EXISTS (SELECT 1 FROM jsonb_array_elements_text(keywords) AS k(value) WHERE k.value IN (%s))`,
		keywordsEmpty:  `(keywords IS NULL OR jsonb_array_length(keywords) = 0)`,
	},
	DriverSQLite: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS mentions (
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL,
  data_source TEXT NOT NULL DEFAULT '',
  headline TEXT NOT NULL DEFAULT '',
  summary TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  media_type TEXT NOT NULL DEFAULT '',
  media_outlet TEXT NOT NULL DEFAULT '',
  media_name TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'unverified',
  keywords TEXT,
  engagement INTEGER NOT NULL DEFAULT 0,
  location TEXT,
  created_at TEXT NOT NULL
)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_mentions_link ON mentions(link) WHERE link <> ''`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_date ON mentions(date)`,
			`CREATE INDEX IF NOT EXISTS idx_mentions_status ON mentions(status)`,
			`CREATE TABLE IF NOT EXISTS keywords (
  id TEXT PRIMARY KEY,
  keyword TEXT NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_keywords_lower ON keywords(LOWER(keyword))`,
		},
		keywordOverlap: `EXISTS (SELECT 1 FROM json_each(keywords) AS k WHERE k.value IN (%s))`,
		keywordsEmpty:  `(keywords IS NULL OR json_array_length(keywords) = 0)`,
	},
}

const mentionColumns = `id, date, data_source, headline, summary, image_url, link, media_type,
 media_outlet, media_name, status, keywords, engagement, location, created_at`

const keywordColumns = `id, keyword, enabled, created_at`

// SQLStore implements Store on Postgres or SQLite through sqlx
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
}

// Ensure SQLStore implements Store
var _ Store = (*SQLStore)(nil)

// Open connects to the database for driver and verifies the connection.
func Open(driver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported database driver %q", models.ErrConfiguration, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One connection keeps in-memory databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	logrus.Infof("Connected to %s database", driver)
	return &SQLStore{db: db, dialect: d, now: time.Now}, nil
}

// Migrate creates the tables and indexes if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, models.ErrStorage, err)
}

// FindByLink returns the mention stored under link.
func (s *SQLStore) FindByLink(ctx context.Context, link string) (*models.Mention, error) {
	if link == "" {
		return nil, models.ErrNotFound
	}
	var m models.Mention
	err := s.db.GetContext(ctx, &m, s.db.Rebind(`SELECT `+mentionColumns+` FROM mentions WHERE link = ? LIMIT 1`), link)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find mention by link", err)
	}
	return &m, nil
}

func (s *SQLStore) getMention(ctx context.Context, id string) (*models.Mention, error) {
	var m models.Mention
	err := s.db.GetContext(ctx, &m, s.db.Rebind(`SELECT `+mentionColumns+` FROM mentions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mention %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("load mention", err)
	}
	return &m, nil
}

// Insert stores a new mention. A non-empty link that is already stored
// yields models.ErrDuplicateLink.
func (s *SQLStore) Insert(ctx context.Context, m *models.Mention) (*models.Mention, error) {
	rec := *m
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Date.IsZero() {
		rec.Date = models.Today()
	}
	if rec.Status == "" {
		rec.Status = models.StatusUnverified
	}
	if rec.Keywords == nil {
		rec.Keywords = models.StringSlice{}
	}
	rec.CreatedAt = models.FormatTimestamp(s.now())

	query := s.db.Rebind(`INSERT INTO mentions (` + mentionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (link) WHERE link <> '' DO NOTHING`)

	res, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Date, rec.DataSource, rec.Headline, rec.Summary, rec.ImageURL, rec.Link,
		rec.MediaType, rec.MediaOutlet, rec.MediaName, rec.Status, rec.Keywords, rec.Engagement,
		rec.Location, rec.CreatedAt,
	)
	if err != nil {
		return nil, storageErr("insert mention", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr("insert mention", err)
	}
	if n == 0 {
		if rec.Link != "" {
			return nil, fmt.Errorf("%w: %s", models.ErrDuplicateLink, rec.Link)
		}
		return nil, fmt.Errorf("%w: insert created no row", models.ErrStorage)
	}

	return s.getMention(ctx, rec.ID)
}

// UpdateFields overwrites the non-nil fields of patch on mention id.
func (s *SQLStore) UpdateFields(ctx context.Context, id string, patch models.MentionPatch) (*models.Mention, error) {
	var sets []string
	var args []interface{}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.MediaName != nil {
		sets = append(sets, "media_name = ?")
		args = append(args, *patch.MediaName)
	}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.Keywords != nil {
		sets = append(sets, "keywords = ?")
		args = append(args, models.StringSlice(patch.Keywords))
	}
	if patch.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *patch.Location)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE mentions SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return nil, storageErr("update mention", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr("update mention", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("mention %s: %w", id, models.ErrNotFound)
	}

	return s.getMention(ctx, id)
}

func (s *SQLStore) mentionFilter(f models.ListFilter) (string, []interface{}, error) {
	var clauses []string
	var args []interface{}

	for _, bound := range []struct {
		value string
		op    string
	}{{f.StartDate, ">="}, {f.EndDate, "<="}} {
		if bound.value == "" {
			continue
		}
		d, err := models.ParseDate(bound.value)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, "date "+bound.op+" ?")
		args = append(args, d)
	}
	if f.DataSource != "" {
		clauses = append(clauses, "data_source = ?")
		args = append(args, f.DataSource)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if len(f.Keywords) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Keywords)), ", ")
		clauses = append(clauses, fmt.Sprintf(s.dialect.keywordOverlap, placeholders))
		for _, kw := range f.Keywords {
			args = append(args, kw)
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// List returns one page of mentions matching filter, newest first, with the total match count.
func (s *SQLStore) List(ctx context.Context, filter models.ListFilter) ([]models.Mention, int, error) {
	filter.Normalize()
	where, args, err := s.mentionFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM mentions`+where), args...); err != nil {
		return nil, 0, storageErr("count mentions", err)
	}

	items := []models.Mention{}
	query := s.db.Rebind(`SELECT ` + mentionColumns + ` FROM mentions` + where +
		` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`)
	pageArgs := append(append([]interface{}{}, args...), filter.PageSize, filter.Offset())
	if err := s.db.SelectContext(ctx, &items, query, pageArgs...); err != nil {
		return nil, 0, storageErr("list mentions", err)
	}

	return items, total, nil
}

// ListMissingLocation returns up to limit mentions with no location, oldest first.
func (s *SQLStore) ListMissingLocation(ctx context.Context, limit int) ([]models.Mention, error) {
	items := []models.Mention{}
	query := s.db.Rebind(`SELECT ` + mentionColumns + ` FROM mentions WHERE location IS NULL ORDER BY created_at LIMIT ?`)
	if err := s.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, storageErr("list mentions missing location", err)
	}
	return items, nil
}

// ListMissingMetadata returns up to limit mentions lacking a media name, keywords, location or summary.
func (s *SQLStore) ListMissingMetadata(ctx context.Context, limit int) ([]models.Mention, error) {
	items := []models.Mention{}
	query := s.db.Rebind(`SELECT ` + mentionColumns + ` FROM mentions
WHERE media_name = '' OR summary = '' OR location IS NULL OR ` + s.dialect.keywordsEmpty + `
ORDER BY created_at LIMIT ?`)
	if err := s.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, storageErr("list mentions missing metadata", err)
	}
	return items, nil
}

// ListActiveKeywords returns enabled keywords in creation order.
func (s *SQLStore) ListActiveKeywords(ctx context.Context) ([]models.Keyword, error) {
	items := []models.Keyword{}
	query := s.db.Rebind(`SELECT ` + keywordColumns + ` FROM keywords WHERE enabled = ? ORDER BY created_at, id`)
	if err := s.db.SelectContext(ctx, &items, query, true); err != nil {
		return nil, storageErr("list keywords", err)
	}
	return items, nil
}

// AddKeyword stores an enabled keyword as given.
func (s *SQLStore) AddKeyword(ctx context.Context, text string) (*models.Keyword, error) {
	kw := models.Keyword{
		ID:        uuid.New().String(),
		Keyword:   text,
		Enabled:   true,
		CreatedAt: models.FormatTimestamp(s.now()),
	}
	query := s.db.Rebind(`INSERT INTO keywords (` + keywordColumns + `) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, kw.ID, kw.Keyword, kw.Enabled, kw.CreatedAt); err != nil {
		return nil, storageErr("insert keyword", err)
	}
	return &kw, nil
}

// FindKeywordCI looks a keyword up case-insensitively, preferring an enabled row.
func (s *SQLStore) FindKeywordCI(ctx context.Context, text string) (*models.Keyword, error) {
	var kw models.Keyword
	query := s.db.Rebind(`SELECT ` + keywordColumns + ` FROM keywords
WHERE LOWER(keyword) = LOWER(?) ORDER BY enabled DESC, created_at DESC LIMIT 1`)
	err := s.db.GetContext(ctx, &kw, query, text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("find keyword", err)
	}
	return &kw, nil
}

// DisableKeyword soft-deletes a keyword.
func (s *SQLStore) DisableKeyword(ctx context.Context, id string) (*models.Keyword, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE keywords SET enabled = ? WHERE id = ?`), false, id)
	if err != nil {
		return nil, storageErr("disable keyword", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, storageErr("disable keyword", err)
	} else if n == 0 {
		return nil, fmt.Errorf("keyword %s: %w", id, models.ErrNotFound)
	}

	var kw models.Keyword
	if err := s.db.GetContext(ctx, &kw, s.db.Rebind(`SELECT `+keywordColumns+` FROM keywords WHERE id = ?`), id); err != nil {
		return nil, storageErr("load keyword", err)
	}
	return &kw, nil
}

// DeleteKeyword removes a keyword row.
func (s *SQLStore) DeleteKeyword(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM keywords WHERE id = ?`), id)
	if err != nil {
		return storageErr("delete keyword", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete keyword", err)
	}
	if n == 0 {
		return fmt.Errorf("keyword %s: %w", id, models.ErrNotFound)
	}
	return nil
}
