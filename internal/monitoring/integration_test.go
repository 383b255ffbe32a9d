package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/healthshield/mentions-bot/internal/models"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFileStorage implements ArchiveInterface in memory for testing
type MockFileStorage struct {
	data map[string][]byte
	err  error
}

func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{
		data: make(map[string][]byte),
	}
}

func (m *MockFileStorage) Store(_ context.Context, filename string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[filename] = data
	return nil
}

func (m *MockFileStorage) Retrieve(_ context.Context, filename string) ([]byte, error) {
	if data, exists := m.data[filename]; exists {
		return data, nil
	}
	return nil, fmt.Errorf("file not found: %s", filename)
}

func (m *MockFileStorage) List(_ context.Context, prefix string) ([]string, error) {
	var files []string
	for filename := range m.data {
		if strings.HasPrefix(filename, prefix) {
			files = append(files, filename)
		}
	}
	sort.Strings(files)
	return files, nil
}

func scrapeFixture(t *testing.T) (*storage.SQLStore, []sources.Source) {
	store := newTestStore(t, "dengue", "measles")
	feed := newMockSource("rss:fixture", []sources.Item{
		{Title: "Dengue cases rise in Petaling Jaya", Link: "https://www.thestar.com.my/a", Outlet: "The Star"},
		{Title: "Measles vaccination in Ipoh", Link: "https://www.malaymail.com/b", Outlet: "Malay Mail"},
		{Title: "Dengue awareness week", Link: "https://www.thestar.com.my/c", Outlet: "The Star"},
		{Title: "Unrelated business news", Link: "https://www.thestar.com.my/d", Outlet: "The Star"},
	}, nil)
	return store, []sources.Source{feed}
}

// TestRunArchivesAndNotifies runs a full scrape and checks the archived run
// file and the triage digest sent afterwards.
func TestRunArchivesAndNotifies(t *testing.T) {
	ctx := context.Background()
	store, feeds := scrapeFixture(t)
	archive := NewMockFileStorage()

	var digest *models.Digest
	notifier := &MockNotificationService{}
	notifier.On("SendDigest", mock.Anything).Run(func(args mock.Arguments) {
		digest = args.Get(0).(*models.Digest)
	}).Return(nil).Once()

	service := newTestService(nil, store, Components{Feeds: feeds, Archive: archive, Notifier: notifier})
	result, err := service.RunScrape(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)

	files, err := archive.List(ctx, "mentions-")
	require.NoError(t, err)
	require.Equal(t, []string{storage.RunFileName("scrape", fixedNow)}, files)

	record, err := storage.LoadRun(ctx, archive, files[0])
	require.NoError(t, err)
	assert.Equal(t, "scrape", record.Run)
	assert.Len(t, record.Mentions, 3)

	require.NotNil(t, digest)
	assert.Equal(t, 3, digest.Inserted)
	assert.Equal(t, map[string]int{"The Star": 2, "Malay Mail": 1}, digest.BySource)
	notifier.AssertExpectations(t)

	// Nothing new on the second run: no archive file, no digest.
	result, err = service.RunScrape(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	files, err = archive.List(ctx, "mentions-")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	notifier.AssertNumberOfCalls(t, "SendDigest", 1)
}

// TestRunSurvivesPublishFailures checks that archive and notification errors
// do not fail a run whose mentions were stored.
func TestRunSurvivesPublishFailures(t *testing.T) {
	store, feeds := scrapeFixture(t)
	archive := NewMockFileStorage()
	archive.err = errors.New("container unavailable")

	notifier := &MockNotificationService{}
	notifier.On("SendDigest", mock.Anything).Return(errors.New("webhook down"))

	service := newTestService(nil, store, Components{Feeds: feeds, Archive: archive, Notifier: notifier})
	result, err := service.RunScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Empty(t, archive.data)
}
