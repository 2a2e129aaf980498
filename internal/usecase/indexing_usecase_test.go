package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndexerCfg() *cfg.IndexerCfg {
	return &cfg.IndexerCfg{
		FeedPath:  "feed.jsonl",
		BatchSize: 50,
		SkipLimit: 200,
		Workers:   4,
	}
}

// singleImageItems генерирует n товаров по одному изображению у каждого.
func singleImageItems(n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Item{
			URL:    fmt.Sprintf("https://booth.pm/ja/items/%d", i),
			Title:  fmt.Sprintf("item %d", i),
			Images: []string{fmt.Sprintf("raw_images/item_%d_1.jpg", i)},
		})
	}
	return items
}

func newIndexingFixture(items []domain.Item, found bool, indexerCfg *cfg.IndexerCfg) (*IndexingUseCase, *fakePointRepo, *fakeRunRepo, *fakeProducer, *domain.Progress) {
	pointRepo := &fakePointRepo{}
	runRepo := &fakeRunRepo{}
	producer := &fakeProducer{}
	progress := domain.NewProgress()

	uc := NewIndexingUC(
		&fakeLoader{items: items, found: found},
		&fakeFetcher{},
		&fakeEmbedder{vector: []float32{0.1, 0.2}},
		pointRepo,
		runRepo,
		producer,
		progress,
		logger.NewSlogLogger(),
		indexerCfg,
	)
	return uc, pointRepo, runRepo, producer, progress
}

func TestSeedMissingFeed(t *testing.T) {
	uc, pointRepo, _, _, progress := newIndexingFixture(nil, false, testIndexerCfg())

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &SeedReport{}, report)
	assert.Empty(t, pointRepo.upserts)
	assert.True(t, progress.Snapshot().IsComplete)
}

func TestSeedIndexesEverythingInBatches(t *testing.T) {
	const n = 120

	uc, pointRepo, runRepo, producer, progress := newIndexingFixture(singleImageItems(n), true, testIndexerCfg())

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, n, report.Processed)
	assert.Equal(t, n, report.Indexed)
	assert.False(t, report.EarlyExit)
	// 120 точек батчами по 50: два полных батча и остаток.
	assert.Equal(t, 3, report.Upserts)
	assert.Equal(t, n, pointRepo.totalUpserted())

	assert.Equal(t, 1, runRepo.created)
	require.NotNil(t, runRepo.finished)
	assert.Equal(t, n, runRepo.finished.Indexed)

	assert.True(t, producer.completed)
	assert.Len(t, producer.batches, 3)

	snap := progress.Snapshot()
	assert.True(t, snap.IsComplete)
	assert.Equal(t, n, snap.Total)
	assert.Equal(t, n, snap.Current)
}

func TestSeedSecondRunIsIdempotent(t *testing.T) {
	items := singleImageItems(10)

	existing := make(map[string]struct{})
	for _, item := range items {
		existing[domain.DeriveImageID(item.Images[0])] = struct{}{}
	}

	uc, pointRepo, _, _, progress := newIndexingFixture(items, true, testIndexerCfg())
	pointRepo.existing = existing

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, report.Processed)
	assert.Equal(t, 0, report.Indexed)
	assert.Equal(t, 0, report.Upserts)
	assert.False(t, report.EarlyExit)
	assert.Empty(t, pointRepo.upserts)
	assert.True(t, progress.Snapshot().IsComplete)
}

func TestSeedEarlyExitOnSkipRun(t *testing.T) {
	items := singleImageItems(100)

	existing := make(map[string]struct{})
	for _, item := range items {
		existing[domain.DeriveImageID(item.Images[0])] = struct{}{}
	}

	indexerCfg := testIndexerCfg()
	indexerCfg.SkipLimit = 5
	indexerCfg.Workers = 1

	uc, pointRepo, _, _, _ := newIndexingFixture(items, true, indexerCfg)
	pointRepo.existing = existing

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.True(t, report.EarlyExit)
	assert.Equal(t, 0, report.Indexed)
	assert.Less(t, report.Processed, len(items), "early exit must stop before the tail")
}

func TestSeedEarlyExitStopsScheduling(t *testing.T) {
	items := singleImageItems(50)

	existing := make(map[string]struct{})
	for _, item := range items {
		existing[domain.DeriveImageID(item.Images[0])] = struct{}{}
	}

	indexerCfg := testIndexerCfg()
	indexerCfg.SkipLimit = 1
	indexerCfg.Workers = 1

	uc, pointRepo, _, _, _ := newIndexingFixture(items, true, indexerCfg)
	pointRepo.existing = existing

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	require.True(t, report.EarlyExit)
	// Порог сработал на первом же товаре. Один лишний товар мог успеть
	// занять освободившийся слот, дальше планирование не идёт.
	assert.LessOrEqual(t, report.Processed, 2)
}

func TestSeedNewItemResetsSkipCounter(t *testing.T) {
	// Чередование проиндексированного и нового: порог подряд пропущенных
	// не набирается, все новые точки доходят до Qdrant.
	items := singleImageItems(20)

	existing := make(map[string]struct{})
	for i, item := range items {
		if i%2 == 0 {
			existing[domain.DeriveImageID(item.Images[0])] = struct{}{}
		}
	}

	indexerCfg := testIndexerCfg()
	indexerCfg.SkipLimit = 3
	indexerCfg.Workers = 1

	uc, pointRepo, _, _, _ := newIndexingFixture(items, true, indexerCfg)
	pointRepo.existing = existing

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.False(t, report.EarlyExit)
	assert.Equal(t, 20, report.Processed)
	assert.Equal(t, 10, report.Indexed)
	assert.Equal(t, 10, pointRepo.totalUpserted())
}

func TestSeedPartiallyIndexedItem(t *testing.T) {
	item := domain.Item{
		URL:    "https://booth.pm/ja/items/1",
		Title:  "two images",
		Images: []string{"raw_images/a.jpg", "raw_images/b.jpg"},
	}

	uc, pointRepo, _, _, _ := newIndexingFixture([]domain.Item{item}, true, testIndexerCfg())
	pointRepo.existing = map[string]struct{}{
		domain.DeriveImageID("raw_images/a.jpg"): {},
	}

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Indexed, "only the missing image becomes a point")
	require.Equal(t, 1, pointRepo.totalUpserted())
	assert.Equal(t, domain.DeriveImageID("raw_images/b.jpg"), pointRepo.upserts[0][0].ID)
}

func TestSeedSkipsNonIndexableItems(t *testing.T) {
	items := []domain.Item{
		{Title: "no url", Images: []string{"raw_images/x.jpg"}},
		{URL: "https://booth.pm/ja/items/1", Title: "no images"},
		{URL: "https://booth.pm/ja/items/2", Title: "ok", Images: []string{"raw_images/ok.jpg"}},
	}

	uc, pointRepo, _, _, _ := newIndexingFixture(items, true, testIndexerCfg())

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, pointRepo.totalUpserted())
}

func TestSeedFetchFailureSkipsImageOnly(t *testing.T) {
	items := singleImageItems(3)

	pointRepo := &fakePointRepo{}
	progress := domain.NewProgress()
	uc := NewIndexingUC(
		&fakeLoader{items: items, found: true},
		&fakeFetcher{skip: map[string]string{items[1].Images[0]: "download failed"}},
		&fakeEmbedder{vector: []float32{0.1}},
		pointRepo,
		&fakeRunRepo{},
		&fakeProducer{},
		progress,
		logger.NewSlogLogger(),
		testIndexerCfg(),
	)

	report, err := uc.Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Indexed)
	assert.True(t, progress.Snapshot().IsComplete)
}

func TestSeedUpsertFailureIsFatal(t *testing.T) {
	items := singleImageItems(60)

	uc, pointRepo, runRepo, producer, progress := newIndexingFixture(items, true, testIndexerCfg())
	pointRepo.upsertErr = fmt.Errorf("qdrant unavailable")

	report, err := uc.Seed(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 0, report.Upserts)
	// Прогресс не помечается завершённым: следующий запуск доделает работу.
	assert.False(t, progress.Snapshot().IsComplete)
	assert.NotNil(t, runRepo.finished)
	assert.False(t, producer.completed)
}
