package usecase

import (
	"context"
	"path"
	"sync"

	"github.com/MametaroGG/BoothPic/internal/domain"
)

type fakeLoader struct {
	items []domain.Item
	found bool
	err   error
}

func (f *fakeLoader) Load(ctx context.Context) ([]domain.Item, bool, error) {
	return f.items, f.found, f.err
}

// fakeFetcher отдаёт псевдоизображение для любой ссылки, кроме перечисленных
// в skip.
type fakeFetcher struct {
	skip map[string]string
}

func (f *fakeFetcher) Resolve(ctx context.Context, imageRef string) ResolveResult {
	if reason, ok := f.skip[imageRef]; ok {
		return ResolveSkip(reason)
	}
	return ResolveOK(NewResolvedImage([]byte(imageRef), "/api/images/"+path.Base(imageRef)))
}

type fakeEmbedder struct {
	mu       sync.Mutex
	vector   []float32
	err      error
	calls    int
	lastData []byte
}

func (f *fakeEmbedder) Vectorize(ctx context.Context, imageData []byte) (*VectorizeRes, error) {
	f.mu.Lock()
	f.calls++
	f.lastData = imageData
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return NewVectorizeRes(f.vector, "test-model"), nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEmbedder) lastInput() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastData
}

// fakeNormalizer помечает данные префиксом, чтобы тест мог отличить
// нормализованные байты от исходных. Пустой префикс даёт identity.
type fakeNormalizer struct {
	prefix string
	err    error
}

func (f *fakeNormalizer) Normalize(data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(f.prefix), data...), nil
}

type fakePointRepo struct {
	mu        sync.Mutex
	existing  map[string]struct{}
	scrollErr error
	upsertErr error
	upserts   [][]domain.Point

	queryRes    []domain.ScoredPoint
	queryErr    error
	queryLimit  uint64
	queryFilter *SearchFilter
}

func (f *fakePointRepo) Upsert(ctx context.Context, points []domain.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	batch := append([]domain.Point(nil), points...)
	f.upserts = append(f.upserts, batch)
	return nil
}

func (f *fakePointRepo) ScrollIDs(ctx context.Context) (map[string]struct{}, error) {
	if f.existing == nil {
		return map[string]struct{}{}, f.scrollErr
	}
	return f.existing, f.scrollErr
}

func (f *fakePointRepo) Query(ctx context.Context, vector []float32, limit uint64, filter *SearchFilter) ([]domain.ScoredPoint, error) {
	f.mu.Lock()
	f.queryLimit = limit
	f.queryFilter = filter
	f.mu.Unlock()
	return f.queryRes, f.queryErr
}

func (f *fakePointRepo) totalUpserted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, b := range f.upserts {
		total += len(b)
	}
	return total
}

type fakeRunRepo struct {
	mu       sync.Mutex
	created  int
	finished *SeedReport
}

func (f *fakeRunRepo) CreateRun(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return 77, nil
}

func (f *fakeRunRepo) FinishRun(ctx context.Context, runID int64, report *SeedReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = report
	return nil
}

type fakeProducer struct {
	mu        sync.Mutex
	batches   []int
	completed bool
	optOuts   [][]string
}

func (f *fakeProducer) BatchFlushed(ctx context.Context, runID int64, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, points)
	return nil
}

func (f *fakeProducer) RunCompleted(ctx context.Context, runID int64, report *SeedReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
	return nil
}

func (f *fakeProducer) OptOutRegistered(ctx context.Context, identifier string, identifiers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optOuts = append(f.optOuts, identifiers)
	return nil
}

type fakeOptOutRepo struct {
	mu    sync.Mutex
	list  []string
	err   error
	added [][]string
}

func (f *fakeOptOutRepo) Add(ctx context.Context, identifiers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, identifiers)
	return nil
}

func (f *fakeOptOutRepo) List(ctx context.Context) ([]string, error) {
	return f.list, f.err
}

type fakeCacheRepo struct {
	mu    sync.Mutex
	store map[string]*SearchRes
	sets  chan string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{
		store: make(map[string]*SearchRes),
		sets:  make(chan string, 8),
	}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) (*SearchRes, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.store[key]
	return res, ok
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, res *SearchRes) error {
	f.mu.Lock()
	f.store[key] = res
	f.mu.Unlock()
	f.sets <- key
	return nil
}
