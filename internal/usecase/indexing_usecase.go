package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

// IndexingUseCase реализует инкрементальную индексацию фида в Qdrant.
// Свежие товары обрабатываются первыми; уже проиндексированные изображения
// пропускаются по детерминированному ID, поэтому повторный запуск почти
// не делает лишней работы.
type IndexingUseCase struct {
	loader    FeedLoader
	fetcher   ImageFetcher
	embedder  EmbedderInfra
	pointRepo PointRepository
	runRepo   RunRepository
	producer  IndexEventProducer
	progress  *domain.Progress
	logger    logger.Logger
	cfg       *cfg.IndexerCfg
}

func NewIndexingUC(
	loader FeedLoader,
	fetcher ImageFetcher,
	embedder EmbedderInfra,
	pointRepo PointRepository,
	runRepo RunRepository,
	producer IndexEventProducer,
	progress *domain.Progress,
	logger logger.Logger,
	cfg *cfg.IndexerCfg,
) *IndexingUseCase {
	return &IndexingUseCase{
		loader:    loader,
		fetcher:   fetcher,
		embedder:  embedder,
		pointRepo: pointRepo,
		runRepo:   runRepo,
		producer:  producer,
		progress:  progress,
		logger:    logger,
		cfg:       cfg,
	}
}

// seedState — общее состояние запуска, защищённое мьютексом.
// Flush батча выполняется под мьютексом, чтобы очистка была атомарна
// относительно отправки: ни потерянных, ни продублированных точек.
type seedState struct {
	mu               sync.Mutex
	batch            []domain.Point
	consecutiveSkips int
	processed        int
	indexed          int
	upserts          int
	earlyExit        bool
	fatal            error
}

// Seed выполняет один запуск индексации. Ошибки отдельных изображений и
// товаров гасятся на их границе; фатальна только ошибка upsert-а в Qdrant.
func (u *IndexingUseCase) Seed(ctx context.Context) (*SeedReport, error) {
	const op = "IndexingUseCase.Seed"

	items, found, err := u.loader.Load(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !found {
		u.logger.Warnf("feed not found at %s, nothing to index", u.cfg.FeedPath)
		u.progress.Begin(0)
		u.progress.Complete()
		return &SeedReport{}, nil
	}

	u.progress.Begin(len(items))
	u.logger.Infof("seeding started: %d unique items", len(items))

	existing, err := u.pointRepo.ScrollIDs(ctx)
	if err != nil {
		// Частичное множество допустимо: худший случай — повторная
		// векторизация уже проиндексированных изображений.
		u.logger.Warnf("scroll of existing IDs failed, continuing with %d collected: %v", len(existing), err)
	}
	u.logger.Infof("existing points in collection: %d", len(existing))

	runID, err := u.runRepo.CreateRun(ctx)
	if err != nil {
		u.logger.Warnf("failed to record indexing run: %v", err)
	}

	var (
		st       = &seedState{}
		wg       sync.WaitGroup
		sem      = make(chan struct{}, u.cfg.Workers)
		stop     = make(chan struct{})
		stopOnce sync.Once
	)
	halt := func() {
		stopOnce.Do(func() { close(stop) })
	}

	// Мягкий дедлайн: по его истечении новые товары не планируются,
	// начатые — дорабатывают.
	var deadline <-chan time.Time
	if u.cfg.RunBudget > 0 {
		timer := time.NewTimer(u.cfg.RunBudget)
		defer timer.Stop()
		deadline = timer.C
	}

scheduling:
	for idx, item := range items {
		// Закрытый stop проверяется до ожидания слота: иначе select ниже
		// может выбрать свободный слот вместо остановки.
		select {
		case <-stop:
			break scheduling
		default:
		}

		select {
		case <-stop:
			break scheduling
		case <-ctx.Done():
			break scheduling
		case <-deadline:
			u.logger.Warnf("run budget exhausted, no new items scheduled")
			break scheduling
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, item domain.Item) {
			defer wg.Done()
			defer func() { <-sem }()
			u.processItem(ctx, &item, idx, existing, st, halt, runID)
		}(idx, item)
	}
	wg.Wait()

	st.mu.Lock()
	if st.fatal == nil && len(st.batch) > 0 {
		if err := u.flushLocked(ctx, st, runID); err != nil {
			st.fatal = err
		}
	}
	report := &SeedReport{
		Processed: st.processed,
		Indexed:   st.indexed,
		Upserts:   st.upserts,
		EarlyExit: st.earlyExit,
	}
	fatal := st.fatal
	st.mu.Unlock()

	if err := u.runRepo.FinishRun(ctx, runID, report); err != nil {
		u.logger.Warnf("failed to finish indexing run record: %v", err)
	}

	if fatal != nil {
		return report, e.Wrap(op, fatal)
	}

	u.progress.Complete()

	if err := u.producer.RunCompleted(ctx, runID, report); err != nil {
		u.logger.Warnf("failed to publish run-completed event: %v", err)
	}

	u.logger.Infof("seeding complete: %d items processed, %d new points, early_exit=%v",
		report.Processed, report.Indexed, report.EarlyExit)
	return report, nil
}

// processItem обрабатывает один товар: пропускает уже проиндексированные
// изображения, скачивает и векторизует новые, складывает точки в батч.
func (u *IndexingUseCase) processItem(
	ctx context.Context,
	item *domain.Item,
	idx int,
	existing map[string]struct{},
	st *seedState,
	halt func(),
	runID int64,
) {
	defer u.progress.Advance(idx+1, item.Title)

	if !item.Indexable() {
		st.mu.Lock()
		st.processed++
		st.mu.Unlock()
		return
	}

	allIndexed := true
	var newPoints []domain.Point

	for _, ref := range item.Images {
		pointID := domain.DeriveImageID(ref)
		if _, ok := existing[pointID]; ok {
			continue
		}
		allIndexed = false

		res := u.fetcher.Resolve(ctx, ref)
		if res.Skip != "" {
			u.logger.Warnf("image %s skipped: %s", ref, res.Skip)
			continue
		}

		vec, err := u.embedder.Vectorize(ctx, res.Image.Data)
		if err != nil {
			u.logger.Warnf("vectorization of %s failed, image skipped: %v", ref, err)
			continue
		}

		payload := domain.NewPointPayload(item, res.Image.ThumbnailURL)
		newPoints = append(newPoints, *domain.NewPoint(pointID, vec.Vector, payload))
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.processed++

	if allIndexed {
		// Длинная непрерывная серия полностью проиндексированных товаров
		// означает, что дальше идёт уже обработанный бэклог.
		st.consecutiveSkips++
		if st.consecutiveSkips >= u.cfg.SkipLimit && !st.earlyExit {
			st.earlyExit = true
			u.logger.Infof("reached skip limit (%d), early exit", u.cfg.SkipLimit)
			halt()
		}
		return
	}

	st.consecutiveSkips = 0
	st.batch = append(st.batch, newPoints...)
	st.indexed += len(newPoints)

	if len(st.batch) >= u.cfg.BatchSize && st.fatal == nil {
		if err := u.flushLocked(ctx, st, runID); err != nil {
			st.fatal = err
			halt()
		}
	}
}

// flushLocked отправляет накопленный батч и очищает его.
// Вызывается только под st.mu.
func (u *IndexingUseCase) flushLocked(ctx context.Context, st *seedState, runID int64) error {
	count := len(st.batch)
	if count == 0 {
		return nil
	}

	if err := u.pointRepo.Upsert(ctx, st.batch); err != nil {
		return err
	}

	st.batch = st.batch[:0]
	st.upserts++
	u.logger.Infof("batch upserted: %d points", count)

	if err := u.producer.BatchFlushed(ctx, runID, count); err != nil {
		u.logger.Warnf("failed to publish batch-flushed event: %v", err)
	}

	return nil
}
