package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/imaging"
	"github.com/MametaroGG/BoothPic/pkg/jitter"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/minio/minio-go/v7"
)

const (
	maxImageBytes = 20 << 20

	// Базовый путь, по которому API раздаёт локальные превью.
	localThumbnailPrefix = "/api/images/"

	rawImagesDir = "raw_images"
)

// RetryPolicy — явные параметры повторов скачивания: число попыток,
// стартовая задержка и её потолок.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func defaultRetryPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		Attempts:  attempts,
		BaseDelay: 2 * time.Second,
		MaxDelay:  10 * time.Second,
	}
}

// Fetcher находит изображение товара по ссылке из фида и нормализует его
// до пригодного для векторизации вида. Источники, по порядку: локальный
// диск, архив в MinIO (если настроен), HTTP для абсолютных URL.
type Fetcher struct {
	httpClient  *http.Client
	imageRoot   string
	policy      RetryPolicy
	normalizer  *imaging.Normalizer
	minioClient *minio.Client
	minioCfg    *cfg.MinIOCfg
	logger      logger.Logger
}

// NewFetcher принимает nil minioClient: тогда фолбэк в архив отключён.
func NewFetcher(indexerCfg *cfg.IndexerCfg, minioClient *minio.Client, minioCfg *cfg.MinIOCfg, logger logger.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: indexerCfg.FetchTimeout,
			Transport: &http.Transport{
				MaxConnsPerHost:     indexerCfg.Workers * 2,
				MaxIdleConnsPerHost: indexerCfg.Workers,
			},
		},
		imageRoot:   indexerCfg.ImageRoot,
		policy:      defaultRetryPolicy(indexerCfg.FetchRetries),
		normalizer:  imaging.NewNormalizer(),
		minioClient: minioClient,
		minioCfg:    minioCfg,
		logger:      logger,
	}
}

// Resolve возвращает нормализованное изображение либо причину пропуска.
// Любой сбой на этом уровне гасится: конвейер индексации продолжает работу.
func (f *Fetcher) Resolve(ctx context.Context, imageRef string) usecase.ResolveResult {
	if isRemote(imageRef) {
		data, err := f.download(ctx, imageRef)
		if err != nil {
			return usecase.ResolveSkip(fmt.Sprintf("download failed: %v", err))
		}

		normalized, err := f.normalizer.Normalize(data)
		if err != nil {
			return usecase.ResolveSkip(fmt.Sprintf("decode failed: %v", err))
		}

		// Для удалённых изображений превью — сам исходный URL.
		return usecase.ResolveOK(usecase.NewResolvedImage(normalized, imageRef))
	}

	data, err := f.readLocal(imageRef)
	if err != nil && f.minioCfg != nil && f.minioCfg.Enabled && f.minioClient != nil {
		data, err = f.readMinio(ctx, imageRef)
	}
	if err != nil {
		return usecase.ResolveSkip(fmt.Sprintf("image not found: %v", err))
	}

	normalized, err := f.normalizer.Normalize(data)
	if err != nil {
		return usecase.ResolveSkip(fmt.Sprintf("decode failed: %v", err))
	}

	return usecase.ResolveOK(usecase.NewResolvedImage(normalized, localThumbnailPrefix+filepath.Base(imageRef)))
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// download скачивает изображение с повторами и экспоненциальной задержкой
// по параметрам f.policy.
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < f.policy.Attempts; attempt++ {
		if attempt > 0 {
			delay := jitter.ExponentialBackoff(f.policy.BaseDelay, f.policy.MaxDelay, attempt-1, jitter.DefaultJitter)
			f.logger.Debugf("retrying download of %s in %s (attempt %d/%d)", url, delay, attempt+1, f.policy.Attempts)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		data, err := f.downloadOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", f.policy.Attempts, lastErr)
}

func (f *Fetcher) downloadOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}

	return data, nil
}

// readLocal ищет файл по относительному пути фида, затем по имени файла
// в каталоге raw_images. Скрейпер исторически писал пути в обоих видах.
func (f *Fetcher) readLocal(ref string) ([]byte, error) {
	path := filepath.Join(f.imageRoot, filepath.FromSlash(ref))
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}

	fallback := filepath.Join(f.imageRoot, rawImagesDir, filepath.Base(ref))
	if fallback == path {
		return nil, err
	}

	return os.ReadFile(fallback)
}

func (f *Fetcher) readMinio(ctx context.Context, ref string) ([]byte, error) {
	obj, err := f.minioClient.GetObject(ctx, f.minioCfg.BucketName, filepath.Base(ref), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(io.LimitReader(obj, maxImageBytes))
}
