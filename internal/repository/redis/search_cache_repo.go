package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/MametaroGG/BoothPic/internal/cfg"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/clients"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// SearchCacheRepo кэширует готовые ответы поиска в Redis.
// Кэш строго вспомогательный: любой сбой трактуется как промах.
type SearchCacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewSearchCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *SearchCacheRepo {
	return &SearchCacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Get возвращает закэшированный ответ поиска, игнорируя промахи и логируя сбои.
func (s *SearchCacheRepo) Get(ctx context.Context, key string) (*usecase.SearchRes, bool) {
	data, err := s.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, r.Nil) {
			s.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, false
	}

	var res usecase.SearchRes
	if err := json.Unmarshal(data, &res); err != nil {
		s.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		if err := s.client.Client.Del(context.Background(), key).Err(); err != nil {
			s.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, false
	}

	return &res, true
}

// Set кэширует ответ поиска с настроенным TTL.
func (s *SearchCacheRepo) Set(ctx context.Context, key string, res *usecase.SearchRes) error {
	data, err := json.Marshal(res)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := s.client.Client.Set(ctx, key, data, s.cfg.SearchTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
