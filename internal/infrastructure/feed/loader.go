package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/MametaroGG/BoothPic/internal/domain"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	initialLineBuf = 64 * 1024
	maxLineBuf     = 4 * 1024 * 1024
)

// Loader читает JSONL-фид скрейпера и строит рабочее множество товаров.
type Loader struct {
	path   string
	logger logger.Logger
}

func NewLoader(path string, logger logger.Logger) *Loader {
	return &Loader{
		path:   path,
		logger: logger,
	}
}

// Load возвращает товары фида, дедуплицированные по url (побеждает
// последняя запись), от новых к старым относительно порядка дозаписи.
// Отсутствующий фид — не ошибка: (nil, false, nil).
func (l *Loader) Load(ctx context.Context) ([]domain.Item, bool, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}
	defer f.Close()

	var (
		items   []domain.Item
		byURL   = make(map[string]int) // url -> позиция первой встречи
		scanner = bufio.NewScanner(f)
		lineNo  int
	)
	scanner.Buffer(make([]byte, 0, initialLineBuf), maxLineBuf)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, true, e.Wrap(whereami.WhereAmI(), err)
		}

		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item domain.Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			l.logger.Warnf("feed line %d is not valid JSON, skipped: %v", lineNo, err)
			continue
		}
		if item.URL == "" {
			continue
		}

		if idx, ok := byURL[item.URL]; ok {
			items[idx] = item
		} else {
			byURL[item.URL] = len(items)
			items = append(items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, true, e.Wrap(whereami.WhereAmI(), err)
	}

	// Фид append-only: разворот даёт свежие товары первыми, чтобы новое
	// индексировалось раньше старого бэклога.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return items, true, nil
}
