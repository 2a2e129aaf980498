package usecase

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/logger"
)

var (
	shopSubdomainRe = regexp.MustCompile(`https?://([\w-]+)\.booth\.pm`)
	itemIDRe        = regexp.MustCompile(`/items/(\d+)`)
	digitsRe        = regexp.MustCompile(`^\d+$`)
)

// Служебные поддомены booth.pm, не являющиеся магазинами.
var reservedSubdomains = map[string]struct{}{
	"www":       {},
	"extension": {},
	"manage":    {},
}

// OptOutUseCase ведёт реестр магазинов, исключённых из выдачи поиска
// по запросу владельца, и уведомляет операторов о каждой новой заявке.
type OptOutUseCase struct {
	optOutRepo OptOutRepository
	producer   OptOutEventProducer
	logger     logger.Logger
}

func NewOptOutUC(optOutRepo OptOutRepository, producer OptOutEventProducer, logger logger.Logger) *OptOutUseCase {
	return &OptOutUseCase{
		optOutRepo: optOutRepo,
		producer:   producer,
		logger:     logger,
	}
}

// RegisterOptOut нормализует ссылку или имя магазина в набор стабильных
// идентификаторов и сохраняет их. Возвращает сохранённые идентификаторы.
func (o *OptOutUseCase) RegisterOptOut(ctx context.Context, identifier string) ([]string, error) {
	const op = "OptOutUseCase.RegisterOptOut"

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, e.Wrap(op, e.ErrEmptyShopIdentifier)
	}

	ids := ExtractBoothIdentifiers(identifier)
	// Исходная строка тоже сохраняется на случай, если в payload магазин
	// записан ровно в таком виде.
	ids[strings.ToLower(identifier)] = struct{}{}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	if err := o.optOutRepo.Add(ctx, sorted); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Заявка уже сохранена: сбой уведомления её не отменяет.
	if err := o.producer.OptOutRegistered(ctx, identifier, sorted); err != nil {
		o.logger.Warnf("failed to publish opt-out notification: %v", err)
	}

	o.logger.Infof("shop opted out: %q -> %v", identifier, sorted)
	return sorted, nil
}

// ExtractBoothIdentifiers выделяет стабильные идентификаторы из ссылки на
// магазин BOOTH или произвольного текста: поддомен магазина, числовой ID
// товара, голый числовой ID и слаг в нижнем регистре.
func ExtractBoothIdentifiers(text string) map[string]struct{} {
	ids := make(map[string]struct{})
	text = strings.TrimSpace(text)
	if text == "" {
		return ids
	}

	if m := shopSubdomainRe.FindStringSubmatch(text); m != nil {
		sub := strings.ToLower(m[1])
		if _, reserved := reservedSubdomains[sub]; !reserved {
			ids[sub] = struct{}{}
		}
	}

	if m := itemIDRe.FindStringSubmatch(text); m != nil {
		ids[m[1]] = struct{}{}
	}

	if digitsRe.MatchString(text) {
		ids[text] = struct{}{}
	}

	if !strings.HasPrefix(text, "http") {
		ids[strings.ToLower(text)] = struct{}{}
	}

	return ids
}
