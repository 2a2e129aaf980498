package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Func — сигнатура функции освобождения ресурса.
type Func func(ctx context.Context) error

// Closer собирает функции освобождения ресурсов и при остановке приложения
// закрывает их в порядке, обратном регистрации.
type Closer struct {
	mu            sync.Mutex
	once          sync.Once
	named         []namedFunc
	forcedTimeout time.Duration
}

type namedFunc struct {
	name string
	f    Func
}

// NewCloser создает новый экземпляр Closer.
// forcedTimeout — время на принудительное закрытие остатка при таймауте контекста в Close.
func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
	}
}

// Add регистрирует функцию закрытия под человекочитаемым именем ресурса.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.named = append(c.named, namedFunc{name: name, f: f})
}

// Close последовательно закрывает все зарегистрированные ресурсы (LIFO).
// Если контекст отменяется раньше, остаток закрывается принудительно
// с собственным таймаутом.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.named
		c.mu.Unlock()

		stopIdx, problems := c.gracefulClose(ctx, funcs)
		if stopIdx < 0 {
			if len(problems) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(problems, "\n"))
			}

			return
		}

		remaining := funcs[:stopIdx+1]
		problems = append(problems, c.forcedClose(remaining)...)

		err = fmt.Errorf(
			"shutdown interrupted after %d/%d resources:\n%s",
			len(funcs)-1-stopIdx,
			len(funcs),
			strings.Join(problems, "\n"),
		)
	})

	return err
}

// gracefulClose закрывает ресурсы от последнего к первому. При отмене
// контекста возвращает индекс первого незакрытого ресурса.
func (c *Closer) gracefulClose(ctx context.Context, funcs []namedFunc) (int, []string) {
	var problems []string
	for i := len(funcs) - 1; i >= 0; i-- {
		var (
			nf   = funcs[i]
			done = make(chan error, 1)
		)

		go func() {
			done <- nf.f(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				problems = append(problems, fmt.Sprintf("[!] %s: %v", nf.name, err))
			}
		case <-ctx.Done():
			return i, problems
		}
	}

	return -1, problems
}

// forcedClose параллельно закрывает остаток с собственным таймаутом.
func (c *Closer) forcedClose(funcs []namedFunc) []string {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		problems []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, nf := range funcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := nf.f(ctx); err != nil {
				mu.Lock()
				problems = append(problems, fmt.Sprintf("[FORCED] %s: %v", nf.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return problems
}
