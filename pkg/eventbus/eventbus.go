package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event представляет собой любое событие в системе.
type Event interface {
	Name() string
}

// Listener - это обработчик (слушатель) событий.
type Listener func(ctx context.Context, event Event) error

// Bus - шина событий внутри процесса.
type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	timeout   time.Duration
	logger    *zap.Logger
}

// New создает шину. timeout ограничивает время одного обработчика (0 - одна минута).
func New(logger *zap.Logger, timeout time.Duration) *Bus {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Bus{
		listeners: make(map[string][]Listener),
		timeout:   timeout,
		logger:    logger,
	}
}

// Subscribe подписывает слушателя на определенное событие.
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish вызывает подписчиков в отдельных горутинах и сразу возвращает управление.
// ctx вызывающего не передаётся: обработчик переживает завершившийся HTTP-запрос.
func (b *Bus) Publish(_ context.Context, event Event) {
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners[event.Name()]...)
	b.mu.RUnlock()

	for _, listener := range listeners {
		b.wg.Add(1)
		go b.run(listener, event)
	}
}

func (b *Bus) run(l Listener, event Event) {
	defer b.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("Паника в обработчике события",
				zap.String("event", event.Name()),
				zap.Error(fmt.Errorf("%v", p)),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := l(ctx, event); err != nil {
		b.logger.Error("Ошибка в обработчике события",
			zap.String("event", event.Name()),
			zap.Error(err),
		)
	}
}

// Wait блокируется, пока не завершатся все запущенные обработчики. Вызывается при остановке сервера.
func (b *Bus) Wait() {
	b.wg.Wait()
}
