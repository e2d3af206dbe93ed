package session

import (
	"context"
	"strings"
	"sync"
)

// Broker reparte eventos de "sesion terminada" por usuario.
type Broker interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(userID string, fn func()) (unsubscribe func())
}

// MemoryBroker entrega los eventos dentro del proceso.
type MemoryBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]func())}
}

func (b *MemoryBroker) Publish(_ context.Context, userID string) error {
	b.dispatch(userID)
	return nil
}

func (b *MemoryBroker) Subscribe(userID string, fn func()) func() {
	userID = strings.TrimSpace(userID)
	if userID == "" || fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[int]func())
	}
	b.subs[userID][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
		})
	}
}

func (b *MemoryBroker) Subscribers(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}

// dispatch llama a los suscriptores fuera del lock para que puedan desuscribirse.
func (b *MemoryBroker) dispatch(userID string) {
	userID = strings.TrimSpace(userID)
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs[userID]))
	for _, fn := range b.subs[userID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
