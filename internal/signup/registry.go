package signup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobsy/internal/backend"
)

// Registry guarda los flujos vivos por id y cierra los que quedan inactivos.
type Registry struct {
	opts Options
	ttl  time.Duration

	mu    sync.Mutex
	flows map[string]*Flow
}

func NewRegistry(ttl time.Duration, opts Options) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		opts:  opts.withDefaults(),
		ttl:   ttl,
		flows: make(map[string]*Flow),
	}
}

// Start crea un flujo nuevo para la sesion de navegador que usa client.
func (r *Registry) Start(client backend.Client) *Flow {
	flow := NewFlow(uuid.NewString(), client, r.opts)
	r.mu.Lock()
	r.flows[flow.ID()] = flow
	n := len(r.flows)
	r.mu.Unlock()
	r.opts.Observer.ActiveFlows(n)
	return flow
}

func (r *Registry) Get(id string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	flow, ok := r.flows[id]
	return flow, ok
}

// Remove cierra y olvida el flujo.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	flow, ok := r.flows[id]
	delete(r.flows, id)
	n := len(r.flows)
	r.mu.Unlock()
	if !ok {
		return false
	}
	flow.Close()
	r.opts.Observer.ActiveFlows(n)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// Sweep cierra los flujos sin actividad desde hace mas de ttl.
func (r *Registry) Sweep() int {
	cutoff := r.opts.Clock.Now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Flow
	for id, flow := range r.flows {
		if flow.TouchedAt().Before(cutoff) {
			expired = append(expired, flow)
			delete(r.flows, id)
		}
	}
	n := len(r.flows)
	r.mu.Unlock()

	for _, flow := range expired {
		flow.Close()
	}
	if len(expired) > 0 {
		r.opts.Logger.Info("signup flows expired", zap.Int("count", len(expired)))
		r.opts.Observer.ActiveFlows(n)
	}
	return len(expired)
}

// Run barre cada interval hasta que ctx se cancela; al salir cierra todo.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*Flow)
	r.mu.Unlock()
	for _, flow := range flows {
		flow.Close()
	}
	r.opts.Observer.ActiveFlows(0)
}
