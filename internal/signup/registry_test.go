package signup

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"jobsy/internal/backend/backendtest"
)

type countingObserver struct {
	events  map[string]int
	calls   map[string]int
	flows   int
	updates int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{events: make(map[string]int), calls: make(map[string]int)}
}

func (o *countingObserver) EventApplied(event string, _ error) { o.events[event]++ }

func (o *countingObserver) BackendCall(op string, _ time.Duration, _ error) { o.calls[op]++ }

func (o *countingObserver) ActiveFlows(n int) {
	o.flows = n
	o.updates++
}

func TestRegistry_StartGetRemove(t *testing.T) {
	obs := newCountingObserver()
	reg := NewRegistry(time.Minute, Options{Clock: newFakeClock(), Logger: zap.NewNop(), Observer: obs})

	flow := reg.Start(backendtest.New())
	if flow.ID() == "" {
		t.Fatalf("expected flow id")
	}
	got, ok := reg.Get(flow.ID())
	if !ok || got != flow {
		t.Fatalf("expected to find flow")
	}
	if obs.flows != 1 {
		t.Fatalf("expected 1 active flow, got %d", obs.flows)
	}

	if !reg.Remove(flow.ID()) {
		t.Fatalf("expected remove to succeed")
	}
	if !flow.Closed() {
		t.Fatalf("expected removed flow to be closed")
	}
	if reg.Remove(flow.ID()) {
		t.Fatalf("expected second remove to report missing")
	}
	if obs.flows != 0 {
		t.Fatalf("expected 0 active flows, got %d", obs.flows)
	}
}

func TestRegistry_SweepClosesIdleFlows(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(10*time.Minute, Options{Clock: clock, Logger: zap.NewNop()})

	idle := reg.Start(backendtest.New())
	clock.Advance(6 * time.Minute)
	active := reg.Start(backendtest.New())
	clock.Advance(5 * time.Minute)

	if _, err := active.Dispatch(context.Background(), EditCredentials{Email: "a@b.com"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if n := reg.Sweep(); n != 1 {
		t.Fatalf("expected 1 expired flow, got %d", n)
	}
	if !idle.Closed() {
		t.Fatalf("expected idle flow closed")
	}
	if _, ok := reg.Get(active.ID()); !ok || active.Closed() {
		t.Fatalf("expected active flow kept")
	}
	if _, err := idle.Dispatch(context.Background(), Next{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on expired flow, got %v", err)
	}
}

func TestRegistry_ObserverSeesEventsAndCalls(t *testing.T) {
	obs := newCountingObserver()
	reg := NewRegistry(time.Minute, Options{Clock: newFakeClock(), Logger: zap.NewNop(), Observer: obs})
	flow := reg.Start(backendtest.New())
	defer reg.CloseAll()

	toAccountCreation(t, flow, "hire")
	dispatch(t, flow, SubmitRegistration{})

	if obs.events["next"] != 3 {
		t.Fatalf("expected 3 next events, got %d", obs.events["next"])
	}
	if obs.calls["create_account"] != 1 {
		t.Fatalf("expected one create_account call, got %d", obs.calls["create_account"])
	}
	if obs.events["account_created"] != 1 {
		t.Fatalf("expected account_created event, got %d", obs.events["account_created"])
	}
}
