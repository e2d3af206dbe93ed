package signup

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/guard"
)

// ErrClosed se devuelve cuando el flujo ya fue desmontado.
var ErrClosed = errors.New("signup flow closed")

// Observer recibe eventos aplicados y llamadas al backend; lo implementa metrics.
type Observer interface {
	EventApplied(event string, err error)
	BackendCall(op string, elapsed time.Duration, err error)
	ActiveFlows(n int)
}

type nopObserver struct{}

func (nopObserver) EventApplied(string, error)               {}
func (nopObserver) BackendCall(string, time.Duration, error) {}
func (nopObserver) ActiveFlows(int)                          {}

// Options configura Flow y Registry; los valores cero usan los defaults.
type Options struct {
	Clock       Clock
	Logger      *zap.Logger
	Observer    Observer
	CallTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 30 * time.Second
	}
	return o
}

// Flow ejecuta una Machine contra el backend. Los eventos se aplican de a uno;
// las llamadas de red corren sin tomar el lock.
type Flow struct {
	id     string
	client backend.Client
	guard  *guard.Guard
	opts   Options

	mu        sync.Mutex
	m         Machine
	timer     Timer
	timerGen  uint64
	closed    bool
	touchedAt time.Time
}

func NewFlow(id string, client backend.Client, opts Options) *Flow {
	opts = opts.withDefaults()
	return &Flow{
		id:        id,
		client:    client,
		guard:     guard.New(opts.Logger, client),
		opts:      opts,
		m:         NewMachine(),
		touchedAt: opts.Clock.Now(),
	}
}

func (f *Flow) ID() string {
	return f.id
}

// Client devuelve el backend de la sesion de navegador a la que pertenece el flujo.
func (f *Flow) Client() backend.Client {
	return f.client
}

func (f *Flow) Snapshot() Machine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m
}

func (f *Flow) TouchedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touchedAt
}

func (f *Flow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Dispatch aplica ev y ejecuta las llamadas que produzca hasta que la maquina queda quieta.
// Devuelve la maquina resultante y el error con que Transition rechazo ev, si lo hubo.
func (f *Flow) Dispatch(ctx context.Context, ev Event) (Machine, error) {
	effects, err := f.apply(ev)
	if errors.Is(err, ErrClosed) {
		return Machine{}, err
	}

	for len(effects) > 0 {
		eff := effects[0]
		effects = effects[1:]
		result := f.execute(ctx, eff)
		if result == nil {
			continue
		}
		more, applyErr := f.apply(result)
		if errors.Is(applyErr, ErrClosed) {
			f.opts.Logger.Debug("dropping result after close", zap.String("flow_id", f.id), zap.String("event", EventName(result)))
			break
		}
		effects = append(effects, more...)
	}
	return f.Snapshot(), err
}

// Close desmonta el flujo: cancela el temporizador y descarta resultados que lleguen despues.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.stopTimerLocked()
}

// apply corre Transition bajo lock, resuelve los efectos locales y devuelve los de red.
func (f *Flow) apply(ev Event) ([]Effect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}

	next, effects, err := Transition(f.m, ev)
	f.m = next
	f.touchedAt = f.opts.Clock.Now()
	f.opts.Observer.EventApplied(EventName(ev), err)
	if err != nil {
		f.opts.Logger.Debug("signup event rejected",
			zap.String("flow_id", f.id),
			zap.String("event", EventName(ev)),
			zap.String("state", next.State.String()),
			zap.Error(err),
		)
	}

	var remote []Effect
	for _, eff := range effects {
		switch eff.(type) {
		case ArmCooldown:
			f.armTimerLocked()
		case CancelCooldown:
			f.stopTimerLocked()
		default:
			remote = append(remote, eff)
		}
	}
	return remote, err
}

func (f *Flow) armTimerLocked() {
	f.stopTimerLocked()
	gen := f.timerGen
	f.timer = f.opts.Clock.AfterFunc(time.Second, func() { f.tick(gen) })
}

func (f *Flow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.timerGen++
}

func (f *Flow) tick(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.timerGen {
		return
	}
	f.timer = nil

	next, effects, _ := Transition(f.m, Tick{})
	f.m = next
	for _, eff := range effects {
		if _, ok := eff.(ArmCooldown); ok {
			f.armTimerLocked()
		}
	}
}

// execute hace la llamada de red de un efecto y devuelve el evento con el resultado.
// La llamada no se cancela si el pedido que la origino se cancela.
func (f *Flow) execute(ctx context.Context, eff Effect) Event {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.opts.CallTimeout)
	defer cancel()
	start := f.opts.Clock.Now()

	switch e := eff.(type) {
	case CreateAccount:
		identity, err := f.client.CreateAccount(callCtx, e.Email, e.Password, backend.Metadata{Role: e.Role})
		f.observe(eff, start, err)
		if err != nil {
			return AccountCreationFailed{Attempt: e.Attempt, Err: err}
		}
		f.opts.Logger.Info("signup account created", zap.String("flow_id", f.id), zap.String("user_id", identity.UserID))
		return AccountCreated{Attempt: e.Attempt, Identity: identity}

	case SendCode:
		err := f.client.SendOneTimeCode(callCtx, e.Email)
		f.observe(eff, start, err)
		if err != nil {
			return CodeSendFailed{Attempt: e.Attempt, Err: err}
		}
		return CodeSent{Attempt: e.Attempt, At: f.opts.Clock.Now()}

	case VerifyCode:
		identity, err := f.client.VerifyOneTimeCode(callCtx, e.Email, e.Code)
		f.observe(eff, start, err)
		if err != nil {
			return VerificationFailed{Attempt: e.Attempt, Err: err}
		}
		return CodeVerified{Attempt: e.Attempt, Identity: identity}

	case ResolveHandOff:
		dest, err := f.guard.Resolve(callCtx, e.UserID)
		f.observe(eff, start, err)
		if err != nil {
			return HandOffFailed{Attempt: e.Attempt, Err: err}
		}
		return HandOffResolved{Attempt: e.Attempt, Destination: dest}
	}

	f.opts.Logger.Warn("unknown signup effect", zap.String("flow_id", f.id), zap.String("effect", eff.effectName()))
	return nil
}

func (f *Flow) observe(eff Effect, start time.Time, err error) {
	name := eff.effectName()
	f.opts.Observer.BackendCall(name, f.opts.Clock.Now().Sub(start), err)
	if err != nil {
		f.opts.Logger.Warn("signup backend call failed", zap.String("flow_id", f.id), zap.String("op", name), zap.Error(err))
	}
}
