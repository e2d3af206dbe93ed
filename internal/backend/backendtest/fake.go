// Package backendtest ofrece un backend en memoria para tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
)

const ValidCode = "123456"

// Fake implementa backend.Client en memoria y cuenta las llamadas por operacion.
type Fake struct {
	mu sync.Mutex

	// BeforeCall, si no es nil, se ejecuta al inicio de cada operacion (fuera del lock).
	BeforeCall func(op string)

	CreateErr        error
	SendErr          error
	VerifyErr        error
	SignInErr        error
	CurrentErr       error
	FindErr          error
	CreateProfileErr error
	UpdateProfileErr error

	calls     map[string]int
	accounts  map[string]domain.AccountIdentity
	passwords map[string]string
	profiles  map[string]domain.Profile
	current   *domain.AccountIdentity
	nextID    int
	listeners map[int]func()
	nextSub   int
}

func New() *Fake {
	return &Fake{
		calls:     make(map[string]int),
		accounts:  make(map[string]domain.AccountIdentity),
		passwords: make(map[string]string),
		profiles:  make(map[string]domain.Profile),
		listeners: make(map[int]func()),
	}
}

func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) begin(op string) {
	if hook := f.BeforeCall; hook != nil {
		hook(op)
	}
	f.mu.Lock()
	f.calls[op]++
}

// AddAccount registra una cuenta confirmada.
func (f *Fake) AddAccount(email, password string, role domain.Role) domain.AccountIdentity {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	identity := domain.AccountIdentity{UserID: fmt.Sprintf("user-%d", f.nextID), Email: email, EmailConfirmed: true, Role: role}
	f.accounts[email] = identity
	f.passwords[email] = password
	return identity
}

func (f *Fake) PutProfile(profile domain.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.ID] = profile
}

func (f *Fake) Profile(userID string) (domain.Profile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	return p, ok
}

// SignInAs fija la sesion actual sin pasar por SignInWithPassword.
func (f *Fake) SignInAs(identity domain.AccountIdentity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = &identity
}

// EndSession simula un cierre de sesion hecho en otra pestaña.
func (f *Fake) EndSession() {
	f.mu.Lock()
	f.current = nil
	fns := make([]func(), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (f *Fake) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *Fake) CreateAccount(_ context.Context, email, password string, meta backend.Metadata) (domain.AccountIdentity, error) {
	f.begin("create")
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return domain.AccountIdentity{}, f.CreateErr
	}
	if _, ok := f.accounts[email]; ok {
		return domain.AccountIdentity{}, backend.ErrAlreadyRegistered
	}
	f.nextID++
	identity := domain.AccountIdentity{UserID: fmt.Sprintf("user-%d", f.nextID), Email: email, Role: meta.Role}
	f.accounts[email] = identity
	f.passwords[email] = password
	return identity, nil
}

func (f *Fake) SendOneTimeCode(_ context.Context, _ string) error {
	f.begin("send")
	defer f.mu.Unlock()
	return f.SendErr
}

func (f *Fake) VerifyOneTimeCode(_ context.Context, email, code string) (domain.AccountIdentity, error) {
	f.begin("verify")
	defer f.mu.Unlock()
	if f.VerifyErr != nil {
		return domain.AccountIdentity{}, f.VerifyErr
	}
	identity, ok := f.accounts[email]
	if !ok || code != ValidCode {
		return domain.AccountIdentity{}, backend.ErrTokenInvalid
	}
	identity.EmailConfirmed = true
	f.accounts[email] = identity
	f.current = &identity
	return identity, nil
}

func (f *Fake) SignInWithPassword(_ context.Context, email, password string) (domain.AccountIdentity, error) {
	f.begin("signin")
	defer f.mu.Unlock()
	if f.SignInErr != nil {
		return domain.AccountIdentity{}, f.SignInErr
	}
	identity, ok := f.accounts[email]
	if !ok || f.passwords[email] != password {
		return domain.AccountIdentity{}, backend.ErrInvalidCredentials
	}
	if !identity.EmailConfirmed {
		return domain.AccountIdentity{}, backend.ErrEmailNotConfirmed
	}
	f.current = &identity
	return identity, nil
}

func (f *Fake) SignOut(_ context.Context) error {
	f.begin("signout")
	f.mu.Unlock()
	f.EndSession()
	return nil
}

func (f *Fake) CurrentUser(_ context.Context) (domain.AccountIdentity, bool, error) {
	f.begin("current")
	defer f.mu.Unlock()
	if f.CurrentErr != nil {
		return domain.AccountIdentity{}, false, f.CurrentErr
	}
	if f.current == nil {
		return domain.AccountIdentity{}, false, nil
	}
	return *f.current, true, nil
}

func (f *Fake) OnSessionEnded(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSub++
	id := f.nextSub
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *Fake) FindProfile(_ context.Context, userID string) (domain.Profile, error) {
	f.begin("find")
	defer f.mu.Unlock()
	if f.FindErr != nil {
		return domain.Profile{}, f.FindErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, backend.ErrNotFound
	}
	return p, nil
}

func (f *Fake) CreateProfile(_ context.Context, profile domain.Profile) error {
	f.begin("create_profile")
	defer f.mu.Unlock()
	if f.CreateProfileErr != nil {
		return f.CreateProfileErr
	}
	if _, ok := f.profiles[profile.ID]; ok {
		return backend.ErrProfileExists
	}
	f.profiles[profile.ID] = profile
	return nil
}

func (f *Fake) UpdateProfile(_ context.Context, userID string, patch domain.ProfilePatch) error {
	f.begin("update_profile")
	defer f.mu.Unlock()
	if f.UpdateProfileErr != nil {
		return f.UpdateProfileErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return backend.ErrNotFound
	}
	p.Apply(patch)
	f.profiles[userID] = p
	return nil
}

var _ backend.Client = (*Fake)(nil)
