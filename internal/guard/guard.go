package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
)

// Destination es el destino simbolico de navegacion.
type Destination string

const (
	None            Destination = ""
	Login           Destination = "login"
	CompleteProfile Destination = "complete-profile"
	Dashboard       Destination = "dashboard"
)

// ErrLookupFailed envuelve cualquier fallo que impide decidir el destino.
var ErrLookupFailed = errors.New("session lookup failed")

// defaultWatchTimeout acota cada re-chequeo disparado por un fin de sesion.
const defaultWatchTimeout = 10 * time.Second

// Guard decide a donde ir segun la sesion y la existencia del perfil.
type Guard struct {
	logger       *zap.Logger
	profiles     backend.Profiles
	watchTimeout time.Duration
}

func New(logger *zap.Logger, profiles backend.Profiles) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger, profiles: profiles, watchTimeout: defaultWatchTimeout}
}

// Identify resuelve el usuario actual. Sin sesion devuelve Login.
func (g *Guard) Identify(ctx context.Context, identity backend.Identity) (domain.AccountIdentity, Destination, error) {
	user, ok, err := identity.CurrentUser(ctx)
	if err != nil {
		g.logger.Warn("current user lookup failed", zap.Error(err))
		return domain.AccountIdentity{}, None, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	if !ok {
		return domain.AccountIdentity{}, Login, nil
	}
	return user, None, nil
}

// CheckUser es Check devolviendo tambien el usuario de la sesion, si lo hay.
func (g *Guard) CheckUser(ctx context.Context, identity backend.Identity) (domain.AccountIdentity, Destination, error) {
	user, dest, err := g.Identify(ctx, identity)
	if err != nil || dest == Login {
		return user, dest, err
	}
	dest, err = g.Resolve(ctx, user.UserID)
	return user, dest, err
}

// Check consulta la sesion actual: sin usuario va a login, si no decide por perfil.
func (g *Guard) Check(ctx context.Context, identity backend.Identity) (Destination, error) {
	_, dest, err := g.CheckUser(ctx, identity)
	return dest, err
}

// Resolve aplica la decision de tres vias para un usuario ya autenticado.
// Cualquier error distinto de "no encontrado" no navega.
func (g *Guard) Resolve(ctx context.Context, userID string) (Destination, error) {
	_, err := g.profiles.FindProfile(ctx, userID)
	switch {
	case err == nil:
		return Dashboard, nil
	case errors.Is(err, backend.ErrNotFound):
		return CompleteProfile, nil
	default:
		g.logger.Warn("profile lookup failed", zap.Error(err), zap.String("user_id", userID))
		return None, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
}

// Watch vuelve a ejecutar Check cada vez que termina la sesion y entrega el nuevo destino.
func (g *Guard) Watch(identity backend.Identity, onChange func(Destination, error)) (unsubscribe func()) {
	return identity.OnSessionEnded(func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.watchTimeout)
		defer cancel()
		dest, err := g.Check(ctx, identity)
		onChange(dest, err)
	})
}
