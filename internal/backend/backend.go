package backend

import (
	"context"

	"jobsy/internal/domain"
)

// Metadata viaja con el alta de cuenta y queda guardada como user_type.
type Metadata struct {
	Role domain.Role `json:"user_type,omitempty"`
}

// Identity es el contrato del backend de identidad que consume la app.
type Identity interface {
	CreateAccount(ctx context.Context, email, password string, meta Metadata) (domain.AccountIdentity, error)
	SendOneTimeCode(ctx context.Context, email string) error
	VerifyOneTimeCode(ctx context.Context, email, code string) (domain.AccountIdentity, error)
	SignInWithPassword(ctx context.Context, email, password string) (domain.AccountIdentity, error)
	SignOut(ctx context.Context) error
	// CurrentUser devuelve ok=false cuando no hay sesion.
	CurrentUser(ctx context.Context) (domain.AccountIdentity, bool, error)
	// OnSessionEnded registra fn y devuelve la funcion para desuscribirse.
	OnSessionEnded(fn func()) (unsubscribe func())
}

// Profiles es el contrato del almacen de perfiles.
type Profiles interface {
	// FindProfile devuelve ErrNotFound cuando el usuario no tiene perfil.
	FindProfile(ctx context.Context, userID string) (domain.Profile, error)
	CreateProfile(ctx context.Context, profile domain.Profile) error
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error
}

// Client agrupa ambos contratos; una instancia por sesion de navegador.
type Client interface {
	Identity
	Profiles
}
