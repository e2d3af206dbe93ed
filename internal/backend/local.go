package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jobsy/internal/domain"
	"jobsy/internal/service"
)

type accountService interface {
	CreateAccount(ctx context.Context, input service.CreateAccountInput) (domain.User, error)
	RequestOTP(ctx context.Context, email string) (time.Time, error)
	VerifyOTP(ctx context.Context, email, code string) (domain.User, error)
	Authenticate(ctx context.Context, email, password string) (domain.User, error)
}

type profileService interface {
	Find(ctx context.Context, userID string) (domain.Profile, error)
	Create(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	Update(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.Profile, error)
}

type tokenService interface {
	GeneratePair(user domain.User) (service.TokenPair, error)
	RefreshPair(refreshToken string) (service.TokenPair, error)
	RevokeRefresh(refreshToken string) error
	ParseAccessToken(accessToken string) (service.Claims, error)
}

type sessionEvents interface {
	Subscribe(userID string, fn func()) (unsubscribe func())
}

// LocalDeps son los servicios del propio proceso que respaldan a Local.
type LocalDeps struct {
	Logger   *zap.Logger
	Accounts accountService
	Profiles profileService
	Tokens   tokenService
	Sessions sessionEvents
}

// Local implementa Client llamando a los servicios en el mismo proceso.
// Guarda el par de tokens de una sola sesion de navegador.
type Local struct {
	logger   *zap.Logger
	accounts accountService
	profiles profileService
	tokens   tokenService
	sessions sessionEvents

	mu          sync.Mutex
	pair        service.TokenPair
	userID      string
	unsubscribe func()
	listeners   listeners
}

func NewLocal(deps LocalDeps) *Local {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{
		logger:   logger,
		accounts: deps.Accounts,
		profiles: deps.Profiles,
		tokens:   deps.Tokens,
		sessions: deps.Sessions,
	}
}

func (l *Local) CreateAccount(ctx context.Context, email, password string, meta Metadata) (domain.AccountIdentity, error) {
	user, err := l.accounts.CreateAccount(ctx, service.CreateAccountInput{
		Email:    email,
		Password: password,
		UserType: meta.Role,
	})
	if err != nil {
		return domain.AccountIdentity{}, FromServiceError(err)
	}
	return user.Identity(), nil
}

func (l *Local) SendOneTimeCode(ctx context.Context, email string) error {
	_, err := l.accounts.RequestOTP(ctx, email)
	return FromServiceError(err)
}

func (l *Local) VerifyOneTimeCode(ctx context.Context, email, code string) (domain.AccountIdentity, error) {
	user, err := l.accounts.VerifyOTP(ctx, email, code)
	if err != nil {
		return domain.AccountIdentity{}, FromServiceError(err)
	}
	if err := l.startSession(user); err != nil {
		return domain.AccountIdentity{}, err
	}
	return user.Identity(), nil
}

func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (domain.AccountIdentity, error) {
	user, err := l.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return domain.AccountIdentity{}, FromServiceError(err)
	}
	if err := l.startSession(user); err != nil {
		return domain.AccountIdentity{}, err
	}
	return user.Identity(), nil
}

func (l *Local) SignOut(_ context.Context) error {
	l.mu.Lock()
	pair := l.pair
	userID := l.userID
	l.clearLocked()
	l.mu.Unlock()

	if userID == "" {
		return nil
	}
	if err := l.tokens.RevokeRefresh(pair.RefreshToken); err != nil {
		l.logger.Warn("revoke refresh failed", zap.Error(err), zap.String("user_id", userID))
	}
	l.listeners.notify()
	return nil
}

func (l *Local) CurrentUser(_ context.Context) (domain.AccountIdentity, bool, error) {
	l.mu.Lock()
	pair := l.pair
	l.mu.Unlock()
	if pair.AccessToken == "" {
		return domain.AccountIdentity{}, false, nil
	}

	claims, err := l.tokens.ParseAccessToken(pair.AccessToken)
	if err == nil {
		return claims.Identity(), true, nil
	}
	if !errors.Is(err, service.ErrJWTExpired) {
		l.endSession()
		return domain.AccountIdentity{}, false, nil
	}

	refreshed, err := l.tokens.RefreshPair(pair.RefreshToken)
	if err != nil {
		l.endSession()
		return domain.AccountIdentity{}, false, nil
	}
	claims, err = l.tokens.ParseAccessToken(refreshed.AccessToken)
	if err != nil {
		l.endSession()
		return domain.AccountIdentity{}, false, nil
	}
	l.mu.Lock()
	l.pair = refreshed
	l.mu.Unlock()
	return claims.Identity(), true, nil
}

func (l *Local) OnSessionEnded(fn func()) func() {
	return l.listeners.add(fn)
}

func (l *Local) FindProfile(ctx context.Context, userID string) (domain.Profile, error) {
	profile, err := l.profiles.Find(ctx, userID)
	if err != nil {
		return domain.Profile{}, FromServiceError(err)
	}
	return profile, nil
}

func (l *Local) CreateProfile(ctx context.Context, profile domain.Profile) error {
	if err := l.requireOwner(profile.ID); err != nil {
		return err
	}
	_, err := l.profiles.Create(ctx, profile)
	return FromServiceError(err)
}

func (l *Local) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	if err := l.requireOwner(userID); err != nil {
		return err
	}
	_, err := l.profiles.Update(ctx, userID, patch)
	return FromServiceError(err)
}

func (l *Local) requireOwner(userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.userID == "" {
		return ErrSessionMissing
	}
	if strings.TrimSpace(userID) != l.userID {
		return ErrForbidden
	}
	return nil
}

func (l *Local) startSession(user domain.User) error {
	pair, err := l.tokens.GeneratePair(user)
	if err != nil {
		l.logger.Error("jwt issue failed", zap.Error(err), zap.String("user_id", user.ID))
		return ErrUnexpected
	}

	l.mu.Lock()
	l.clearLocked()
	l.pair = pair
	l.userID = user.ID
	if l.sessions != nil {
		l.unsubscribe = l.sessions.Subscribe(user.ID, l.endSession)
	}
	l.mu.Unlock()
	return nil
}

// endSession se usa cuando otra pestaña cierra la sesion o el token deja de ser valido.
func (l *Local) endSession() {
	l.mu.Lock()
	had := l.userID != ""
	l.clearLocked()
	l.mu.Unlock()
	if had {
		l.listeners.notify()
	}
}

// Release suelta la sesion en memoria sin revocar el token ni avisar a los suscriptores.
func (l *Local) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLocked()
}

func (l *Local) clearLocked() {
	if l.unsubscribe != nil {
		unsubscribe := l.unsubscribe
		l.unsubscribe = nil
		// unsubscribe no debe volver a llamar a Local.
		unsubscribe()
	}
	l.pair = service.TokenPair{}
	l.userID = ""
}
