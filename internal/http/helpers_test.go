package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
	"jobsy/internal/i18n"
	"jobsy/internal/repository"
	"jobsy/internal/service"
	"jobsy/internal/session"
	"jobsy/internal/signup"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UpdateOTP(_ context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.OtpCodeHash = otpHash
	user.OtpExpiresAt = &otpExpiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) ConfirmEmail(_ context.Context, id string, confirmedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailConfirmedAt = &confirmedAt
	user.OtpCodeHash = ""
	user.OtpExpiresAt = nil
	m.usersByID[id] = user
	return nil
}

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.ID]; ok {
		return repository.ErrDuplicate
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) Update(_ context.Context, profile domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.profiles[profile.ID] = profile
	return nil
}

type mockEmailSender struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	err      error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	return m.err
}

func (m *mockEmailSender) code() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCode
}

// apiEnv es el backend completo en memoria detras del router.
type apiEnv struct {
	router   *gin.Engine
	users    *mockUserRepo
	profiles *mockProfileRepo
	sender   *mockEmailSender
	jwt      *service.JWTService
	broker   *session.MemoryBroker
	userSvc  *service.UserService
	profSvc  *service.ProfileService
	catalog  *i18n.Catalog
	flows    *signup.Registry
	sessions *SessionStore
}

type envOptions struct {
	apiKey  string
	limiter service.OTPRateLimiter
	factory func(env *apiEnv) ClientFactory
}

func newAPIEnv(t *testing.T, opts envOptions) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if opts.limiter == nil {
		opts.limiter = service.NewOTPRateLimiter(time.Minute, 5)
	}

	env := &apiEnv{
		users:    newMockUserRepo(),
		profiles: newMockProfileRepo(),
		sender:   &mockEmailSender{},
		broker:   session.NewMemoryBroker(),
		catalog:  catalog,
	}
	env.jwt = service.NewJWTServiceWithStore("secret", 15*time.Minute, time.Hour, service.NewMemoryRefreshTokenStore(), env.broker)
	env.userSvc = service.NewUserService(zap.NewNop(), env.users, env.sender, opts.limiter)
	env.profSvc = service.NewProfileService(zap.NewNop(), env.profiles)
	env.flows = signup.NewRegistry(time.Hour, signup.Options{Logger: zap.NewNop()})
	t.Cleanup(env.flows.CloseAll)

	factory := env.localFactory()
	if opts.factory != nil {
		factory = opts.factory(env)
	}
	env.sessions = NewSessionStore(zap.NewNop(), factory, time.Hour, false)

	env.router = NewRouter(RouterDeps{
		Logger:   zap.NewNop(),
		Catalog:  catalog,
		JWT:      env.jwt,
		APIKey:   opts.apiKey,
		Auth:     NewAuthHandler(zap.NewNop(), env.userSvc, env.jwt),
		Profiles: NewProfileHandler(zap.NewNop(), env.profSvc),
		App:      NewAppHandler(zap.NewNop(), catalog, env.flows),
		Sessions: env.sessions,
	})
	return env
}

func (env *apiEnv) localFactory() ClientFactory {
	return func() backend.Client {
		return backend.NewLocal(backend.LocalDeps{
			Logger:   zap.NewNop(),
			Accounts: env.userSvc,
			Profiles: env.profSvc,
			Tokens:   env.jwt,
			Sessions: env.broker,
		})
	}
}

// confirmedUser crea una cuenta confirmada directamente en el repo.
func (env *apiEnv) confirmedUser(t *testing.T, email, password string, role domain.Role) domain.User {
	t.Helper()
	user, err := env.userSvc.CreateAccount(context.Background(), service.CreateAccountInput{Email: email, Password: password, UserType: role})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := env.users.ConfirmEmail(context.Background(), user.ID, time.Now().UTC()); err != nil {
		t.Fatalf("confirm email: %v", err)
	}
	user, _ = env.users.GetByID(context.Background(), user.ID)
	return user
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func withBearer(token string) requestOption {
	return withHeader("Authorization", "Bearer "+token)
}

func withCookies(cookies []*http.Cookie) requestOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func performRequest(r http.Handler, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}
