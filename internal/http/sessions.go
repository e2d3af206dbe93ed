package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobsy/internal/backend"
)

const (
	sessionCookie     = "jobsy_session"
	browserSessionKey = "browser_session"
)

// ClientFactory crea el cliente de backend de una sesion de navegador nueva.
type ClientFactory func() backend.Client

// BrowserSession es el equivalente a una pestaña: un cliente de backend con sus tokens.
type BrowserSession struct {
	ID     string
	Client backend.Client

	lastSeen time.Time
}

type releaser interface {
	Release()
}

// SessionStore guarda las sesiones de navegador en memoria y las expira por inactividad.
type SessionStore struct {
	logger  *zap.Logger
	factory ClientFactory
	ttl     time.Duration
	secure  bool
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*BrowserSession
}

func NewSessionStore(logger *zap.Logger, factory ClientFactory, ttl time.Duration, secureCookie bool) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		logger:   logger,
		factory:  factory,
		ttl:      ttl,
		secure:   secureCookie,
		now:      time.Now,
		sessions: make(map[string]*BrowserSession),
	}
}

// Middleware resuelve la sesion por cookie o crea una nueva, renueva la cookie y deja la sesion en el contexto.
func (s *SessionStore) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *BrowserSession
		if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
			sess, _ = s.Get(id)
		}
		if sess == nil {
			sess = s.create()
		}
		// La cookie se renueva en cada pedido, igual que el TTL del lado del servidor.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID, int(s.ttl.Seconds()), "/", "", s.secure, true)
		c.Set(browserSessionKey, sess)
		c.Next()
	}
}

func (s *SessionStore) Get(id string) (*BrowserSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

func (s *SessionStore) create() *BrowserSession {
	sess := &BrowserSession{ID: uuid.NewString(), Client: s.factory()}
	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep descarta las sesiones inactivas y devuelve cuantas se borraron.
func (s *SessionStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []*BrowserSession

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		if r, ok := sess.Client.(releaser); ok {
			r.Release()
		}
	}
	if len(expired) > 0 {
		s.logger.Debug("browser sessions expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run barre periodicamente hasta que ctx se cancela.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func currentSession(c *gin.Context) (*BrowserSession, bool) {
	val, ok := c.Get(browserSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := val.(*BrowserSession)
	return sess, ok
}
