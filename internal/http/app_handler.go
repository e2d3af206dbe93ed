package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
	"jobsy/internal/guard"
	"jobsy/internal/i18n"
	"jobsy/internal/profileform"
	"jobsy/internal/signup"
)

const msgSignInFailed = "Sign in failed. Please check your credentials."

// AppHandler atiende las paginas de la app (/app) sobre el cliente de backend de cada sesion.
type AppHandler struct {
	logger  *zap.Logger
	catalog *i18n.Catalog
	flows   *signup.Registry
}

func NewAppHandler(logger *zap.Logger, catalog *i18n.Catalog, flows *signup.Registry) *AppHandler {
	return &AppHandler{logger: logger, catalog: catalog, flows: flows}
}

func (h *AppHandler) presenter(c *gin.Context) presenter {
	return presenter{catalog: h.catalog, lang: requestLanguage(c, h.catalog)}
}

func (h *AppHandler) session(c *gin.Context) (*BrowserSession, bool) {
	sess, ok := currentSession(c)
	if !ok {
		h.logger.Error("browser session middleware not installed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return nil, false
	}
	return sess, true
}

// StartSignup maneja POST /app/signup: monta un registro nuevo.
func (h *AppHandler) StartSignup(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	flow := h.flows.Start(sess.Client)
	c.JSON(http.StatusCreated, h.presenter(c).signup(flow.ID(), flow.Snapshot()))
}

// GetSignup maneja GET /app/signup/:id.
func (h *AppHandler) GetSignup(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.presenter(c).signup(flow.ID(), flow.Snapshot()))
}

// EndSignup maneja DELETE /app/signup/:id: desmonta el registro.
func (h *AppHandler) EndSignup(c *gin.Context) {
	flow, ok := h.flow(c)
	if !ok {
		return
	}
	h.flows.Remove(flow.ID())
	c.Status(http.StatusNoContent)
}

// SignupEvent traduce cada accion de /app/signup/:id/<accion> en un evento del registro.
func (h *AppHandler) SignupEvent(build func(*gin.Context) (signup.Event, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		flow, ok := h.flow(c)
		if !ok {
			return
		}
		ev, err := build(c)
		if err != nil {
			badRequest(c, h.logger, "signup event", err)
			return
		}

		m, err := flow.Dispatch(c.Request.Context(), ev)
		if errors.Is(err, signup.ErrClosed) {
			c.JSON(http.StatusGone, gin.H{"error": "signup flow closed", "code": "flow_closed"})
			return
		}

		view := h.presenter(c).signup(flow.ID(), m)
		var ve *signup.ValidationError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, view)
		case errors.As(err, &ve):
			c.JSON(http.StatusUnprocessableEntity, view)
		default:
			h.logger.Debug("signup event rejected",
				zap.String("flow_id", flow.ID()),
				zap.String("event", signup.EventName(ev)),
				zap.Error(err),
			)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "event_rejected", "flow": view})
		}
	}
}

func (h *AppHandler) flow(c *gin.Context) (*signup.Flow, bool) {
	sess, ok := h.session(c)
	if !ok {
		return nil, false
	}
	flow, ok := h.flows.Get(c.Param("id"))
	if !ok || flow.Client() != sess.Client {
		c.JSON(http.StatusNotFound, gin.H{"error": "signup flow not found", "code": "flow_not_found"})
		return nil, false
	}
	return flow, true
}

func credentialsEvent(c *gin.Context) (signup.Event, error) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return signup.EditCredentials{Email: req.Email, Password: req.Password}, nil
}

func termsEvent(c *gin.Context) (signup.Event, error) {
	var req struct {
		Agreed bool `json:"agreed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return signup.SetTerms{Agreed: req.Agreed}, nil
}

func roleEvent(c *gin.Context) (signup.Event, error) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		role = domain.Role(req.Role)
	}
	return signup.ChooseRole{Role: role}, nil
}

func codeEvent(c *gin.Context) (signup.Event, error) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return signup.EnterCode{Code: req.Code}, nil
}

func fixedEvent(ev signup.Event) func(*gin.Context) (signup.Event, error) {
	return func(*gin.Context) (signup.Event, error) {
		return ev, nil
	}
}

// Login maneja POST /app/login y aplica la misma decision de destino que el registro.
func (h *AppHandler) Login(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	p := h.presenter(c)

	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, sessionView{Message: p.message(i18n.Error(signup.MsgMissingCredentials))})
		return
	}

	identity, err := sess.Client.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(backend.HTTPStatus(err), sessionView{Message: p.message(failureMessage(err, msgSignInFailed))})
		return
	}

	view := sessionView{User: &identity}
	dest, err := guard.New(h.logger, sess.Client).Resolve(c.Request.Context(), identity.UserID)
	if err != nil {
		view.Message = p.message(i18n.Error(signup.MsgProfileCheckFailed))
		c.JSON(http.StatusOK, view)
		return
	}
	view.Destination = dest
	c.JSON(http.StatusOK, view)
}

// Logout maneja POST /app/logout; las demas pestañas de la cuenta tambien quedan fuera.
func (h *AppHandler) Logout(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Client.SignOut(c.Request.Context()); err != nil {
		h.logger.Warn("sign out failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, sessionView{Destination: guard.Login})
}

// Session maneja GET /app/session: a donde deberia ir esta sesion.
func (h *AppHandler) Session(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	user, dest, err := guard.New(h.logger, sess.Client).CheckUser(c.Request.Context(), sess.Client)
	view := sessionView{Destination: dest}
	if user.UserID != "" {
		view.User = &user
	}
	if err != nil {
		view.Message = h.presenter(c).message(i18n.Error(signup.MsgProfileCheckFailed))
	}
	c.JSON(http.StatusOK, view)
}

// GetProfile maneja GET /app/profile?mode=create|edit.
func (h *AppHandler) GetProfile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	mode, ok := profileform.ParseMode(c.DefaultQuery("mode", string(profileform.ModeEdit)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode", "code": "bad_request"})
		return
	}
	res := profileform.New(h.logger, mode, sess.Client, nil).Load(c.Request.Context())
	c.JSON(http.StatusOK, h.presenter(c).profile(res))
}

// CreateProfile maneja POST /app/profile.
func (h *AppHandler) CreateProfile(c *gin.Context) {
	h.submitProfile(c, profileform.ModeCreate)
}

// UpdateProfile maneja PUT /app/profile.
func (h *AppHandler) UpdateProfile(c *gin.Context) {
	h.submitProfile(c, profileform.ModeEdit)
}

func (h *AppHandler) submitProfile(c *gin.Context, mode profileform.Mode) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var values profileform.Values
	if err := c.ShouldBindJSON(&values); err != nil {
		badRequest(c, h.logger, "profile", err)
		return
	}

	res := profileform.New(h.logger, mode, sess.Client, nil).Submit(c.Request.Context(), values)
	status := http.StatusOK
	switch {
	case res.Saved && mode == profileform.ModeCreate:
		status = http.StatusCreated
	case !res.Saved && res.Message.Kind == i18n.KindError:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, h.presenter(c).profile(res))
}

// SetLanguage maneja PUT /app/language y guarda la preferencia en la cookie lang.
func (h *AppHandler) SetLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "language", err)
		return
	}
	tag, ok := h.catalog.Lookup(req.Language)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language", "code": "unsupported_language"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(languageCookie, tag.String(), 365*24*60*60, "/", "", false, false)
	c.JSON(http.StatusOK, gin.H{"language": tag.String(), "dir": h.catalog.Direction(tag)})
}

// failureMessage usa el texto del backend si lo hay; si no, fallback.
func failureMessage(err error, fallback string) i18n.Message {
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return i18n.Error(be.Message)
	}
	var rl *backend.RateLimitError
	if errors.As(err, &rl) {
		return i18n.Error(rl.Error())
	}
	return i18n.Error(fallback)
}
