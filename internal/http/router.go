package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobsy/internal/i18n"
	"jobsy/internal/metrics"
	"jobsy/internal/service"
	"jobsy/internal/signup"
)

// RouterDeps agrupa lo que necesita NewRouter.
type RouterDeps struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Catalog  *i18n.Catalog
	JWT      *service.JWTService
	APIKey   string
	Auth     *AuthHandler
	Profiles *ProfileHandler
	App      *AppHandler
	Sessions *SessionStore
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y metricas.
	r.Use(zapLoggerMiddleware(deps.Logger), gin.Recovery())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.GET("/healthz", healthHandler)
	r.NoRoute(notFoundHandler)

	// Backend de identidad y perfiles.
	api := r.Group("/api", jsonContentTypeMiddleware(), apiKeyMiddleware(deps.APIKey))
	auth := api.Group("/auth")
	auth.POST("/signup", deps.Auth.Signup)
	auth.POST("/otp", deps.Auth.RequestOTP)
	auth.POST("/verify", deps.Auth.VerifyOTP)
	auth.POST("/token", deps.Auth.Token)
	auth.POST("/refresh", deps.Auth.Refresh)
	auth.POST("/logout", deps.Auth.Logout)
	auth.GET("/user", JWTAuthMiddleware(deps.JWT), deps.Auth.CurrentUser)

	profiles := api.Group("/profiles", JWTAuthMiddleware(deps.JWT))
	profiles.GET("/:id", deps.Profiles.Get)
	profiles.POST("", deps.Profiles.Create)
	profiles.PATCH("/:id", deps.Profiles.Update)

	// Paginas de la app: una sesion de navegador por cookie.
	app := r.Group("/app", jsonContentTypeMiddleware(), languageMiddleware(deps.Catalog), deps.Sessions.Middleware())
	app.POST("/signup", deps.App.StartSignup)
	app.GET("/signup/:id", deps.App.GetSignup)
	app.DELETE("/signup/:id", deps.App.EndSignup)

	steps := app.Group("/signup/:id")
	steps.POST("/credentials", deps.App.SignupEvent(credentialsEvent))
	steps.POST("/terms", deps.App.SignupEvent(termsEvent))
	steps.POST("/role", deps.App.SignupEvent(roleEvent))
	steps.POST("/next", deps.App.SignupEvent(fixedEvent(signup.Next{})))
	steps.POST("/back", deps.App.SignupEvent(fixedEvent(signup.Back{})))
	steps.POST("/register", deps.App.SignupEvent(fixedEvent(signup.SubmitRegistration{})))
	steps.POST("/send-code", deps.App.SignupEvent(fixedEvent(signup.RequestCode{})))
	steps.POST("/code", deps.App.SignupEvent(codeEvent))
	steps.POST("/verify", deps.App.SignupEvent(fixedEvent(signup.SubmitCode{})))
	steps.POST("/start-over", deps.App.SignupEvent(fixedEvent(signup.StartOver{})))

	app.POST("/login", deps.App.Login)
	app.POST("/logout", deps.App.Logout)
	app.GET("/session", deps.App.Session)
	app.GET("/profile", deps.App.GetProfile)
	app.POST("/profile", deps.App.CreateProfile)
	app.PUT("/profile", deps.App.UpdateProfile)
	app.PUT("/language", deps.App.SetLanguage)

	return r
}
