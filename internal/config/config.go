package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Jobsy"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	OTPResendWindowSeconds int `env:"OTP_RESEND_WINDOW_SECONDS" envDefault:"60"`
	OTPResendMax           int `env:"OTP_RESEND_MAX" envDefault:"1"`

	// BackendURL vacio significa que el flujo usa el backend en proceso.
	BackendURL    string `env:"BACKEND_URL"`
	BackendAPIKey string `env:"BACKEND_API_KEY"`
	APIKey        string `env:"API_KEY"`

	SignupFlowTTLMinutes      int    `env:"SIGNUP_FLOW_TTL_MINUTES" envDefault:"30"`
	BrowserSessionTTLMinutes  int    `env:"BROWSER_SESSION_TTL_MINUTES" envDefault:"60"`
	BackendCallTimeoutSeconds int    `env:"BACKEND_CALL_TIMEOUT_SECONDS" envDefault:"30"`
	SecureCookies             bool   `env:"SECURE_COOKIES" envDefault:"false"`
	DefaultLanguage           string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	MetricsEnabled            bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ClientConfig es el subconjunto que necesita el cliente de terminal.
type ClientConfig struct {
	BackendURL    string `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	BackendAPIKey string `env:"BACKEND_API_KEY"`
	Language      string `env:"JOBSY_LANGUAGE" envDefault:"en"`
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
