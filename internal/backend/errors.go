package backend

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"jobsy/internal/service"
)

// Error es un fallo generico del backend tal como lo ve el cliente.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is compara por codigo para que errores decodificados de HTTP coincidan con los sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// RateLimitError indica cuantos segundos esperar antes de pedir otro codigo.
type RateLimitError struct {
	RetryAfterSeconds int
	Message           string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return RateLimitMessage(e.RetryAfterSeconds)
}

const (
	CodeNotFound       = "PGRST116"
	CodeRateLimited    = "over_email_send_rate_limit"
	CodeSessionMissing = "session_missing"
)

var (
	ErrNotFound = &Error{Code: CodeNotFound, Message: "JSON object requested, multiple (or no) rows returned", Status: http.StatusNotFound}

	ErrAlreadyRegistered  = &Error{Code: "user_already_exists", Message: "User already registered", Status: http.StatusUnprocessableEntity}
	ErrInvalidCredentials = &Error{Code: "invalid_credentials", Message: "Invalid login credentials", Status: http.StatusBadRequest}
	ErrEmailNotConfirmed  = &Error{Code: "email_not_confirmed", Message: "Email not confirmed", Status: http.StatusBadRequest}
	ErrTokenInvalid       = &Error{Code: "otp_expired", Message: "Token has expired or is invalid", Status: http.StatusForbidden}
	ErrInvalidEmail       = &Error{Code: "validation_failed", Message: "Unable to validate email address: invalid format", Status: http.StatusBadRequest}
	ErrWeakPassword       = &Error{Code: "weak_password", Message: "Password should be at least 6 characters.", Status: http.StatusUnprocessableEntity}
	ErrUserNotFound       = &Error{Code: "user_not_found", Message: "User not found", Status: http.StatusNotFound}
	ErrEmailSend          = &Error{Code: "email_send_failed", Message: "Error sending confirmation email", Status: http.StatusInternalServerError}
	ErrProfileExists      = &Error{Code: "23505", Message: "Profile already exists", Status: http.StatusConflict}
	ErrProfileInvalid     = &Error{Code: "invalid_profile", Message: "Invalid profile", Status: http.StatusBadRequest}
	ErrSessionMissing     = &Error{Code: CodeSessionMissing, Message: "Auth session missing!", Status: http.StatusUnauthorized}
	ErrForbidden          = &Error{Code: "42501", Message: "permission denied for table profiles", Status: http.StatusForbidden}
	ErrUnexpected         = &Error{Code: "unexpected_failure", Message: "Unexpected failure, please try again", Status: http.StatusInternalServerError}
)

// RateLimitMessage reproduce el texto que el backend manda al limitar envios de OTP.
func RateLimitMessage(seconds int) string {
	return fmt.Sprintf("For security purposes, you can only request this after %d seconds.", seconds)
}

var retryAfterPattern = regexp.MustCompile(`after (\d+) seconds?`)

// ParseRetryAfter extrae los segundos de espera de un mensaje de rate limit.
func ParseRetryAfter(message string) (int, bool) {
	m := retryAfterPattern.FindStringSubmatch(message)
	if len(m) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// FromServiceError traduce errores de service al contrato publico del backend.
// Devuelve nil si err es nil y el mismo error si ya es del contrato.
func FromServiceError(err error) error {
	if err == nil {
		return nil
	}
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl
	}
	var svcRL *service.RateLimitError
	if errors.As(err, &svcRL) {
		secs := svcRL.RetryAfterSeconds()
		return &RateLimitError{RetryAfterSeconds: secs, Message: RateLimitMessage(secs)}
	}

	switch {
	case errors.Is(err, service.ErrAlreadyRegistered):
		return ErrAlreadyRegistered
	case errors.Is(err, service.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, service.ErrEmailNotConfirmed):
		return ErrEmailNotConfirmed
	case errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrOTPNotRequested):
		return ErrTokenInvalid
	case errors.Is(err, service.ErrInvalidEmail):
		return ErrInvalidEmail
	case errors.Is(err, service.ErrWeakPassword):
		return ErrWeakPassword
	case errors.Is(err, service.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, service.ErrEmailSendFailure):
		return ErrEmailSend
	case errors.Is(err, service.ErrProfileNotFound):
		return ErrNotFound
	case errors.Is(err, service.ErrProfileExists):
		return ErrProfileExists
	case errors.Is(err, service.ErrProfileInvalid):
		return ErrProfileInvalid
	case errors.Is(err, service.ErrJWTInvalid), errors.Is(err, service.ErrJWTExpired):
		return ErrSessionMissing
	default:
		return ErrUnexpected
	}
}

// HTTPStatus devuelve el status HTTP asociado a un error del contrato.
func HTTPStatus(err error) int {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests
	}
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
