package signup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
	"jobsy/internal/guard"
	"jobsy/internal/i18n"
)

// State es el paso en el que se encuentra el registro.
type State int

const (
	CollectingCredentials State = iota + 1
	AcceptingTerms
	SelectingRole
	AwaitingAccountCreation
	AwaitingOtpEntry
	Verified
)

func (s State) String() string {
	switch s {
	case CollectingCredentials:
		return "collecting_credentials"
	case AcceptingTerms:
		return "accepting_terms"
	case SelectingRole:
		return "selecting_role"
	case AwaitingAccountCreation:
		return "awaiting_account_creation"
	case AwaitingOtpEntry:
		return "awaiting_otp_entry"
	case Verified:
		return "verified"
	default:
		return "unknown"
	}
}

// Step devuelve el numero de paso visible (1 a 4).
func (s State) Step() int {
	switch s {
	case CollectingCredentials:
		return 1
	case AcceptingTerms:
		return 2
	case SelectingRole:
		return 3
	default:
		return 4
	}
}

const (
	DefaultCooldownSeconds = 60
	CodeLength             = 6
)

// Operation es la llamada al backend que esta en curso.
type Operation int

const (
	OpNone Operation = iota
	OpCreateAccount
	OpSendCode
	OpVerifyCode
	OpResolveHandOff
)

func (o Operation) String() string {
	switch o {
	case OpCreateAccount:
		return "create_account"
	case OpSendCode:
		return "send_code"
	case OpVerifyCode:
		return "verify_code"
	case OpResolveHandOff:
		return "resolve_hand_off"
	default:
		return "none"
	}
}

// Draft es lo que el usuario fue cargando; nunca se persiste.
type Draft struct {
	Email         string
	Password      string
	AgreedToTerms bool
	Role          domain.Role
}

// String oculta la contraseña para que el draft pueda ir a un log.
func (d Draft) String() string {
	return fmt.Sprintf("{email:%s password:%s terms:%t role:%s}", d.Email, redact(d.Password), d.AgreedToTerms, d.Role)
}

func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Email         string      `json:"email"`
		Password      string      `json:"password,omitempty"`
		AgreedToTerms bool        `json:"agreed_to_terms"`
		Role          domain.Role `json:"role,omitempty"`
	}{d.Email, redact(d.Password), d.AgreedToTerms, d.Role})
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}

// Challenge es el codigo enviado vigente.
type Challenge struct {
	TargetEmail string
	SentAt      time.Time
}

func (c Challenge) Active() bool {
	return !c.SentAt.IsZero()
}

// Message es el unico mensaje visible del registro.
type Message = i18n.Message

const (
	KindError   = i18n.KindError
	KindSuccess = i18n.KindSuccess
	KindInfo    = i18n.KindInfo
)

const (
	MsgMissingCredentials = "Please enter both email and password."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgPasswordTooShort   = "Password must be at least 6 characters long."
	MsgMustAgreeTerms     = "You must agree to the terms and conditions."
	MsgChooseRole         = "Please choose whether you want to hire or find a job."
	MsgAccountCreated     = "Account created. Send a verification code to your email to continue."
	MsgCodeSent           = "Verification code sent to {{email}}. (check your spam box, if you did not see the email.)"
	MsgTooManyRequests    = "Too many requests. You can request a new code in {{seconds}} seconds."
	MsgEnterCode          = "Please enter the 6-digit code from your email."
	MsgEmailVerified      = "Email verified successfully!"
	MsgProfileCheckFailed = "An error occurred while checking your profile."
	MsgUnexpected         = "An unexpected error occurred. Please try again."
)

// Machine es el estado completo del registro. Es un valor: Transition devuelve una copia nueva.
type Machine struct {
	State       State
	Draft       Draft
	Created     bool
	Account     domain.AccountIdentity
	Challenge   Challenge
	Code        string
	Cooldown    int
	Pending     Operation
	VerifiedAs  domain.AccountIdentity
	Destination guard.Destination
	Message     Message

	attempt uint64
}

func NewMachine() Machine {
	return Machine{State: CollectingCredentials}
}

// CanResend indica si el boton de reenviar esta habilitado.
func (m Machine) CanResend() bool {
	return m.State == AwaitingOtpEntry && m.Pending == OpNone && m.Cooldown == 0
}

// CanVerify indica si el boton de verificar esta habilitado.
func (m Machine) CanVerify() bool {
	return m.State == AwaitingOtpEntry && m.Pending == OpNone && m.Challenge.Active() && len(m.Code) == CodeLength
}

func (m Machine) verifiedUserID() string {
	return m.VerifiedAs.UserID
}

var (
	ErrIllegalEvent   = errors.New("event not allowed in current state")
	ErrBusy           = errors.New("operation already in progress")
	ErrAlreadyCreated = errors.New("account already created for this draft")
	ErrCodeNotSent    = errors.New("verification code not sent")
	ErrCooldownActive = errors.New("resend cooldown active")
)

func errorMessage(key string) Message {
	return i18n.Error(key)
}

// backendMessage convierte un fallo del backend en el mensaje visible.
func backendMessage(err error) Message {
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return errorMessage(be.Message)
	}
	if err != nil && err.Error() != "" {
		return errorMessage(err.Error())
	}
	return errorMessage(MsgUnexpected)
}

// retryAfter devuelve la espera sugerida por el backend, si el fallo es de rate limit.
func retryAfter(err error) (int, bool) {
	var rl *backend.RateLimitError
	if !errors.As(err, &rl) {
		return 0, false
	}
	if rl.RetryAfterSeconds > 0 {
		return rl.RetryAfterSeconds, true
	}
	if secs, ok := backend.ParseRetryAfter(rl.Message); ok {
		return secs, true
	}
	return DefaultCooldownSeconds, true
}

func digitsOnly(code string) string {
	var b strings.Builder
	for _, r := range code {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
		if b.Len() == CodeLength {
			break
		}
	}
	return b.String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
