package signup

import (
	"time"

	"jobsy/internal/domain"
	"jobsy/internal/guard"
)

// Event es una accion del usuario, del temporizador o el resultado de una llamada al backend.
type Event interface {
	eventName() string
}

type EditCredentials struct {
	Email    string
	Password string
}

type SetTerms struct {
	Agreed bool
}

// ChooseRole solo registra la eleccion; avanzar requiere Next.
type ChooseRole struct {
	Role domain.Role
}

type Next struct{}

type Back struct{}

// SubmitRegistration es "Complete Registration".
type SubmitRegistration struct{}

type RequestCode struct{}

type EnterCode struct {
	Code string
}

type SubmitCode struct{}

type StartOver struct{}

type Tick struct{}

// Resultados de efectos. Attempt identifica la llamada; resultados viejos se ignoran.

type AccountCreated struct {
	Attempt  uint64
	Identity domain.AccountIdentity
}

type AccountCreationFailed struct {
	Attempt uint64
	Err     error
}

type CodeSent struct {
	Attempt uint64
	At      time.Time
}

type CodeSendFailed struct {
	Attempt uint64
	Err     error
}

type CodeVerified struct {
	Attempt  uint64
	Identity domain.AccountIdentity
}

type VerificationFailed struct {
	Attempt uint64
	Err     error
}

type HandOffResolved struct {
	Attempt     uint64
	Destination guard.Destination
}

type HandOffFailed struct {
	Attempt uint64
	Err     error
}

func (EditCredentials) eventName() string       { return "edit_credentials" }
func (SetTerms) eventName() string              { return "set_terms" }
func (ChooseRole) eventName() string            { return "choose_role" }
func (Next) eventName() string                  { return "next" }
func (Back) eventName() string                  { return "back" }
func (SubmitRegistration) eventName() string    { return "submit_registration" }
func (RequestCode) eventName() string           { return "request_code" }
func (EnterCode) eventName() string             { return "enter_code" }
func (SubmitCode) eventName() string            { return "submit_code" }
func (StartOver) eventName() string             { return "start_over" }
func (Tick) eventName() string                  { return "tick" }
func (AccountCreated) eventName() string        { return "account_created" }
func (AccountCreationFailed) eventName() string { return "account_creation_failed" }
func (CodeSent) eventName() string              { return "code_sent" }
func (CodeSendFailed) eventName() string        { return "code_send_failed" }
func (CodeVerified) eventName() string          { return "code_verified" }
func (VerificationFailed) eventName() string    { return "verification_failed" }
func (HandOffResolved) eventName() string       { return "hand_off_resolved" }
func (HandOffFailed) eventName() string         { return "hand_off_failed" }

// EventName devuelve el nombre estable del evento, usado en logs y metricas.
func EventName(ev Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.eventName()
}

// Effect describe trabajo a ejecutar fuera de Transition.
type Effect interface {
	effectName() string
}

type CreateAccount struct {
	Attempt  uint64
	Email    string
	Password string
	Role     domain.Role
}

type SendCode struct {
	Attempt uint64
	Email   string
}

type VerifyCode struct {
	Attempt uint64
	Email   string
	Code    string
}

type ResolveHandOff struct {
	Attempt uint64
	UserID  string
}

// ArmCooldown programa el proximo Tick en un segundo.
type ArmCooldown struct{}

type CancelCooldown struct{}

func (CreateAccount) effectName() string  { return "create_account" }
func (SendCode) effectName() string       { return "send_code" }
func (VerifyCode) effectName() string     { return "verify_code" }
func (ResolveHandOff) effectName() string { return "resolve_hand_off" }
func (ArmCooldown) effectName() string    { return "arm_cooldown" }
func (CancelCooldown) effectName() string { return "cancel_cooldown" }
