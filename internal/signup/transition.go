package signup

import (
	"strings"

	"jobsy/internal/domain"
	"jobsy/internal/guard"
)

// Transition aplica ev sobre m sin efectos secundarios. Devuelve la maquina nueva,
// los efectos a ejecutar y un error si el evento fue rechazado. Un evento rechazado
// por validacion deja el mensaje de error en la maquina devuelta.
func Transition(m Machine, ev Event) (Machine, []Effect, error) {
	switch e := ev.(type) {
	case Tick:
		return tick(m)
	case AccountCreated, AccountCreationFailed, CodeSent, CodeSendFailed,
		CodeVerified, VerificationFailed, HandOffResolved, HandOffFailed:
		return settle(m, e)
	}

	switch m.State {
	case CollectingCredentials:
		return collectingCredentials(m, ev)
	case AcceptingTerms:
		return acceptingTerms(m, ev)
	case SelectingRole:
		return selectingRole(m, ev)
	case AwaitingAccountCreation:
		return awaitingAccountCreation(m, ev)
	case AwaitingOtpEntry:
		return awaitingOtpEntry(m, ev)
	default:
		return m, nil, ErrIllegalEvent
	}
}

// moveTo cambia de paso y limpia el mensaje anterior.
func moveTo(m Machine, s State) Machine {
	m.State = s
	m.Message = Message{}
	return m
}

func collectingCredentials(m Machine, ev Event) (Machine, []Effect, error) {
	switch e := ev.(type) {
	case EditCredentials:
		m.Draft.Email = strings.TrimSpace(e.Email)
		m.Draft.Password = e.Password
		return m, nil, nil
	case Next:
		if err := ValidateCredentials(m.Draft.Email, m.Draft.Password); err != nil {
			m.Message = err.(*ValidationError).message()
			return m, nil, err
		}
		return moveTo(m, AcceptingTerms), nil, nil
	default:
		return m, nil, ErrIllegalEvent
	}
}

func acceptingTerms(m Machine, ev Event) (Machine, []Effect, error) {
	switch e := ev.(type) {
	case SetTerms:
		m.Draft.AgreedToTerms = e.Agreed
		return m, nil, nil
	case Next:
		if err := ValidateTerms(m.Draft.AgreedToTerms); err != nil {
			m.Message = err.(*ValidationError).message()
			return m, nil, err
		}
		return moveTo(m, SelectingRole), nil, nil
	case Back:
		return moveTo(m, CollectingCredentials), nil, nil
	default:
		return m, nil, ErrIllegalEvent
	}
}

func selectingRole(m Machine, ev Event) (Machine, []Effect, error) {
	switch e := ev.(type) {
	case ChooseRole:
		if err := ValidateRole(e.Role); err != nil {
			m.Message = err.(*ValidationError).message()
			return m, nil, err
		}
		m.Draft.Role = e.Role
		m.Message = Message{}
		return m, nil, nil
	case Next:
		if err := ValidateRole(m.Draft.Role); err != nil {
			m.Message = err.(*ValidationError).message()
			return m, nil, err
		}
		return moveTo(m, AwaitingAccountCreation), nil, nil
	case Back:
		return moveTo(m, AcceptingTerms), nil, nil
	default:
		return m, nil, ErrIllegalEvent
	}
}

func awaitingAccountCreation(m Machine, ev Event) (Machine, []Effect, error) {
	switch ev.(type) {
	case SubmitRegistration:
		if m.Pending != OpNone {
			return m, nil, ErrBusy
		}
		if m.Created {
			return m, nil, ErrAlreadyCreated
		}
		m.attempt++
		m.Pending = OpCreateAccount
		m.Message = Message{}
		return m, []Effect{CreateAccount{
			Attempt:  m.attempt,
			Email:    m.Draft.Email,
			Password: m.Draft.Password,
			Role:     m.Draft.Role,
		}}, nil
	case Back, StartOver:
		if m.Pending != OpNone {
			return m, nil, ErrBusy
		}
		return startOver(m)
	default:
		return m, nil, ErrIllegalEvent
	}
}

func awaitingOtpEntry(m Machine, ev Event) (Machine, []Effect, error) {
	switch e := ev.(type) {
	case SubmitRegistration:
		return m, nil, ErrAlreadyCreated
	case RequestCode:
		if m.Pending != OpNone {
			return m, nil, ErrBusy
		}
		if m.Cooldown > 0 {
			return m, nil, ErrCooldownActive
		}
		m.attempt++
		m.Pending = OpSendCode
		return m, []Effect{SendCode{Attempt: m.attempt, Email: m.Draft.Email}}, nil
	case EnterCode:
		m.Code = digitsOnly(e.Code)
		return m, nil, nil
	case SubmitCode:
		if m.Pending != OpNone {
			return m, nil, ErrBusy
		}
		if m.verifiedUserID() != "" {
			m.attempt++
			m.Pending = OpResolveHandOff
			m.Message = Message{}
			return m, []Effect{ResolveHandOff{Attempt: m.attempt, UserID: m.verifiedUserID()}}, nil
		}
		if !m.Challenge.Active() {
			return m, nil, ErrCodeNotSent
		}
		if err := validateCode(m.Code); err != nil {
			m.Message = err.(*ValidationError).message()
			return m, nil, err
		}
		m.attempt++
		m.Pending = OpVerifyCode
		m.Message = Message{}
		return m, []Effect{VerifyCode{Attempt: m.attempt, Email: m.Challenge.TargetEmail, Code: m.Code}}, nil
	case Back, StartOver:
		return startOver(m)
	default:
		return m, nil, ErrIllegalEvent
	}
}

// startOver vuelve a la eleccion de rol y descarta todo lo ligado a la cuenta creada.
// Subir attempt hace que cualquier resultado en vuelo se ignore.
func startOver(m Machine) (Machine, []Effect, error) {
	hadTimer := m.Cooldown > 0
	m = moveTo(m, SelectingRole)
	m.Created = false
	m.Account = domain.AccountIdentity{}
	m.Challenge = Challenge{}
	m.Code = ""
	m.Cooldown = 0
	m.Pending = OpNone
	m.VerifiedAs = domain.AccountIdentity{}
	m.Destination = guard.None
	m.attempt++
	if hadTimer {
		return m, []Effect{CancelCooldown{}}, nil
	}
	return m, nil, nil
}

func tick(m Machine) (Machine, []Effect, error) {
	if m.Cooldown <= 0 {
		return m, nil, nil
	}
	m.Cooldown--
	if m.Cooldown > 0 {
		return m, []Effect{ArmCooldown{}}, nil
	}
	return m, nil, nil
}

// settle aplica el resultado de una llamada al backend.
func settle(m Machine, ev Event) (Machine, []Effect, error) {
	switch e := ev.(type) {
	case AccountCreated:
		if !m.current(e.Attempt, OpCreateAccount) {
			return m, nil, nil
		}
		m.Pending = OpNone
		m.Created = true
		m.Account = e.Identity
		m = moveTo(m, AwaitingOtpEntry)
		m.Message = Message{Kind: KindSuccess, Key: MsgAccountCreated}
		return m, nil, nil

	case AccountCreationFailed:
		if !m.current(e.Attempt, OpCreateAccount) {
			return m, nil, nil
		}
		m.Pending = OpNone
		m.Message = backendMessage(e.Err)
		return m, nil, nil

	case CodeSent:
		if !m.current(e.Attempt, OpSendCode) {
			return m, nil, nil
		}
		m.Pending = OpNone
		m.Challenge = Challenge{TargetEmail: m.Draft.Email, SentAt: e.At}
		m.Code = ""
		m.Cooldown = DefaultCooldownSeconds
		m.Message = Message{Kind: KindSuccess, Key: MsgCodeSent, Params: map[string]string{"email": m.Draft.Email}}
		return m, []Effect{ArmCooldown{}}, nil

	case CodeSendFailed:
		if !m.current(e.Attempt, OpSendCode) {
			return m, nil, nil
		}
		m.Pending = OpNone
		if secs, ok := retryAfter(e.Err); ok {
			m.Cooldown = secs
			m.Message = Message{Kind: KindError, Key: MsgTooManyRequests, Params: map[string]string{"seconds": itoa(secs)}}
			return m, []Effect{ArmCooldown{}}, nil
		}
		m.Message = backendMessage(e.Err)
		return m, nil, nil

	case CodeVerified:
		if !m.current(e.Attempt, OpVerifyCode) {
			return m, nil, nil
		}
		m.VerifiedAs = e.Identity
		m.attempt++
		m.Pending = OpResolveHandOff
		effects := []Effect{ResolveHandOff{Attempt: m.attempt, UserID: e.Identity.UserID}}
		if m.Cooldown > 0 {
			m.Cooldown = 0
			effects = append([]Effect{CancelCooldown{}}, effects...)
		}
		return m, effects, nil

	case VerificationFailed:
		if !m.current(e.Attempt, OpVerifyCode) {
			return m, nil, nil
		}
		m.Pending = OpNone
		m.Message = backendMessage(e.Err)
		return m, nil, nil

	case HandOffResolved:
		if !m.current(e.Attempt, OpResolveHandOff) {
			return m, nil, nil
		}
		m.Pending = OpNone
		m.Challenge = Challenge{}
		m.Destination = e.Destination
		m = moveTo(m, Verified)
		m.Message = Message{Kind: KindSuccess, Key: MsgEmailVerified}
		return m, nil, nil

	case HandOffFailed:
		if !m.current(e.Attempt, OpResolveHandOff) {
			return m, nil, nil
		}
		m.Pending = OpNone
		m.Message = errorMessage(MsgProfileCheckFailed)
		return m, nil, nil
	}
	return m, nil, ErrIllegalEvent
}

// current indica si el resultado corresponde a la llamada que la maquina espera.
func (m Machine) current(attempt uint64, op Operation) bool {
	return m.Pending == op && m.attempt == attempt
}
