package http

import (
	"golang.org/x/text/language"

	"jobsy/internal/domain"
	"jobsy/internal/guard"
	"jobsy/internal/i18n"
	"jobsy/internal/profileform"
	"jobsy/internal/signup"
)

type messageView struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
	Text string `json:"text"`
}

// draftView nunca incluye la contraseña.
type draftView struct {
	Email         string      `json:"email"`
	PasswordSet   bool        `json:"password_set"`
	AgreedToTerms bool        `json:"agreed_to_terms"`
	Role          domain.Role `json:"role,omitempty"`
}

type signupView struct {
	ID          string            `json:"id"`
	State       string            `json:"state"`
	Step        int               `json:"step"`
	Draft       draftView         `json:"draft"`
	CodeSentTo  string            `json:"code_sent_to,omitempty"`
	Code        string            `json:"code"`
	Cooldown    int               `json:"cooldown"`
	CanResend   bool              `json:"can_resend"`
	CanVerify   bool              `json:"can_verify"`
	Pending     string            `json:"pending,omitempty"`
	Destination guard.Destination `json:"destination,omitempty"`
	Message     *messageView      `json:"message,omitempty"`
}

type presenter struct {
	catalog *i18n.Catalog
	lang    language.Tag
}

func (p presenter) message(msg i18n.Message) *messageView {
	if msg.Empty() {
		return nil
	}
	return &messageView{Kind: string(msg.Kind), Key: msg.Key, Text: p.catalog.Render(p.lang, msg)}
}

func (p presenter) signup(id string, m signup.Machine) signupView {
	v := signupView{
		ID:    id,
		State: m.State.String(),
		Step:  m.State.Step(),
		Draft: draftView{
			Email:         m.Draft.Email,
			PasswordSet:   m.Draft.Password != "",
			AgreedToTerms: m.Draft.AgreedToTerms,
			Role:          m.Draft.Role,
		},
		Code:        m.Code,
		Cooldown:    m.Cooldown,
		CanResend:   m.CanResend(),
		CanVerify:   m.CanVerify(),
		Destination: m.Destination,
		Message:     p.message(m.Message),
	}
	if m.Challenge.Active() {
		v.CodeSentTo = m.Challenge.TargetEmail
	}
	if m.Pending != signup.OpNone {
		v.Pending = m.Pending.String()
	}
	return v
}

type profileView struct {
	Mode        profileform.Mode   `json:"mode"`
	Values      profileform.Values `json:"values"`
	Saved       bool               `json:"saved"`
	Destination guard.Destination  `json:"destination,omitempty"`
	Message     *messageView       `json:"message,omitempty"`
}

func (p presenter) profile(res profileform.Result) profileView {
	return profileView{
		Mode:        res.Mode,
		Values:      res.Values,
		Saved:       res.Saved,
		Destination: res.Destination,
		Message:     p.message(res.Message),
	}
}

type sessionView struct {
	User        *domain.AccountIdentity `json:"user,omitempty"`
	Destination guard.Destination       `json:"destination,omitempty"`
	Message     *messageView            `json:"message,omitempty"`
}
