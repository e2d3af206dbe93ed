package email

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDisabled se devuelve cuando no hay SMTP configurado.
var ErrDisabled = errors.New("email sender disabled")

// Sender envia el codigo de verificacion de 6 digitos del registro.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender rechaza todo envio; reason explica por que en el error.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, toEmail string, _ string, _ time.Time) error {
	if s.reason == "" {
		return fmt.Errorf("%w: cannot send code to %s", ErrDisabled, toEmail)
	}
	return fmt.Errorf("%w: %s", ErrDisabled, s.reason)
}
