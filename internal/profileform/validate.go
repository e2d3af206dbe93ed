package profileform

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lleva el unico mensaje a mostrar y los campos que fallaron.
type ValidationError struct {
	Key    string
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return e.Key
}

// Has indica si el campo (nombre Go) fallo.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Fields {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

// Validate revisa primero los campos basicos, luego los de quien busca trabajo y por ultimo el rol.
func Validate(v Values) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}

	key := MsgRoleMissing
	for _, fe := range fields {
		if fe.Field() == "UserType" {
			continue
		}
		if fe.Tag() == "required" {
			key = MsgRequired
			break
		}
		if fe.Tag() == "required_if" {
			key = MsgWorkRequired
		}
	}
	return &ValidationError{Key: key, Fields: fields}
}
