package signup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"jobsy/internal/domain"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Issue es una regla de paso que no se cumple.
type Issue struct {
	Field string
	Key   string
}

// ValidationError es un fallo local, sin llamada al backend. Key es el primer problema.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return e.Issues[0].Key
}

// Has indica si el campo tiene algun problema.
func (e *ValidationError) Has(field string) bool {
	for _, issue := range e.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) message() Message {
	return errorMessage(e.Error())
}

func validOrNil(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// ValidateCredentials revisa el paso 1: correo con formato valido y contraseña de 6 o mas.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		var issues []Issue
		if email == "" {
			issues = append(issues, Issue{Field: "email", Key: MsgMissingCredentials})
		}
		if password == "" {
			issues = append(issues, Issue{Field: "password", Key: MsgMissingCredentials})
		}
		return validOrNil(issues)
	}

	var issues []Issue
	if !emailPattern.MatchString(email) {
		issues = append(issues, Issue{Field: "email", Key: MsgInvalidEmail})
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		issues = append(issues, Issue{Field: "password", Key: MsgPasswordTooShort})
	}
	return validOrNil(issues)
}

func ValidateTerms(agreed bool) error {
	if agreed {
		return nil
	}
	return &ValidationError{Issues: []Issue{{Field: "terms", Key: MsgMustAgreeTerms}}}
}

func ValidateRole(role domain.Role) error {
	if role.Valid() {
		return nil
	}
	return &ValidationError{Issues: []Issue{{Field: "role", Key: MsgChooseRole}}}
}

func validateCode(code string) error {
	if len(code) == CodeLength {
		return nil
	}
	return &ValidationError{Issues: []Issue{{Field: "code", Key: MsgEnterCode}}}
}
