package profileform

import (
	"strconv"
	"strings"

	"jobsy/internal/domain"
)

// Values son los campos del formulario tal como los escribe el usuario.
type Values struct {
	FullName       string      `json:"full_name" validate:"required"`
	Nationality    string      `json:"nationality" validate:"required"`
	KnownLanguages string      `json:"known_languages" validate:"required_if=UserType work"`
	Age            string      `json:"age" validate:"required"`
	Gender         string      `json:"gender" validate:"required"`
	TalentSkills   string      `json:"talent_skills" validate:"required_if=UserType work"`
	JobExperience  string      `json:"job_experience" validate:"required_if=UserType work"`
	PhoneNumber    string      `json:"phone_number" validate:"required"`
	UserType       domain.Role `json:"user_type" validate:"required,oneof=hire work"`
}

// ValuesFromProfile prellena el formulario de edicion.
func ValuesFromProfile(p domain.Profile) Values {
	v := Values{
		FullName:       p.FullName,
		Nationality:    p.Nationality,
		KnownLanguages: strings.Join(p.KnownLanguages, ", "),
		Gender:         p.Gender,
		TalentSkills:   strings.Join(p.TalentSkills, ", "),
		JobExperience:  p.JobExperience,
		PhoneNumber:    p.PhoneNumber,
		UserType:       p.UserType,
	}
	if p.Age != nil {
		v.Age = strconv.Itoa(*p.Age)
	}
	return v
}

func (v Values) trimmed() Values {
	return Values{
		FullName:       strings.TrimSpace(v.FullName),
		Nationality:    strings.TrimSpace(v.Nationality),
		KnownLanguages: strings.TrimSpace(v.KnownLanguages),
		Age:            strings.TrimSpace(v.Age),
		Gender:         strings.TrimSpace(v.Gender),
		TalentSkills:   strings.TrimSpace(v.TalentSkills),
		JobExperience:  strings.TrimSpace(v.JobExperience),
		PhoneNumber:    strings.TrimSpace(v.PhoneNumber),
		UserType:       domain.Role(strings.ToLower(strings.TrimSpace(string(v.UserType)))),
	}
}

// Profile arma el registro a insertar para userID.
func (v Values) Profile(userID string) domain.Profile {
	patch := v.Patch()
	p := domain.Profile{ID: userID, UserType: v.UserType}
	p.Apply(patch)
	return p
}

// Patch arma los campos editables; id y user_type quedan fuera.
func (v Values) Patch() domain.ProfilePatch {
	return domain.ProfilePatch{
		FullName:       v.FullName,
		Nationality:    v.Nationality,
		KnownLanguages: SplitList(v.KnownLanguages),
		Age:            ParseAge(v.Age),
		Gender:         v.Gender,
		TalentSkills:   SplitList(v.TalentSkills),
		JobExperience:  v.JobExperience,
		PhoneNumber:    v.PhoneNumber,
	}
}

// SplitList separa por comas, recorta y descarta vacios.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseAge toma los digitos iniciales; sin digitos o cero devuelve nil.
func ParseAge(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return nil
	}
	return &n
}
