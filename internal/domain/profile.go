package domain

import "time"

// Profile es el registro de perfil por usuario; ID coincide con el id de la cuenta.
type Profile struct {
	ID             string    `json:"id"`
	UserType       Role      `json:"user_type"`
	FullName       string    `json:"full_name"`
	Nationality    string    `json:"nationality"`
	KnownLanguages []string  `json:"known_languages"`
	Age            *int      `json:"age,omitempty"`
	Gender         string    `json:"gender"`
	TalentSkills   []string  `json:"talent_skills"`
	JobExperience  string    `json:"job_experience,omitempty"`
	PhoneNumber    string    `json:"phone_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfilePatch contiene los campos editables; id y user_type no se modifican.
type ProfilePatch struct {
	FullName       string   `json:"full_name"`
	Nationality    string   `json:"nationality"`
	KnownLanguages []string `json:"known_languages"`
	Age            *int     `json:"age,omitempty"`
	Gender         string   `json:"gender"`
	TalentSkills   []string `json:"talent_skills"`
	JobExperience  string   `json:"job_experience,omitempty"`
	PhoneNumber    string   `json:"phone_number"`
}

// Apply copia el patch sobre el perfil.
func (p *Profile) Apply(patch ProfilePatch) {
	p.FullName = patch.FullName
	p.Nationality = patch.Nationality
	p.KnownLanguages = patch.KnownLanguages
	p.Age = patch.Age
	p.Gender = patch.Gender
	p.TalentSkills = patch.TalentSkills
	p.JobExperience = patch.JobExperience
	p.PhoneNumber = patch.PhoneNumber
}
