package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"jobsy/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	Update(ctx context.Context, profile domain.Profile) error
}

type PgProfileRepository struct {
	db DBTX
}

func NewPgProfileRepository(db DBTX) *PgProfileRepository {
	return &PgProfileRepository{db: db}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (id, user_type, full_name, nationality, known_languages, age,
			gender, talent_skills, job_experience, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		profile.ID,
		string(profile.UserType),
		profile.FullName,
		profile.Nationality,
		nonNil(profile.KnownLanguages),
		profile.Age,
		profile.Gender,
		nonNil(profile.TalentSkills),
		profile.JobExperience,
		profile.PhoneNumber,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return mapWriteError(err)
}

func (r *PgProfileRepository) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	const query = `
		SELECT id, user_type, full_name, nationality, known_languages, age,
			gender, talent_skills, job_experience, phone_number, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	var (
		p        domain.Profile
		userType string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&userType,
		&p.FullName,
		&p.Nationality,
		&p.KnownLanguages,
		&p.Age,
		&p.Gender,
		&p.TalentSkills,
		&p.JobExperience,
		&p.PhoneNumber,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	p.UserType = domain.Role(userType)
	return p, nil
}

// Update reescribe los campos editables; devuelve pgx.ErrNoRows si no existe.
func (r *PgProfileRepository) Update(ctx context.Context, profile domain.Profile) error {
	const query = `
		UPDATE profiles SET full_name = $2, nationality = $3, known_languages = $4, age = $5,
			gender = $6, talent_skills = $7, job_experience = $8, phone_number = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Nationality,
		nonNil(profile.KnownLanguages),
		profile.Age,
		profile.Gender,
		nonNil(profile.TalentSkills),
		profile.JobExperience,
		profile.PhoneNumber,
		profile.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
