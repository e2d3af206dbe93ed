package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"jobsy/internal/domain"
)

func newProfileRepoMock(t *testing.T) (*PgProfileRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPgProfileRepository(mock), mock
}

func sampleProfile() domain.Profile {
	age := 29
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Profile{
		ID:             "u1",
		UserType:       domain.RoleWork,
		FullName:       "Lana Aziz",
		Nationality:    "Iraqi",
		KnownLanguages: []string{"Kurdish", "English"},
		Age:            &age,
		Gender:         "female",
		TalentSkills:   []string{"design"},
		JobExperience:  "3 years",
		PhoneNumber:    "+9647500000000",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func profileColumns() []string {
	return []string{
		"id", "user_type", "full_name", "nationality", "known_languages", "age",
		"gender", "talent_skills", "job_experience", "phone_number", "created_at", "updated_at",
	}
}

func TestPgProfileRepositoryCreate_NilListsStoredEmpty(t *testing.T) {
	repo, mock := newProfileRepoMock(t)
	p := sampleProfile()
	p.TalentSkills = nil

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs(p.ID, "work", p.FullName, p.Nationality, p.KnownLanguages, p.Age,
			p.Gender, []string{}, p.JobExperience, p.PhoneNumber, p.CreatedAt, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPgProfileRepositoryGetByID(t *testing.T) {
	repo, mock := newProfileRepoMock(t)
	p := sampleProfile()

	mock.ExpectQuery("SELECT .+ FROM profiles").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(profileColumns()).AddRow(
			p.ID, "work", p.FullName, p.Nationality, p.KnownLanguages, p.Age,
			p.Gender, p.TalentSkills, p.JobExperience, p.PhoneNumber, p.CreatedAt, p.UpdatedAt,
		))

	got, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.UserType != domain.RoleWork || got.FullName != p.FullName {
		t.Fatalf("unexpected profile %+v", got)
	}
	if got.Age == nil || *got.Age != 29 {
		t.Fatalf("expected age 29, got %v", got.Age)
	}
	if len(got.KnownLanguages) != 2 {
		t.Fatalf("expected 2 languages, got %v", got.KnownLanguages)
	}
}

func TestPgProfileRepositoryGetByID_NotFound(t *testing.T) {
	repo, mock := newProfileRepoMock(t)

	mock.ExpectQuery("SELECT .+ FROM profiles").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestPgProfileRepositoryUpdate_NoRows(t *testing.T) {
	repo, mock := newProfileRepoMock(t)
	p := sampleProfile()

	mock.ExpectExec("UPDATE profiles SET").
		WithArgs(p.ID, p.FullName, p.Nationality, p.KnownLanguages, p.Age,
			p.Gender, p.TalentSkills, p.JobExperience, p.PhoneNumber, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Update(context.Background(), p); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}
