package repository

import (
	"context"

	"github.com/DemisRincon/skill-up/internal/domain"
)

// ProfileRepository covers registered users and role reference data.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Profile, error)
	GetRoleByID(ctx context.Context, id int) (*domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
}

// SurveyRepository covers per-recipient survey rows.
type SurveyRepository interface {
	CreateBatch(ctx context.Context, surveys []*domain.Survey) error
	GetByID(ctx context.Context, id string) (*domain.Survey, error)
	GetByToken(ctx context.Context, token string) (*domain.Survey, error)
	ListByManager(ctx context.Context, managerID string) ([]*domain.Survey, error)
	ListByBatch(ctx context.Context, batchID string) ([]*domain.Survey, error)
	ListPending(ctx context.Context) ([]*domain.Survey, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*domain.Survey, error)
	SubmitAnswers(ctx context.Context, id string, answers domain.AnswerSet) error
}
