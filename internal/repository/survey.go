package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const surveyColumns = `
	id, batch_id, title, q1, q2, q3,
	manager_id, team_member_email, team_member_name, invite_token,
	responded, a1, a2, a3, created_at`

type SurveyRepo struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

func NewSurveyRepo(db *pgxpool.Pool, logger *logger.Logger) *SurveyRepo {
	return &SurveyRepo{
		db:     db,
		logger: logger.Component("repository/postgres"),
	}
}

// CreateBatch inserts all rows of one authoring action in a single
// transaction: either every recipient gets a row or none do.
func (r *SurveyRepo) CreateBatch(ctx context.Context, surveys []*domain.Survey) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		for _, s := range surveys {
			_, err := tx.Exec(ctx, `
				INSERT INTO surveys (
					id, batch_id, title, q1, q2, q3,
					manager_id, team_member_email, team_member_name, invite_token,
					responded, created_at
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, NOW())
			`,
				s.ID,
				s.BatchID,
				s.Title,
				s.Questions[0],
				s.Questions[1],
				s.Questions[2],
				s.ManagerID,
				s.TeamMemberEmail,
				s.TeamMemberName,
				s.InviteToken,
			)
			if err != nil {
				return fmt.Errorf("insert survey for %s: %w", s.TeamMemberEmail, err)
			}
		}
		return nil
	})
}

func (r *SurveyRepo) GetByID(ctx context.Context, id string) (*domain.Survey, error) {
	return r.get(ctx, `WHERE id = $1`, id, domain.ErrSurveyNotFound)
}

// GetByToken serves the unauthenticated invite-token respond flow.
func (r *SurveyRepo) GetByToken(ctx context.Context, token string) (*domain.Survey, error) {
	return r.get(ctx, `WHERE invite_token = $1`, token, domain.ErrInviteNotFound)
}

func (r *SurveyRepo) get(ctx context.Context, where string, arg any, notFound error) (*domain.Survey, error) {
	row := r.db.QueryRow(ctx, `SELECT `+surveyColumns+` FROM surveys `+where, arg)

	survey, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("get survey: %w", err)
	}

	return survey, nil
}

func (r *SurveyRepo) ListByManager(ctx context.Context, managerID string) ([]*domain.Survey, error) {
	return r.list(ctx, `WHERE manager_id = $1 ORDER BY created_at DESC`, managerID)
}

func (r *SurveyRepo) ListByBatch(ctx context.Context, batchID string) ([]*domain.Survey, error) {
	return r.list(ctx, `WHERE batch_id = $1 ORDER BY created_at`, batchID)
}

// ListPending returns every unresponded row, for the manager overview.
func (r *SurveyRepo) ListPending(ctx context.Context) ([]*domain.Survey, error) {
	return r.list(ctx, `WHERE NOT responded ORDER BY created_at DESC`)
}

// ListPendingByEmail returns the unresponded rows assigned to one recipient.
func (r *SurveyRepo) ListPendingByEmail(ctx context.Context, email string) ([]*domain.Survey, error) {
	return r.list(ctx, `WHERE NOT responded AND team_member_email = $1 ORDER BY created_at DESC`, email)
}

func (r *SurveyRepo) list(ctx context.Context, tail string, args ...any) ([]*domain.Survey, error) {
	rows, err := r.db.Query(ctx, `SELECT `+surveyColumns+` FROM surveys `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*domain.Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, survey)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return surveys, nil
}

// SubmitAnswers writes the answer set and flips responded in one conditional
// update. The WHERE NOT responded clause makes the check-then-write atomic:
// a lost race surfaces as zero rows affected and is reported as
// ErrAlreadyResponded.
func (r *SurveyRepo) SubmitAnswers(ctx context.Context, id string, answers domain.AnswerSet) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE surveys
		SET a1 = $1, a2 = $2, a3 = $3, responded = TRUE
		WHERE id = $4 AND NOT responded
	`,
		answers[0], answers[1], answers[2], id,
	)
	if err != nil {
		return fmt.Errorf("update survey answers: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var responded bool
		err := r.db.QueryRow(ctx, `SELECT responded FROM surveys WHERE id = $1`, id).Scan(&responded)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrSurveyNotFound
		}
		if err != nil {
			return fmt.Errorf("check survey state: %w", err)
		}
		return domain.ErrAlreadyResponded
	}

	return nil
}

func scanSurvey(row pgx.Row) (*domain.Survey, error) {
	var s domain.Survey
	err := row.Scan(
		&s.ID,
		&s.BatchID,
		&s.Title,
		&s.Questions[0],
		&s.Questions[1],
		&s.Questions[2],
		&s.ManagerID,
		&s.TeamMemberEmail,
		&s.TeamMemberName,
		&s.InviteToken,
		&s.Responded,
		&s.Answers[0],
		&s.Answers[1],
		&s.Answers[2],
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// withTx runs fn inside a transaction.
func (r *SurveyRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error("failed to rollback transaction",
					"error", rbErr,
					"original_error", err,
				)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
