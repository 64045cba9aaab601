package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepo struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

func NewProfileRepo(db *pgxpool.Pool, logger *logger.Logger) *ProfileRepo {
	return &ProfileRepo{
		db:     db,
		logger: logger.Component("repository/postgres"),
	}
}

func (r *ProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role_id, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.RoleID,
		profile.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *ProfileRepo) get(ctx context.Context, where string, arg any) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, role_id, password_hash, created_at
		FROM profiles ` + where

	var profile domain.Profile
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.RoleID,
		&profile.PasswordHash,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

// Search matches email or full name by case-insensitive substring, for the
// recipient autocomplete on the authoring form.
func (r *ProfileRepo) Search(ctx context.Context, query string, limit int) ([]*domain.Profile, error) {
	sql := `
		SELECT id, email, full_name, role_id, password_hash, created_at
		FROM profiles
		WHERE email ILIKE '%' || $1 || '%' OR full_name ILIKE '%' || $1 || '%'
		ORDER BY email
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(
			&profile.ID,
			&profile.Email,
			&profile.FullName,
			&profile.RoleID,
			&profile.PasswordHash,
			&profile.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return profiles, nil
}

func (r *ProfileRepo) GetRoleByID(ctx context.Context, id int) (*domain.Role, error) {
	return r.getRole(ctx, `WHERE id = $1`, id)
}

func (r *ProfileRepo) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getRole(ctx, `WHERE name = $1`, name)
}

func (r *ProfileRepo) getRole(ctx context.Context, where string, arg any) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRow(ctx, `SELECT id, name FROM roles `+where, arg).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &role, nil
}
