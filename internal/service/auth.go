package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/repository"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	repo     repository.ProfileRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *logger.Logger
}

func NewAuthService(repo repository.ProfileRepository, secret string, tokenTTL time.Duration, logger *logger.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger.Component("service/auth"),
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (r RegisterRequest) Validate() error {
	return ValidateStruct(&r,
		Field(&r.Email, Required, is.Email),
		Field(&r.Password, Required, Length(8, 72)),
		Field(&r.FullName, Required, Length(1, 255)),
		Field(&r.Role, Required, In(domain.RoleManager, domain.RoleTeamMember)),
	)
}

// Register creates a profile with the role chosen at sign-up and returns it
// together with a signed session token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.Profile, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	role, err := s.repo.GetRoleByName(ctx, req.Role)
	if err != nil {
		return nil, "", fmt.Errorf("get role %q: %w", req.Role, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	profile := &domain.Profile{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		RoleID:       role.ID,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, "", fmt.Errorf("create profile: %w", err)
	}

	token, err := s.signToken(profile)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("profile registered",
		"profile_id", profile.ID,
		"role", role.Name,
	)

	return profile, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, error) {
	profile, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, "", domain.ErrBadCredentials
		}
		return nil, "", fmt.Errorf("get profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrBadCredentials
	}

	token, err := s.signToken(profile)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("profile logged in", "profile_id", profile.ID)

	return profile, token, nil
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *AuthService) signToken(profile *domain.Profile) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		Email: profile.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Resolve validates a session token and loads the holder's identity and
// role. Every failure is reported as an unauthenticated session; the guard
// does one synchronous check per request, no retries.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (*domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	profile, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	role, err := s.repo.GetRoleByID(ctx, profile.RoleID)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &domain.Session{
		ProfileID: profile.ID,
		Email:     profile.Email,
		RoleName:  role.Name,
	}, nil
}

// SearchProfiles backs the recipient autocomplete on the authoring form.
func (s *AuthService) SearchProfiles(ctx context.Context, query string, limit int) ([]*domain.Profile, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	profiles, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, nil
}
