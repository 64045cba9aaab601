package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/mailer"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/repository"
	"github.com/google/uuid"
)

type SurveyService struct {
	repo       repository.SurveyRepository
	dispatcher *mailer.Dispatcher
	logger     *logger.Logger
}

func NewSurveyService(repo repository.SurveyRepository, dispatcher *mailer.Dispatcher, logger *logger.Logger) *SurveyService {
	return &SurveyService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.Component("service/survey"),
	}
}

type CreateBatchRequest struct {
	Title      string             `json:"title"`
	Questions  []string           `json:"questions"`
	Recipients []domain.Recipient `json:"recipients"`
}

type CreateBatchResponse struct {
	BatchID      string           `json:"batch_id"`
	Surveys      []*domain.Survey `json:"surveys"`
	EmailResults []mailer.Result  `json:"email_results"`
}

// CreateBatch creates one survey row per valid recipient under a shared
// batch id and dispatches one invitation email each. Email delivery runs
// after the rows are committed; delivery failures are reported in the
// response and never roll the rows back.
func (s *SurveyService) CreateBatch(ctx context.Context, managerID string, req CreateBatchRequest) (*CreateBatchResponse, error) {
	// validation order: title, then questions, then recipients
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(req.Questions) != domain.QuestionCount {
		return nil, fmt.Errorf("%w: exactly %d questions are required", domain.ErrValidation, domain.QuestionCount)
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("%w: question %d is empty", domain.ErrValidation, i+1)
		}
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", domain.ErrValidation)
	}

	// recipients without an email are dropped with a warning; an emptied
	// set fails the whole request
	recipients := make([]domain.Recipient, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		if strings.TrimSpace(rec.Email) == "" {
			s.logger.Warn("dropping recipient without email", "name", rec.Name)
			continue
		}
		recipients = append(recipients, rec)
	}
	if len(recipients) == 0 {
		return nil, domain.ErrNoRecipients
	}

	batchID := uuid.NewString()
	surveys := make([]*domain.Survey, 0, len(recipients))
	for _, rec := range recipients {
		surveys = append(surveys, &domain.Survey{
			ID:              uuid.NewString(),
			BatchID:         batchID,
			Title:           req.Title,
			Questions:       [3]string{req.Questions[0], req.Questions[1], req.Questions[2]},
			ManagerID:       managerID,
			TeamMemberEmail: rec.Email,
			TeamMemberName:  rec.Name,
			InviteToken:     uuid.NewString(),
		})
	}

	if err := s.repo.CreateBatch(ctx, surveys); err != nil {
		return nil, fmt.Errorf("create surveys: %w", err)
	}

	invites := make([]mailer.Invite, len(surveys))
	for i, survey := range surveys {
		invites[i] = mailer.Invite{
			TeamMemberEmail: survey.TeamMemberEmail,
			TeamMemberName:  survey.TeamMemberName,
			InviteToken:     survey.InviteToken,
		}
	}
	results := s.dispatcher.Dispatch(ctx, invites)

	s.logger.Info("survey batch created",
		"batch_id", batchID,
		"manager_id", managerID,
		"recipients", len(surveys),
	)

	return &CreateBatchResponse{
		BatchID:      batchID,
		Surveys:      surveys,
		EmailResults: results,
	}, nil
}

// GetForRespondent loads one survey row for the respond view. A team member
// may only open their own assignment; managers may open any row.
func (s *SurveyService) GetForRespondent(ctx context.Context, session *domain.Session, id string) (*domain.Survey, error) {
	survey, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	if !session.IsManager() && !strings.EqualFold(survey.TeamMemberEmail, session.Email) {
		return nil, domain.ErrNotAssigned
	}
	return survey, nil
}

// GetByToken loads one survey row through its invite token. An already
// responded row is reported so the token cannot be used twice.
func (s *SurveyService) GetByToken(ctx context.Context, token string) (*domain.Survey, error) {
	survey, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get survey by token: %w", err)
	}
	if survey.Responded {
		return nil, domain.ErrAlreadyResponded
	}
	return survey, nil
}

// ListPending returns unresponded rows: all of them for a manager overview,
// only the caller's own assignments for a team member.
func (s *SurveyService) ListPending(ctx context.Context, session *domain.Session) ([]*domain.Survey, error) {
	var (
		surveys []*domain.Survey
		err     error
	)
	if session.IsManager() {
		surveys, err = s.repo.ListPending(ctx)
	} else {
		surveys, err = s.repo.ListPendingByEmail(ctx, session.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("list pending surveys: %w", err)
	}
	return surveys, nil
}

// Respond submits an authenticated answer set. Preconditions are checked in
// order: record exists, record not already responded, respondent's email
// matches the assignment. The final write is conditional on responded being
// false, so a concurrent submission loses with ErrAlreadyResponded.
func (s *SurveyService) Respond(ctx context.Context, session *domain.Session, surveyID string, answers domain.AnswerSet) error {
	survey, err := s.repo.GetByID(ctx, surveyID)
	if err != nil {
		return fmt.Errorf("get survey: %w", err)
	}

	if survey.Responded {
		return domain.ErrAlreadyResponded
	}

	if !strings.EqualFold(survey.TeamMemberEmail, session.Email) {
		return domain.ErrNotAssigned
	}

	return s.submit(ctx, survey, answers)
}

// RespondByToken submits through the unauthenticated invite-token flow.
func (s *SurveyService) RespondByToken(ctx context.Context, token string, answers domain.AnswerSet) error {
	survey, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("get survey by token: %w", err)
	}

	if survey.Responded {
		return domain.ErrAlreadyResponded
	}

	return s.submit(ctx, survey, answers)
}

func (s *SurveyService) submit(ctx context.Context, survey *domain.Survey, answers domain.AnswerSet) error {
	if !answers.InRange() {
		return fmt.Errorf("%w: every question needs a rating between %d and %d",
			domain.ErrValidation, domain.RatingMin, domain.RatingMax)
	}

	if err := s.repo.SubmitAnswers(ctx, survey.ID, answers); err != nil {
		return fmt.Errorf("submit answers: %w", err)
	}

	s.logger.Info("survey responded",
		"survey_id", survey.ID,
		"batch_id", survey.BatchID,
	)

	return nil
}
