package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DemisRincon/skill-up/internal/api/middleware"
	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/service"
	"github.com/go-chi/chi/v5"
)

type SurveyHandler struct {
	surveyService  *service.SurveyService
	listingService *service.ListingService
	logger         *logger.Logger
}

func NewSurveyHandler(
	surveyService *service.SurveyService,
	listingService *service.ListingService,
	logger *logger.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		surveyService:  surveyService,
		listingService: listingService,
		logger:         logger.Component("handler/survey"),
	}
}

// Routes is mounted at /dashboard; the guard has already enforced the
// session and role rules for every path here.
func (h *SurveyHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.Home)
	r.Get("/survey", h.ListBatches)
	r.Post("/surveys/create", h.CreateBatch)
	r.Get("/results/{id}", h.BatchResults)
	r.Get("/pending", h.ListPending)
	r.Get("/pending/{id}", h.GetPending)
	r.Post("/pending/{id}", h.Respond)
	r.Get("/survey/respond/{token}", h.GetByToken)
	r.Post("/survey/respond/{token}", h.RespondByToken)

	return r
}

func (h *SurveyHandler) Home(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (h *SurveyHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	query := r.URL.Query()
	filters := service.BatchFilters{
		Title:     query.Get("title"),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}

	batches, err := h.listingService.ListBatches(r.Context(), session.ProfileID, filters)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"batches": batches})
}

func (h *SurveyHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	var req service.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.surveyService.CreateBatch(r.Context(), session.ProfileID, req)
	if err != nil {
		if isDomainError(err) {
			WriteError(w, err, h.logger)
			return
		}
		// authoring is the one flow where the store's message is surfaced
		// verbatim so the manager can act on it
		h.logger.Error("batch insert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("INTERNAL_ERROR", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *SurveyHandler) BatchResults(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	results, err := h.listingService.BatchResults(r.Context(), session.ProfileID, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// surveyView is the read shape for respondent-facing endpoints. The invite
// token stays out: its possession alone grants submission, so it is only
// ever delivered by email or echoed to the authoring manager.
type surveyView struct {
	ID              string     `json:"id"`
	BatchID         string     `json:"batch_id"`
	Title           string     `json:"title"`
	Questions       [3]string  `json:"questions"`
	TeamMemberEmail string     `json:"team_member_email"`
	TeamMemberName  string     `json:"team_member_name"`
	Responded       bool       `json:"responded"`
	CreatedAt       *time.Time `json:"created_at"`
}

func newSurveyView(s *domain.Survey) surveyView {
	return surveyView{
		ID:              s.ID,
		BatchID:         s.BatchID,
		Title:           s.Title,
		Questions:       s.Questions,
		TeamMemberEmail: s.TeamMemberEmail,
		TeamMemberName:  s.TeamMemberName,
		Responded:       s.Responded,
		CreatedAt:       s.CreatedAt,
	}
}

func (h *SurveyHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	surveys, err := h.surveyService.ListPending(r.Context(), session)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	views := make([]surveyView, len(surveys))
	for i, survey := range surveys {
		views[i] = newSurveyView(survey)
	}
	writeJSON(w, http.StatusOK, map[string]any{"surveys": views})
}

func (h *SurveyHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	survey, err := h.surveyService.GetForRespondent(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, newSurveyView(survey))
}

type respondRequest struct {
	Answers []int `json:"answers"`
}

func (h *SurveyHandler) Respond(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())

	answers, err := decodeAnswers(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	if err := h.surveyService.Respond(r.Context(), session, chi.URLParam(r, "id"), answers); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"responded": true})
}

func (h *SurveyHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveyService.GetByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	// the token flow is unauthenticated: expose only what the respond
	// page needs
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               survey.ID,
		"title":            survey.Title,
		"questions":        survey.Questions,
		"team_member_name": survey.TeamMemberName,
	})
}

func (h *SurveyHandler) RespondByToken(w http.ResponseWriter, r *http.Request) {
	answers, err := decodeAnswers(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	if err := h.surveyService.RespondByToken(r.Context(), chi.URLParam(r, "token"), answers); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"responded": true})
}

// decodeAnswers rejects incomplete submissions before any store call.
func decodeAnswers(r *http.Request) (domain.AnswerSet, error) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.AnswerSet{}, fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	if len(req.Answers) != domain.QuestionCount {
		return domain.AnswerSet{}, fmt.Errorf("%w: all %d questions need an answer",
			domain.ErrValidation, domain.QuestionCount)
	}
	return domain.AnswerSet{req.Answers[0], req.Answers[1], req.Answers[2]}, nil
}
