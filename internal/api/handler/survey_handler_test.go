package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DemisRincon/skill-up/internal/api/middleware"
	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/mailer"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSurveyRepo struct {
	rows      map[string]*domain.Survey
	createErr error
}

func (r *stubSurveyRepo) CreateBatch(_ context.Context, surveys []*domain.Survey) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, s := range surveys {
		if r.rows == nil {
			r.rows = map[string]*domain.Survey{}
		}
		r.rows[s.ID] = s
	}
	return nil
}

func (r *stubSurveyRepo) GetByID(_ context.Context, id string) (*domain.Survey, error) {
	if s, ok := r.rows[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSurveyNotFound
}

func (r *stubSurveyRepo) GetByToken(_ context.Context, token string) (*domain.Survey, error) {
	for _, s := range r.rows {
		if s.InviteToken == token {
			return s, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (r *stubSurveyRepo) ListByManager(_ context.Context, _ string) ([]*domain.Survey, error) {
	return nil, nil
}

func (r *stubSurveyRepo) ListByBatch(_ context.Context, _ string) ([]*domain.Survey, error) {
	return nil, nil
}

func (r *stubSurveyRepo) ListPending(_ context.Context) ([]*domain.Survey, error) {
	var out []*domain.Survey
	for _, s := range r.rows {
		if !s.Responded {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSurveyRepo) ListPendingByEmail(_ context.Context, email string) ([]*domain.Survey, error) {
	var out []*domain.Survey
	for _, s := range r.rows {
		if !s.Responded && strings.EqualFold(s.TeamMemberEmail, email) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSurveyRepo) SubmitAnswers(_ context.Context, id string, answers domain.AnswerSet) error {
	s, ok := r.rows[id]
	if !ok {
		return domain.ErrSurveyNotFound
	}
	for i := range answers {
		v := answers[i]
		s.Answers[i] = &v
	}
	s.Responded = true
	return nil
}

func newSurveyHandler(repo *stubSurveyRepo) *SurveyHandler {
	dispatcher := mailer.NewDispatcher(&stubMailer{}, 2, logger.Discard())
	surveyService := service.NewSurveyService(repo, dispatcher, logger.Discard())
	listingService := service.NewListingService(repo, logger.Discard())
	return NewSurveyHandler(surveyService, listingService, logger.Discard())
}

func asManager(req *http.Request) *http.Request {
	session := &domain.Session{ProfileID: "m1", Email: "mgr@example.com", RoleName: domain.RoleManager}
	return req.WithContext(middleware.WithSession(req.Context(), session))
}

func TestCreateBatchHandler(t *testing.T) {
	repo := &stubSurveyRepo{}
	h := newSurveyHandler(repo)

	body := `{"title":"Sprint review","questions":["a","b","c"],
		"recipients":[{"name":"Ann","email":"ann@example.com"}]}`
	req := asManager(httptest.NewRequest(http.MethodPost, "/surveys/create", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var res service.CreateBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.BatchID)
	require.Len(t, res.Surveys, 1)
	assert.Equal(t, "m1", res.Surveys[0].ManagerID)
	require.Len(t, res.EmailResults, 1)
	assert.Equal(t, mailer.StatusSent, res.EmailResults[0].Status)
}

func TestCreateBatchHandlerValidation(t *testing.T) {
	h := newSurveyHandler(&stubSurveyRepo{})

	body := `{"title":"","questions":["a","b","c"],"recipients":[{"name":"Ann","email":"ann@example.com"}]}`
	req := asManager(httptest.NewRequest(http.MethodPost, "/surveys/create", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION")
}

func TestCreateBatchHandlerSurfacesStoreError(t *testing.T) {
	repo := &stubSurveyRepo{createErr: errors.New("duplicate key value violates unique constraint")}
	h := newSurveyHandler(repo)

	body := `{"title":"Sprint review","questions":["a","b","c"],
		"recipients":[{"name":"Ann","email":"ann@example.com"}]}`
	req := asManager(httptest.NewRequest(http.MethodPost, "/surveys/create", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// the store message must come through verbatim
	assert.Contains(t, rec.Body.String(), "duplicate key value violates unique constraint")
}

func TestRespondHandlerAnswerCount(t *testing.T) {
	repo := &stubSurveyRepo{rows: map[string]*domain.Survey{
		"s1": {ID: "s1", TeamMemberEmail: "ann@example.com"},
	}}
	h := newSurveyHandler(repo)

	session := &domain.Session{ProfileID: "p1", Email: "ann@example.com", RoleName: domain.RoleTeamMember}

	for _, body := range []string{
		`{"answers":[4,5]}`,
		`{"answers":[4,5,3,2]}`,
		`{"answers":null}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/pending/s1", strings.NewReader(body))
		req = req.WithContext(middleware.WithSession(req.Context(), session))
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}

	req := httptest.NewRequest(http.MethodPost, "/pending/s1", strings.NewReader(`{"answers":[4,5,3]}`))
	req = req.WithContext(middleware.WithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.rows["s1"].Responded)
}

func TestGetPendingHidesInviteTokenAndEnforcesAssignment(t *testing.T) {
	repo := &stubSurveyRepo{rows: map[string]*domain.Survey{
		"s1": {ID: "s1", Title: "Sprint review", TeamMemberEmail: "ann@example.com",
			InviteToken: "tok-ann"},
	}}
	h := newSurveyHandler(repo)

	// another member must not be able to open the row and harvest its
	// token for the public respond flow
	bob := &domain.Session{ProfileID: "p2", Email: "bob@example.com", RoleName: domain.RoleTeamMember}
	req := httptest.NewRequest(http.MethodGet, "/pending/s1", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), bob))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_ASSIGNED")
	assert.NotContains(t, rec.Body.String(), "tok-ann")

	ann := &domain.Session{ProfileID: "p1", Email: "ann@example.com", RoleName: domain.RoleTeamMember}
	req = httptest.NewRequest(http.MethodGet, "/pending/s1", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), ann))
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sprint review")
	assert.NotContains(t, rec.Body.String(), "tok-ann")
	assert.NotContains(t, rec.Body.String(), "invite_token")
}

func TestListPendingHidesInviteToken(t *testing.T) {
	repo := &stubSurveyRepo{rows: map[string]*domain.Survey{
		"s1": {ID: "s1", Title: "Sprint review", TeamMemberEmail: "ann@example.com",
			InviteToken: "tok-ann"},
	}}
	h := newSurveyHandler(repo)

	ann := &domain.Session{ProfileID: "p1", Email: "ann@example.com", RoleName: domain.RoleTeamMember}
	req := httptest.NewRequest(http.MethodGet, "/pending", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), ann))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"s1"`)
	assert.NotContains(t, rec.Body.String(), "tok-ann")
	assert.NotContains(t, rec.Body.String(), "invite_token")
}

func TestRespondByTokenHandler(t *testing.T) {
	repo := &stubSurveyRepo{rows: map[string]*domain.Survey{
		"s1": {ID: "s1", Title: "Sprint review", InviteToken: "tok-1",
			Questions: [3]string{"a", "b", "c"}, TeamMemberName: "Ann"},
	}}
	h := newSurveyHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/survey/respond/tok-1", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sprint review")
	assert.NotContains(t, rec.Body.String(), "manager_id")

	req = httptest.NewRequest(http.MethodPost, "/survey/respond/tok-1", strings.NewReader(`{"answers":[5,5,5]}`))
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// the token is spent after one submission
	req = httptest.NewRequest(http.MethodGet, "/survey/respond/tok-1", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/survey/respond/unknown", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
