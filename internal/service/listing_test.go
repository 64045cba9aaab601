package service

import (
	"context"
	"testing"
	"time"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listStubRepo struct {
	stubSurveyRepo
	ordered []*domain.Survey
}

func (r *listStubRepo) ListByManager(_ context.Context, managerID string) ([]*domain.Survey, error) {
	var out []*domain.Survey
	for _, s := range r.ordered {
		if s.ManagerID == managerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *listStubRepo) ListByBatch(_ context.Context, batchID string) ([]*domain.Survey, error) {
	var out []*domain.Survey
	for _, s := range r.ordered {
		if s.BatchID == batchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func answered(a, b, c int) [3]*int {
	return [3]*int{&a, &b, &c}
}

func at(day string) *time.Time {
	ts, _ := time.Parse("2006-01-02", day)
	return &ts
}

func newListingFixture() (*ListingService, *listStubRepo) {
	repo := &listStubRepo{}
	return NewListingService(repo, logger.Discard()), repo
}

func TestListBatchesGroupsByBatchID(t *testing.T) {
	svc, repo := newListingFixture()
	repo.ordered = []*domain.Survey{
		{ID: "s1", BatchID: "b1", Title: "Sprint review", ManagerID: "m1", CreatedAt: at("2026-08-01"),
			Responded: true, Answers: answered(4, 5, 3)},
		{ID: "s2", BatchID: "b1", Title: "Sprint review", ManagerID: "m1", CreatedAt: at("2026-08-01")},
		{ID: "s3", BatchID: "b2", Title: "Onboarding", ManagerID: "m1", CreatedAt: at("2026-08-10")},
		{ID: "s4", BatchID: "b3", Title: "Other team", ManagerID: "m2", CreatedAt: at("2026-08-10")},
	}

	batches, err := svc.ListBatches(context.Background(), "m1", BatchFilters{})
	require.NoError(t, err)
	require.Len(t, batches, 2)

	first := batches[0]
	assert.Equal(t, "b1", first.BatchID)
	assert.Equal(t, "s1", first.SurveyID)
	assert.Equal(t, 2, first.ApplicantCount)
	assert.Equal(t, 1, first.RespondedCount)
	assert.LessOrEqual(t, first.RespondedCount, first.ApplicantCount)

	second := batches[1]
	assert.Equal(t, "b2", second.BatchID)
	assert.Equal(t, 1, second.ApplicantCount)
	assert.Equal(t, 0, second.RespondedCount)
}

func TestListBatchesRowWithoutBatchIDStandsAlone(t *testing.T) {
	svc, repo := newListingFixture()
	repo.ordered = []*domain.Survey{
		{ID: "s1", Title: "Legacy", ManagerID: "m1"},
		{ID: "s2", BatchID: "b1", Title: "Grouped", ManagerID: "m1"},
	}

	batches, err := svc.ListBatches(context.Background(), "m1", BatchFilters{})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "s1", batches[0].BatchID)
	assert.Equal(t, 1, batches[0].ApplicantCount)
}

func TestListBatchesAverages(t *testing.T) {
	svc, repo := newListingFixture()
	repo.ordered = []*domain.Survey{
		{ID: "s1", BatchID: "b1", ManagerID: "m1", Responded: true, Answers: answered(4, 5, 2)},
		{ID: "s2", BatchID: "b1", ManagerID: "m1", Responded: true, Answers: answered(5, 5, 3)},
		{ID: "s3", BatchID: "b1", ManagerID: "m1"},
		{ID: "s4", BatchID: "b2", ManagerID: "m1"},
	}

	batches, err := svc.ListBatches(context.Background(), "m1", BatchFilters{})
	require.NoError(t, err)
	require.Len(t, batches, 2)

	// only responded, fully answered rows count toward the mean
	assert.Equal(t, [3]string{"4.50", "5", "2.50"}, batches[0].Averages)
	assert.Equal(t, [3]string{NoAverage, NoAverage, NoAverage}, batches[1].Averages)
}

func TestListBatchesFilters(t *testing.T) {
	svc, repo := newListingFixture()
	repo.ordered = []*domain.Survey{
		{ID: "s1", BatchID: "b1", Title: "Sprint Review", ManagerID: "m1", CreatedAt: at("2026-08-01")},
		{ID: "s2", BatchID: "b2", Title: "Onboarding", ManagerID: "m1", CreatedAt: at("2026-08-15")},
	}
	ctx := context.Background()

	batches, err := svc.ListBatches(ctx, "m1", BatchFilters{Title: "sprint"})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "b1", batches[0].BatchID)

	batches, err = svc.ListBatches(ctx, "m1", BatchFilters{StartDate: "2026-08-10"})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "b2", batches[0].BatchID)

	// the end date is inclusive through end of day
	batches, err = svc.ListBatches(ctx, "m1", BatchFilters{EndDate: "2026-08-01"})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "b1", batches[0].BatchID)

	batches, err = svc.ListBatches(ctx, "m1", BatchFilters{Title: "sprint", StartDate: "2026-08-10"})
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestBatchResults(t *testing.T) {
	svc, repo := newListingFixture()
	repo.ordered = []*domain.Survey{
		{ID: "s1", BatchID: "b1", Title: "Sprint review", Questions: [3]string{"a", "b", "c"},
			ManagerID: "m1", Responded: true, Answers: answered(4, 4, 4)},
		{ID: "s2", BatchID: "b1", Title: "Sprint review", ManagerID: "m1"},
	}

	results, err := svc.BatchResults(context.Background(), "m1", "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, results.Total)
	assert.Equal(t, 1, results.RespondedCount)
	assert.InDelta(t, 50.0, results.ResponseRate, 0.001)
	assert.Equal(t, [3]string{"4", "4", "4"}, results.Averages)
	assert.Len(t, results.Surveys, 2)
}

func TestBatchResultsOwnership(t *testing.T) {
	svc, repo := newListingFixture()
	repo.ordered = []*domain.Survey{
		{ID: "s1", BatchID: "b1", ManagerID: "m1"},
	}
	ctx := context.Background()

	// a foreign batch looks exactly like a missing one
	_, err := svc.BatchResults(ctx, "m2", "b1")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)

	_, err = svc.BatchResults(ctx, "m1", "missing")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestFormatAverage(t *testing.T) {
	assert.Equal(t, "4", formatAverage(4.0))
	assert.Equal(t, "4.33", formatAverage(13.0/3.0))
	assert.Equal(t, "2.50", formatAverage(2.5))
}
