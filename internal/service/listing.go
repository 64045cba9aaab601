package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/repository"
)

// NoAverage marks a question average with zero fully-answered rows.
const NoAverage = "N/A"

type ListingService struct {
	repo   repository.SurveyRepository
	logger *logger.Logger
}

func NewListingService(repo repository.SurveyRepository, logger *logger.Logger) *ListingService {
	return &ListingService{
		repo:   repo,
		logger: logger.Component("service/listing"),
	}
}

// BatchFilters are applied to the grouped list, not to the underlying
// query. Dates use the 2006-01-02 form; the end date is inclusive through
// end of day.
type BatchFilters struct {
	Title     string
	StartDate string
	EndDate   string
}

type BatchSummary struct {
	BatchID        string     `json:"batch_id"`
	SurveyID       string     `json:"survey_id"`
	Title          string     `json:"title"`
	CreatedAt      *time.Time `json:"created_at"`
	ApplicantCount int        `json:"applicant_count"`
	RespondedCount int        `json:"responded_count"`
	Averages       [3]string  `json:"averages"`
}

type BatchResults struct {
	BatchID        string           `json:"batch_id"`
	Title          string           `json:"title"`
	Questions      [3]string        `json:"questions"`
	Total          int              `json:"total"`
	RespondedCount int              `json:"responded_count"`
	ResponseRate   float64          `json:"response_rate"`
	Averages       [3]string        `json:"averages"`
	Surveys        []*domain.Survey `json:"surveys"`
}

// ListBatches loads every row the manager owns, groups rows sharing a batch
// id (a row without one stands alone under its own id), computes the group
// statistics, and finally applies the caller's filters to the grouped list.
func (s *ListingService) ListBatches(ctx context.Context, managerID string, filters BatchFilters) ([]*BatchSummary, error) {
	surveys, err := s.repo.ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}

	groups := make(map[string][]*domain.Survey)
	var order []string
	for _, survey := range surveys {
		key := survey.BatchID
		if key == "" {
			key = survey.ID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], survey)
	}

	summaries := make([]*BatchSummary, 0, len(order))
	for _, key := range order {
		batch := groups[key]
		first := batch[0]

		summary := &BatchSummary{
			BatchID:        key,
			SurveyID:       first.ID,
			Title:          first.Title,
			CreatedAt:      first.CreatedAt,
			ApplicantCount: len(batch),
			Averages:       questionAverages(batch),
		}
		for _, survey := range batch {
			if survey.Responded {
				summary.RespondedCount++
			}
		}

		if matchesFilters(summary, filters) {
			summaries = append(summaries, summary)
		}
	}

	return summaries, nil
}

// BatchResults aggregates one batch for the results view. A batch the
// caller does not own is indistinguishable from a missing one.
func (s *ListingService) BatchResults(ctx context.Context, managerID, batchID string) (*BatchResults, error) {
	surveys, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch surveys: %w", err)
	}
	if len(surveys) == 0 || surveys[0].ManagerID != managerID {
		return nil, domain.ErrBatchNotFound
	}

	first := surveys[0]
	results := &BatchResults{
		BatchID:   batchID,
		Title:     first.Title,
		Questions: first.Questions,
		Total:     len(surveys),
		Averages:  questionAverages(surveys),
		Surveys:   surveys,
	}
	for _, survey := range surveys {
		if survey.Responded {
			results.RespondedCount++
		}
	}
	if results.Total > 0 {
		results.ResponseRate = float64(results.RespondedCount) / float64(results.Total) * 100
	}

	return results, nil
}

// questionAverages computes the arithmetic mean per question over exactly
// the responded, fully-answered rows. No such rows means no average.
func questionAverages(surveys []*domain.Survey) [3]string {
	var sums [3]int
	var count int
	for _, survey := range surveys {
		if !survey.Responded || !survey.FullyAnswered() {
			continue
		}
		for i, answer := range survey.Answers {
			sums[i] += *answer
		}
		count++
	}

	var averages [3]string
	for i := range averages {
		if count == 0 {
			averages[i] = NoAverage
			continue
		}
		averages[i] = formatAverage(float64(sums[i]) / float64(count))
	}
	return averages
}

func formatAverage(avg float64) string {
	if avg == float64(int(avg)) {
		return strconv.Itoa(int(avg))
	}
	return strconv.FormatFloat(avg, 'f', 2, 64)
}

func matchesFilters(summary *BatchSummary, filters BatchFilters) bool {
	if filters.Title != "" &&
		!strings.Contains(strings.ToLower(summary.Title), strings.ToLower(filters.Title)) {
		return false
	}

	if summary.CreatedAt == nil {
		return filters.StartDate == "" && filters.EndDate == ""
	}

	if filters.StartDate != "" {
		start, err := time.Parse("2006-01-02", filters.StartDate)
		if err == nil && summary.CreatedAt.Before(start) {
			return false
		}
	}
	if filters.EndDate != "" {
		end, err := time.Parse("2006-01-02", filters.EndDate)
		if err == nil && summary.CreatedAt.After(end.Add(24*time.Hour-time.Second)) {
			return false
		}
	}

	return true
}
