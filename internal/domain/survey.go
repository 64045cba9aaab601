package domain

import "time"

// QuestionCount is fixed: every survey carries exactly three questions and
// the aggregation views assume it.
const QuestionCount = 3

const (
	RatingMin = 1
	RatingMax = 5
)

// Survey is one recipient's assignment within a batch, not a shared
// questionnaire object. All rows created by one authoring action share a
// BatchID and the same title/questions.
type Survey struct {
	ID              string     `json:"id"`
	BatchID         string     `json:"batch_id"`
	Title           string     `json:"title"`
	Questions       [3]string  `json:"questions"`
	ManagerID       string     `json:"manager_id"`
	TeamMemberEmail string     `json:"team_member_email"`
	TeamMemberName  string     `json:"team_member_name"`
	InviteToken     string     `json:"invite_token"`
	Responded       bool       `json:"responded"`
	Answers         [3]*int    `json:"answers"`
	CreatedAt       *time.Time `json:"created_at"`
}

// FullyAnswered reports whether all three answers are present. Aggregation
// only counts rows that are both responded and fully answered.
func (s *Survey) FullyAnswered() bool {
	for _, a := range s.Answers {
		if a == nil {
			return false
		}
	}
	return true
}

// Recipient is one target of an authoring action.
type Recipient struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AnswerSet is a complete submission: one rating per question.
type AnswerSet [3]int

func (a AnswerSet) InRange() bool {
	for _, v := range a {
		if v < RatingMin || v > RatingMax {
			return false
		}
	}
	return true
}
