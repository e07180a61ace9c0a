package enrollment

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type Enrollment struct {
	ID          string      `json:"id"`
	LearnerID   string      `json:"learner_id"`
	LearnerName string      `json:"learner_name"`
	MentorID    string      `json:"mentor_id"`
	MentorName  string      `json:"mentor_name"`
	SkillID     string      `json:"skill_id"`
	SkillTitle  string      `json:"skill_title"`
	Price       float64     `json:"price"` // copied from the skill when enrolling
	Completed   bool        `json:"completed"`
	Feedback    null.String `json:"feedback"`
	EnrolledAt  time.Time   `json:"enrolled_at"` // UTC
}

type Payment struct {
	ID              string    `json:"id"`
	LearnerID       string    `json:"learner_id"`
	MentorID        string    `json:"mentor_id"`
	SkillID         string    `json:"skill_id"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	TransactionID   string    `json:"transaction_id"`
	TransactionDate time.Time `json:"transaction_date"` // UTC
}

func (p Payment) IsCompleted() bool { return p.Status == PaymentCompleted }

type QueryFilter struct {
	LearnerID string `query:"-"`
	MentorID  string `query:"-"`
	SkillID   string `query:"-"`
	Completed *bool  `query:"completed"`
}

func (qf QueryFilter) Match(e Enrollment) bool {
	if qf.LearnerID != "" && e.LearnerID != qf.LearnerID {
		return false
	}
	if qf.MentorID != "" && e.MentorID != qf.MentorID {
		return false
	}
	if qf.SkillID != "" && e.SkillID != qf.SkillID {
		return false
	}
	return qf.Completed == nil || e.Completed == *qf.Completed
}

type PaymentFilter struct {
	// UserID matches payments where the user is either the learner or the mentor.
	UserID    string
	LearnerID string
	MentorID  string
	Status    string
}

func (pf PaymentFilter) Match(p Payment) bool {
	if pf.UserID != "" && p.LearnerID != pf.UserID && p.MentorID != pf.UserID {
		return false
	}
	if pf.LearnerID != "" && p.LearnerID != pf.LearnerID {
		return false
	}
	if pf.MentorID != "" && p.MentorID != pf.MentorID {
		return false
	}
	return pf.Status == "" || p.Status == pf.Status
}

// Feedback is the free text a learner leaves on an enrollment.
type Feedback struct {
	Text string `json:"feedback"`
}

// ChargeRequest is handed to the PaymentGateway when a learner enrolls.
type ChargeRequest struct {
	LearnerID string
	MentorID  string
	SkillID   string
	Amount    float64
}

// ChargeResult is the outcome of a charge. Status is PaymentCompleted or PaymentFailed.
type ChargeResult struct {
	Status        string
	TransactionID string
	ProcessedAt   time.Time
}
