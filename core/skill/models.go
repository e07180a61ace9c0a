package skill

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/skillx/skillx/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

type Skill struct {
	ID              string      `json:"id"`
	MentorID        string      `json:"mentor_id"`
	MentorName      string      `json:"mentor_name"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Price           float64     `json:"price"`
	Status          string      `json:"status"`
	RejectionReason null.String `json:"rejection_reason"`
	DecidedBy       null.String `json:"decided_by"`
	CreatedAt       time.Time   `json:"created_at"` // UTC
}

func (s Skill) IsApproved() bool { return s.Status == StatusApproved }

// NewSkill contains information needed to submit a new Skill.
type NewSkill struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Description string  `json:"description" validate:"required,notblank"`
	Category    string  `json:"category" validate:"required,notblank"`
	Price       float64 `json:"price" validate:"gte=0"`
}

func (ns *NewSkill) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Description = core.CleanString(ns.Description)
	ns.Category = core.CleanString(ns.Category)
	return validate.Struct(ns)
}

// Rejection carries the reason given by faculty when rejecting a Skill.
type Rejection struct {
	Reason string `json:"reason" validate:"required,notblank"`
}

func (r *Rejection) Validate(validate *validator.Validate) error {
	r.Reason = core.CleanString(r.Reason)
	return validate.Struct(r)
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	MentorID string `query:"-"`
	Status   string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	if qf.Category == CategoryAll {
		qf.Category = ""
	}
}

// Match does a case-insensitive search on title & description and exact matches on the other fields.
func (qf QueryFilter) Match(s Skill) bool {
	if qf.MentorID != "" && s.MentorID != qf.MentorID {
		return false
	}
	if qf.Status != "" && s.Status != qf.Status {
		return false
	}
	if qf.Search != "" && !(core.ContainsFold(s.Title, qf.Search) || core.ContainsFold(s.Description, qf.Search)) {
		return false
	}
	return qf.Category == "" || qf.Category == CategoryAll || s.Category == qf.Category
}
