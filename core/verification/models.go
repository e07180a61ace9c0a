package verification

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/skillx/skillx/core"
)

// UnknownSkill is shown in place of the title of a skill that cannot be found.
const UnknownSkill = "Unknown Skill"

// DateLayout formats scheduled dates in mentor notifications.
const DateLayout = "Jan 2, 2006 3:04 PM"

type Verification struct {
	ID            string      `json:"id"`
	SkillID       string      `json:"skill_id"`
	FacultyID     string      `json:"faculty_id"`
	FacultyName   string      `json:"faculty_name"`
	ScheduledDate time.Time   `json:"scheduled_date"` // UTC
	Completed     bool        `json:"completed"`
	Remarks       null.String `json:"remarks"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
}

// View is a Verification as listed to faculty.
type View struct {
	Verification
	SkillTitle string `json:"skill_title"`
	MentorName string `json:"mentor_name"`
}

type NewVerification struct {
	SkillID       string    `json:"skill_id" validate:"required"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

func (nv *NewVerification) Validate(validate *validator.Validate) error {
	nv.SkillID = core.CleanString(nv.SkillID)
	return validate.Struct(nv)
}

type Completion struct {
	Remarks string `json:"remarks"`
}

type QueryFilter struct {
	FacultyID string
	SkillID   string
}

func (qf QueryFilter) Match(v Verification) bool {
	if qf.FacultyID != "" && v.FacultyID != qf.FacultyID {
		return false
	}
	return qf.SkillID == "" || v.SkillID == qf.SkillID
}
