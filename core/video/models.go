package video

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillx/skillx/core"
)

// Video only keeps the uploaded file name. The content is never stored.
type Video struct {
	ID         string    `json:"id"`
	SkillID    string    `json:"skill_id"`
	MentorID   string    `json:"mentor_id"`
	Title      string    `json:"title"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"` // UTC
}

type NewVideo struct {
	SkillID  string `json:"skill_id" validate:"required"`
	Title    string `json:"title" validate:"required,notblank"`
	FileName string `json:"file_name" validate:"required,notblank"`
}

func (nv *NewVideo) Validate(validate *validator.Validate) error {
	nv.Title = core.CleanString(nv.Title)
	nv.FileName = core.CleanString(nv.FileName)
	return validate.Struct(nv)
}

type QueryFilter struct {
	SkillID  string
	MentorID string
}

func (qf QueryFilter) Match(v Video) bool {
	if qf.SkillID != "" && v.SkillID != qf.SkillID {
		return false
	}
	return qf.MentorID == "" || v.MentorID == qf.MentorID
}
