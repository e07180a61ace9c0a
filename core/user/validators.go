package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/skillx/skillx/core"
)

var (
	studentTypeTag  = "studenttype"
	studentTypeText = "student type is required for students"
)

// InitValidators registers the user validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, studentTypeTag, studentTypeText)
}

// newUserStructValidation checks that students provide a student type.
func newUserStructValidation(sl validator.StructLevel) {
	nu, ok := sl.Current().Interface().(NewUser)
	if !ok {
		return
	}
	if nu.Role == RoleStudent && nu.StudentType == "" {
		sl.ReportError(nu.StudentType, "student_type", "StudentType", studentTypeTag, "")
	}
}
