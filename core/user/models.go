package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillx/skillx/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// Student types
const (
	StudentLearner = "learner"
	StudentMentor  = "mentor"
	StudentBoth    = "both"
)

var (
	AllRoles        = []string{RoleStudent, RoleFaculty}
	AllStudentTypes = []string{StudentLearner, StudentMentor, StudentBoth}
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	StudentType  string    `json:"student_type,omitempty"` // students only
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsFaculty() bool { return u.Role == RoleFaculty }

// CanTeach tells whether the user may submit skills and upload videos.
func (u *User) CanTeach() bool {
	return u.IsStudent() && (u.StudentType == StudentMentor || u.StudentType == StudentBoth)
}

// CanLearn tells whether the user may enroll in skills.
func (u *User) CanLearn() bool {
	return u.IsStudent() && (u.StudentType == StudentLearner || u.StudentType == StudentBoth)
}

// Session is the logged in state of a User.
// It holds a copy of the User taken at login which is not refreshed afterwards.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=student faculty"`
	StudentType     string `json:"student_type" validate:"omitempty,oneof=learner mentor both"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email)
	nu.StudentType = core.CleanString(nu.StudentType, true /* lower */)
	if nu.Role == RoleFaculty {
		nu.StudentType = ""
	}
	return validate.Struct(nu)
}

type QueryFilter struct {
	Roles        []string `query:"role"`
	StudentTypes []string `query:"student_type"`
}

func (qf QueryFilter) Match(usr User) bool {
	return matchAny(usr.Role, qf.Roles) && matchAny(usr.StudentType, qf.StudentTypes)
}

func matchAny(val string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if val == a {
			return true
		}
	}
	return false
}
