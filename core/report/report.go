// Package report derives platform and profile statistics by scanning every collection.
// Nothing is cached: each call recomputes from scratch.
package report

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/core/video"
)

type PlatformStats struct {
	TotalStudents        int     `json:"total_students"`
	TotalMentors         int     `json:"total_mentors"`
	TotalFaculty         int     `json:"total_faculty"`
	TotalSkills          int     `json:"total_skills"`
	ApprovedSkills       int     `json:"approved_skills"`
	PendingSkills        int     `json:"pending_skills"`
	RejectedSkills       int     `json:"rejected_skills"`
	TotalEnrollments     int     `json:"total_enrollments"`
	CompletedEnrollments int     `json:"completed_enrollments"`
	TotalRevenue         float64 `json:"total_revenue"`
	TotalVideos          int     `json:"total_videos"`
	TotalVerifications   int     `json:"total_verifications"`
}

type ProfileStats struct {
	SkillsTaught  int     `json:"skills_taught"`
	SkillsLearned int     `json:"skills_learned"`
	TotalEarnings float64 `json:"total_earnings"`
	TotalSpent    float64 `json:"total_spent"`
	CanTeach      bool    `json:"can_teach"`
}

type (
	Users interface {
		QueryAll(ctx context.Context) ([]user.User, error)
	}
	Skills interface {
		ListAll(ctx context.Context) ([]skill.Skill, error)
	}
	Enrollments interface {
		ListAll(ctx context.Context) ([]enrollment.Enrollment, error)
		ListPayments(ctx context.Context) ([]enrollment.Payment, error)
	}
	Videos interface {
		ListAll(ctx context.Context) ([]video.Video, error)
	}
	Verifications interface {
		ListAll(ctx context.Context) ([]verification.Verification, error)
	}

	Service struct {
		users         Users
		skills        Skills
		enrollments   Enrollments
		videos        Videos
		verifications Verifications
	}
)

func NewService(users Users, skills Skills, enrollments Enrollments, videos Videos, verifications Verifications) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(skills, "skills"),
		vala.IsNotNil(enrollments, "enrollments"),
		vala.IsNotNil(videos, "videos"),
		vala.IsNotNil(verifications, "verifications"),
	).CheckAndPanic()
	return &Service{users: users, skills: skills, enrollments: enrollments, videos: videos, verifications: verifications}
}

func (svc *Service) Platform(ctx context.Context) (PlatformStats, error) {
	var stats PlatformStats

	users, err := svc.users.QueryAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying users")
	}
	for _, u := range users {
		switch {
		case u.IsStudent():
			stats.TotalStudents++
			if u.CanTeach() {
				stats.TotalMentors++
			}
		case u.IsFaculty():
			stats.TotalFaculty++
		}
	}

	skills, err := svc.skills.ListAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying skills")
	}
	stats.TotalSkills = len(skills)
	for _, s := range skills {
		switch s.Status {
		case skill.StatusApproved:
			stats.ApprovedSkills++
		case skill.StatusPending:
			stats.PendingSkills++
		case skill.StatusRejected:
			stats.RejectedSkills++
		}
	}

	enrollments, err := svc.enrollments.ListAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying enrollments")
	}
	stats.TotalEnrollments = len(enrollments)
	for _, e := range enrollments {
		if e.Completed {
			stats.CompletedEnrollments++
		}
	}

	payments, err := svc.enrollments.ListPayments(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying payments")
	}
	for _, p := range payments {
		if p.IsCompleted() {
			stats.TotalRevenue += p.Amount
		}
	}

	videos, err := svc.videos.ListAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying videos")
	}
	stats.TotalVideos = len(videos)

	verifs, err := svc.verifications.ListAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying verifications")
	}
	stats.TotalVerifications = len(verifs)
	return stats, nil
}

func (svc *Service) Profile(ctx context.Context, usr user.User) (ProfileStats, error) {
	stats := ProfileStats{CanTeach: usr.CanTeach()}

	skills, err := svc.skills.ListAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying skills")
	}
	for _, s := range skills {
		if s.MentorID == usr.ID && s.IsApproved() {
			stats.SkillsTaught++
		}
	}

	enrollments, err := svc.enrollments.ListAll(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying enrollments")
	}
	for _, e := range enrollments {
		if e.LearnerID == usr.ID && e.Completed {
			stats.SkillsLearned++
		}
	}

	payments, err := svc.enrollments.ListPayments(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "querying payments")
	}
	for _, p := range payments {
		if !p.IsCompleted() {
			continue
		}
		if p.MentorID == usr.ID {
			stats.TotalEarnings += p.Amount
		}
		if p.LearnerID == usr.ID {
			stats.TotalSpent += p.Amount
		}
	}
	return stats, nil
}
