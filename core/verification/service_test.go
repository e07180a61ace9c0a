package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/tests"
)

var ctxBg = context.Background()

func TestService_Schedule(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")
	approved := testutil.CreateSkill(t, svcs, mentor, "Go", "Programming", 40, &prof)
	pending := testutil.CreateSkill(t, svcs, mentor, "Rust", "Programming", 40, nil)

	paris := time.FixedZone("CET", 3600)
	date := time.Date(2026, time.March, 4, 16, 30, 0, 0, paris)

	tests := []struct {
		name    string
		skillID string
		date    time.Time
		wantErr error
	}{
		{name: "pending skill", skillID: pending.ID, date: date, wantErr: skill.ErrNotApproved},
		{name: "unknown skill", skillID: "nope", date: date, wantErr: skill.ErrNotFound},
		{name: "no date", skillID: approved.ID, wantErr: verification.ErrDateRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svcs.Verifications.Schedule(ctxBg, prof, tt.skillID, tt.date)
			assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
		})
	}

	_, err := svcs.Verifications.Schedule(ctxBg, mentor, approved.ID, date)
	assert.Equal(t, verification.ErrNotFaculty, err)

	v, err := svcs.Verifications.Schedule(ctxBg, prof, approved.ID, date)
	require.NoError(t, err)
	assert.Equal(t, prof.ID, v.FacultyID)
	assert.Equal(t, "Prof", v.FacultyName)
	assert.Equal(t, time.UTC, v.ScheduledDate.Location())
	assert.True(t, v.ScheduledDate.Equal(date))
	assert.False(t, v.Completed)

	notifs, err := svcs.Notifications.ListForUser(ctxBg, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, `Verification session scheduled for "Go" on Mar 4, 2026 3:30 PM`, notifs[0].Message)
	assert.Contains(t, svcs.Events.Types(), core.EventVerificationScheduled)

	// overlapping sessions are allowed
	_, err = svcs.Verifications.Schedule(ctxBg, prof, approved.ID, date)
	assert.NoError(t, err)
}

func TestService_Complete(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")
	s := testutil.CreateSkill(t, svcs, mentor, "Go", "Programming", 40, &prof)
	v, err := svcs.Verifications.Schedule(ctxBg, prof, s.ID, time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	_, err = svcs.Verifications.Complete(ctxBg, mentor, v.ID, "ok")
	assert.Equal(t, verification.ErrNotFaculty, err)
	_, err = svcs.Verifications.Complete(ctxBg, prof, "nope", "ok")
	assert.Equal(t, verification.ErrNotFound, errors.Cause(err))

	v, err = svcs.Verifications.Complete(ctxBg, prof, v.ID, " Solid material ")
	require.NoError(t, err)
	assert.True(t, v.Completed)
	assert.Equal(t, "Solid material", v.Remarks.String)

	// completing again keeps the first remarks
	v, err = svcs.Verifications.Complete(ctxBg, prof, v.ID, "Other remarks")
	require.NoError(t, err)
	assert.Equal(t, "Solid material", v.Remarks.String)

	var completed int
	for _, typ := range svcs.Events.Types() {
		if typ == core.EventVerificationCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestService_ListForFaculty(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	dean := testutil.CreateFaculty(t, svcs.Users, "Dean", "dean@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")
	s := testutil.CreateSkill(t, svcs, mentor, "Go", "Programming", 40, &prof)
	date := time.Now().Add(24 * time.Hour)

	mine, err := svcs.Verifications.Schedule(ctxBg, prof, s.ID, date)
	require.NoError(t, err)
	_, err = svcs.Verifications.Schedule(ctxBg, dean, s.ID, date)
	require.NoError(t, err)

	views, err := svcs.Verifications.ListForFaculty(ctxBg, prof.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, mine.ID, views[0].ID)
	assert.Equal(t, "Go", views[0].SkillTitle)
	assert.Equal(t, "Mia", views[0].MentorName)

	// skills removed from the store show a placeholder title
	require.NoError(t, svcs.Store.Delete(ctxBg, core.CollSkills, s.ID))
	views, err = svcs.Verifications.ListForFaculty(ctxBg, prof.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, verification.UnknownSkill, views[0].SkillTitle)
	assert.Empty(t, views[0].MentorName)

	all, err := svcs.Verifications.ListAll(ctxBg)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
