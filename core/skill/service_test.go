package skill_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/tests"
)

var ctxBg = context.Background()

func TestService_Submit(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	dean := testutil.CreateFaculty(t, svcs.Users, "Dean", "dean@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")
	learner := testutil.CreateLearner(t, svcs.Users, "Leo", "leo@skillx.io")

	ns := skill.NewSkill{Title: "Go", Description: "Go from scratch", Category: "Programming", Price: 40}
	for _, usr := range []struct {
		name string
		id   string
	}{{"faculty", prof.ID}, {"learner", learner.ID}} {
		t.Run(usr.name+" cannot submit", func(t *testing.T) {
			u, err := svcs.Users.GetByID(ctxBg, usr.id)
			require.NoError(t, err)
			_, err = svcs.Skills.Submit(ctxBg, u, ns)
			assert.Equal(t, skill.ErrNotMentor, err)
		})
	}

	s, err := svcs.Skills.Submit(ctxBg, mentor, ns)
	require.NoError(t, err)
	assert.Equal(t, skill.StatusPending, s.Status)
	assert.Equal(t, "Mia", s.MentorName)
	assert.False(t, s.DecidedBy.Valid)
	assert.Equal(t, []string{
		core.EventNotificationCreated, core.EventNotificationCreated, core.EventNotificationCreated, core.EventSkillSubmitted,
	}, svcs.Events.Types())

	for _, f := range []string{prof.ID, dean.ID} {
		notifs, err := svcs.Notifications.ListForUser(ctxBg, f)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, `New skill "Go" by Mia pending verification`, notifs[0].Message)
	}

	pending, err := svcs.Skills.ListPending(ctxBg)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	approved, err := svcs.Skills.ListApproved(ctxBg, skill.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, approved)
	_, err = svcs.Skills.GetApproved(ctxBg, s.ID)
	assert.Equal(t, skill.ErrNotApproved, err)
}

func TestService_messagesKeepTitle(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")

	title := `The "C:\" drive`
	s, err := svcs.Skills.Submit(ctxBg, mentor, skill.NewSkill{Title: title, Description: "Windows basics", Category: "IT", Price: 10})
	require.NoError(t, err)
	_, err = svcs.Skills.Approve(ctxBg, prof, s.ID)
	require.NoError(t, err)

	tests := []struct {
		name      string
		recipient string
		want      string
	}{
		{name: "faculty", recipient: prof.ID, want: `New skill "The "C:\" drive" by Mia pending verification`},
		{name: "mentor", recipient: mentor.ID, want: `Your skill "The "C:\" drive" has been approved by Prof!`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifs, err := svcs.Notifications.ListForUser(ctxBg, tt.recipient)
			require.NoError(t, err)
			require.NotEmpty(t, notifs)
			assert.Equal(t, tt.want, notifs[0].Message)
		})
	}
}

func TestService_ApproveReject(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")
	s := testutil.CreateSkill(t, svcs, mentor, "Go", "Programming", 40, nil)

	_, err := svcs.Skills.Approve(ctxBg, mentor, s.ID)
	assert.Equal(t, skill.ErrNotFaculty, err)
	_, err = svcs.Skills.Reject(ctxBg, mentor, s.ID, "nope")
	assert.Equal(t, skill.ErrNotFaculty, err)
	_, err = svcs.Skills.Approve(ctxBg, prof, "nope")
	assert.Equal(t, skill.ErrNotFound, errors.Cause(err))

	before, err := svcs.Notifications.ListForUser(ctxBg, mentor.ID)
	require.NoError(t, err)
	_, err = svcs.Skills.Reject(ctxBg, prof, s.ID, "  ")
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "reason", vErr.Fields[0].Field)
	got, err := svcs.Skills.Get(ctxBg, s.ID)
	require.NoError(t, err)
	assert.Equal(t, skill.StatusPending, got.Status)
	assert.False(t, got.RejectionReason.Valid)
	after, err := svcs.Notifications.ListForUser(ctxBg, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NotContains(t, svcs.Events.Types(), core.EventSkillRejected)

	s, err = svcs.Skills.Reject(ctxBg, prof, s.ID, " Too short ")
	require.NoError(t, err)
	assert.Equal(t, skill.StatusRejected, s.Status)
	assert.Equal(t, "Too short", s.RejectionReason.String)
	assert.Equal(t, "Prof", s.DecidedBy.String)

	notifs, err := svcs.Notifications.ListForUser(ctxBg, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, `Your skill "Go" was not approved. Reason: Too short`, notifs[0].Message)
	assert.Equal(t, notification.TypeWarning, notifs[0].Type)

	// a rejected skill may still be approved
	s, err = svcs.Skills.Approve(ctxBg, prof, s.ID)
	require.NoError(t, err)
	assert.True(t, s.IsApproved())
	_, err = svcs.Skills.GetApproved(ctxBg, s.ID)
	assert.NoError(t, err)

	notifs, err = svcs.Notifications.ListForUser(ctxBg, mentor.ID)
	require.NoError(t, err)
	assert.Equal(t, `Your skill "Go" has been approved by Prof!`, notifs[0].Message)
	assert.Equal(t, notification.TypeSuccess, notifs[0].Type)
}

func TestService_ListApproved(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	prof := testutil.CreateFaculty(t, svcs.Users, "Prof", "prof@skillx.io")
	mentor := testutil.CreateMentor(t, svcs.Users, "Mia", "mia@skillx.io")
	goSkill := testutil.CreateSkill(t, svcs, mentor, "Go", "Programming", 40, &prof)
	guitar := testutil.CreateSkill(t, svcs, mentor, "Guitar", "Music", 20, &prof)
	testutil.CreateSkill(t, svcs, mentor, "Golf", "Sports", 20, nil)

	tests := []struct {
		name   string
		filter skill.QueryFilter
		want   []skill.Skill
	}{
		{name: "all", want: []skill.Skill{goSkill, guitar}},
		{name: "all category", filter: skill.QueryFilter{Category: skill.CategoryAll}, want: []skill.Skill{goSkill, guitar}},
		{name: "category", filter: skill.QueryFilter{Category: "Music"}, want: []skill.Skill{guitar}},
		{name: "search title ignoring case", filter: skill.QueryFilter{Search: "GUI"}, want: []skill.Skill{guitar}},
		{name: "search description", filter: skill.QueryFilter{Search: "from scratch"}, want: []skill.Skill{goSkill, guitar}},
		{name: "search and category", filter: skill.QueryFilter{Search: "go", Category: "Music"}},
		{name: "pending skills are hidden", filter: skill.QueryFilter{Search: "golf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svcs.Skills.ListApproved(ctxBg, tt.filter)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}

	categories, err := svcs.Skills.Categories(ctxBg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Music", "Programming"}, categories)

	mine, err := svcs.Skills.ListByMentor(ctxBg, mentor.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
