package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/user"
	emailsvc "github.com/skillx/skillx/services/email"
	"github.com/skillx/skillx/tests"
)

var ctxBg = context.Background()

func TestService_Notify(t *testing.T) {
	emailsvc.ResetSentMessages()
	svcs := testutil.NewServices(t, emailsvc.NewConsoleServiceMock(core.NewTestConfig(), new(testutil.NopLogger)), nil)
	leo := testutil.CreateLearner(t, svcs.Users, "Leo", "leo@skillx.io")
	lia := testutil.CreateLearner(t, svcs.Users, "Lia", "lia@skillx.io")

	base := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, base)
	first, err := svcs.Notifications.Notify(ctxBg, leo, "first", notification.TypeInfo)
	require.NoError(t, err)
	assert.False(t, first.Read)
	assert.Equal(t, base, first.CreatedAt)

	testutil.FreezeTime(t, base.Add(time.Minute))
	second, err := svcs.Notifications.Notify(ctxBg, leo, "second", notification.TypeSuccess)
	require.NoError(t, err)
	third, err := svcs.Notifications.Notify(ctxBg, leo, "third", notification.TypeWarning)
	require.NoError(t, err)

	notifs, err := svcs.Notifications.ListForUser(ctxBg, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, []notification.Notification{third, second, first}, notifs)

	many, err := svcs.Notifications.NotifyMany(ctxBg, []user.User{leo, lia}, "all hands", notification.TypeInfo)
	require.NoError(t, err)
	assert.Len(t, many, 2)

	outbox := emailsvc.Outbox()
	require.Len(t, outbox, 5)
	assert.Equal(t, "leo@skillx.io", outbox[0].To[0].Address)
	assert.Equal(t, "New notification", outbox[0].Subject)
	assert.Contains(t, outbox[0].TextContent, "first")
	assert.Equal(t, "Good news", outbox[1].Subject)
	assert.Equal(t, "Action needed", outbox[2].Subject)
	assert.Equal(t, "lia@skillx.io", outbox[4].To[0].Address)
}

func TestService_readAndDelete(t *testing.T) {
	svcs := testutil.NewServices(t, nil, nil)
	leo := testutil.CreateLearner(t, svcs.Users, "Leo", "leo@skillx.io")
	lia := testutil.CreateLearner(t, svcs.Users, "Lia", "lia@skillx.io")

	var leoNotifs []notification.Notification
	for _, msg := range []string{"one", "two", "three"} {
		n, err := svcs.Notifications.Notify(ctxBg, leo, msg, notification.TypeInfo)
		require.NoError(t, err)
		leoNotifs = append(leoNotifs, n)
	}
	liaNotif, err := svcs.Notifications.Notify(ctxBg, lia, "hello", notification.TypeInfo)
	require.NoError(t, err)

	count, err := svcs.Notifications.UnreadCount(ctxBg, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svcs.Notifications.MarkRead(ctxBg, leo.ID, liaNotif.ID)
	assert.Equal(t, notification.ErrNotFound, err)
	_, err = svcs.Notifications.MarkRead(ctxBg, leo.ID, "nope")
	assert.Equal(t, notification.ErrNotFound, err)

	n, err := svcs.Notifications.MarkRead(ctxBg, leo.ID, leoNotifs[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)

	count, err = svcs.Notifications.MarkAllRead(ctxBg, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = svcs.Notifications.MarkAllRead(ctxBg, leo.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = svcs.Notifications.UnreadCount(ctxBg, lia.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "other inboxes are untouched")

	assert.Equal(t, notification.ErrNotFound, svcs.Notifications.Delete(ctxBg, leo.ID, liaNotif.ID))
	assert.Equal(t, notification.ErrNotFound, svcs.Notifications.Delete(ctxBg, leo.ID, "nope"))
	require.NoError(t, svcs.Notifications.Delete(ctxBg, leo.ID, leoNotifs[1].ID))

	notifs, err := svcs.Notifications.ListForUser(ctxBg, leo.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	for _, n := range notifs {
		assert.NotEqual(t, leoNotifs[1].ID, n.ID)
	}
}

func TestQueryFilter_Match(t *testing.T) {
	n := notification.Notification{UserID: "u1", Read: true}
	tests := []struct {
		name   string
		filter notification.QueryFilter
		want   bool
	}{
		{name: "empty", want: true},
		{name: "user", filter: notification.QueryFilter{UserID: "u1"}, want: true},
		{name: "other user", filter: notification.QueryFilter{UserID: "u2"}},
		{name: "unread only", filter: notification.QueryFilter{UserID: "u1", Unread: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(n))
		})
	}
}
