package storerepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/notification"
)

type notificationRepository struct {
	notifications collection[notification.Notification]
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(store core.Store) notification.Repository {
	return &notificationRepository{
		notifications: collection[notification.Notification]{
			store:    store,
			name:     core.CollNotifications,
			notFound: notification.ErrNotFound,
		},
	}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = newID()
	if err := repo.notifications.insert(ctx, n.ID, n); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	return repo.notifications.get(ctx, id)
}

func (repo *notificationRepository) FilterNotifications(
	ctx context.Context,
	filter notification.QueryFilter,
) ([]notification.Notification, error) {
	return repo.notifications.filter(ctx, filter.Match)
}

func (repo *notificationRepository) UpdateNotification(
	ctx context.Context,
	id string,
	fn func(*notification.Notification) error,
) (notification.Notification, error) {
	return repo.notifications.update(ctx, id, fn)
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	return repo.notifications.delete(ctx, id)
}
