package notification

import (
	"context"
	"net/mail"
	"sort"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		FilterNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error)
		UpdateNotification(ctx context.Context, id string, fn func(*Notification) error) (Notification, error)
		DeleteNotification(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService // optional
		events  core.EventPublisher
		logger  core.Logger
	}
)

// NewService returns the notification Service.
// Notifications are mirrored by email only when mailSvc is not nil.
func NewService(repo Repository, mailSvc core.EmailService, events core.EventPublisher, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(events, "events"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, mailSvc: mailSvc, events: events, logger: logger}
}

// Notify appends one notification to the recipient's inbox.
func (svc *Service) Notify(ctx context.Context, recipient user.User, message, typ string) (Notification, error) {
	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    recipient.ID,
		Message:   message,
		Type:      typ,
		CreatedAt: core.Now(),
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	svc.mirror(recipient, n)
	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventNotificationCreated, n.UserID, n))
	return n, nil
}

// NotifyMany fans the same message out to every recipient.
func (svc *Service) NotifyMany(ctx context.Context, recipients []user.User, message, typ string) ([]Notification, error) {
	notifs := make([]Notification, 0, len(recipients))
	for _, r := range recipients {
		n, err := svc.Notify(ctx, r, message, typ)
		if err != nil {
			return notifs, err
		}
		notifs = append(notifs, n)
	}
	return notifs, nil
}

func (svc *Service) mirror(recipient user.User, n Notification) {
	if svc.mailSvc == nil || recipient.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
		Subject:      emailSubjects[n.Type],
		TemplateName: "notification",
		TemplateData: emailData{RecipientName: recipient.Name, Message: n.Message, Type: n.Type},
	})
}

// ListForUser returns the user's notifications, newest first.
func (svc *Service) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	notifs, err := svc.repo.FilterNotifications(ctx, QueryFilter{UserID: userID})
	if err != nil {
		return nil, errors.Wrap(err, "filtering notifications")
	}
	// newest insertions first on equal timestamps
	for i, j := 0, len(notifs)-1; i < j; i, j = i+1, j-1 {
		notifs[i], notifs[j] = notifs[j], notifs[i]
	}
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (svc *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	notifs, err := svc.repo.FilterNotifications(ctx, QueryFilter{UserID: userID, Unread: true})
	if err != nil {
		return 0, errors.Wrap(err, "filtering notifications")
	}
	return len(notifs), nil
}

func (svc *Service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	return svc.repo.UpdateNotification(ctx, id, func(n *Notification) error {
		if n.UserID != userID {
			return ErrNotFound
		}
		n.Read = true
		return nil
	})
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (svc *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := svc.repo.FilterNotifications(ctx, QueryFilter{UserID: userID, Unread: true})
	if err != nil {
		return 0, errors.Wrap(err, "filtering notifications")
	}
	for _, n := range unread {
		if _, err = svc.MarkRead(ctx, userID, n.ID); err != nil && errors.Cause(err) != ErrNotFound {
			return 0, errors.Wrap(err, "marking notification as read")
		}
	}
	return len(unread), nil
}

func (svc *Service) Delete(ctx context.Context, userID, id string) error {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotFound
	}
	return svc.repo.DeleteNotification(ctx, id)
}
