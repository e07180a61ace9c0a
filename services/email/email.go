package emailsvc

import "github.com/skillx/skillx/core"

// New picks the EmailService matching conf: nil when email notifications are off,
// the silent mock in test mode, SendGrid when an API key is set, the console otherwise.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	switch {
	case !conf.EmailNotifications:
		return nil
	case conf.TestMode:
		return NewConsoleServiceMock(conf, logger)
	case conf.SendgridApiKey != "":
		return NewSendgridService(conf, logger)
	default:
		return NewConsoleService(conf, logger)
	}
}
