package interfaces

import (
	"context"

	"github.com/giftflow/certgen-backend/internal/infra/mail"
)

// MailSender is the email transport contract consumed by the email
// dispatcher.
type MailSender interface {
	Send(ctx context.Context, out mail.OutgoingMail) error
}

// RowAppender is the spreadsheet contract consumed by the log dispatcher.
type RowAppender interface {
	EnsureHeaders(ctx context.Context) error
	AppendRow(ctx context.Context, values []interface{}) error
}
