package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/consts"
	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/infra/mail"
)

// SendCertificateEmail delivers the certificate PDF to the recipient. On
// success the certificate transitions issued->sent; on failure the status
// stays issued and only the audit trail records the outcome.
type SendCertificateEmail struct {
	cfg        *config.AppConfig
	server     interfaces.MailSender
	senderName string
	certs      interfaces.CertificateRepo
	logs       interfaces.EmailLogRepo
}

func NewSendCertificateEmail(
	cfg *config.AppConfig,
	server interfaces.MailSender,
	senderName string,
	certs interfaces.CertificateRepo,
	logs interfaces.EmailLogRepo,
) *SendCertificateEmail {
	return &SendCertificateEmail{cfg: cfg, server: server, senderName: senderName, certs: certs, logs: logs}
}

func (c *SendCertificateEmail) Name() string { return "email" }

func (c *SendCertificateEmail) Dispatch(ctx context.Context, certificate db.Certificate) error {
	if _, err := os.Stat(certificate.PDFPath); err != nil {
		err = fmt.Errorf("certificate pdf missing: %w", err)
		c.appendLog(ctx, certificate, consts.EmailOutcomeFailed, err.Error())
		return errs.DispatchError{Channel: c.Name(), Err: err}
	}

	subject, text, html, err := mail.ComposeCertificateMail(
		certificate, c.cfg.VerificationURL(certificate.CertificateCode), c.senderName)
	if err != nil {
		c.appendLog(ctx, certificate, consts.EmailOutcomeFailed, err.Error())
		return errs.DispatchError{Channel: c.Name(), Err: err}
	}

	out := mail.OutgoingMail{
		To:             certificate.RecipientEmail,
		Subject:        subject,
		Text:           text,
		HTML:           html,
		AttachmentPath: certificate.PDFPath,
		AttachmentName: fmt.Sprintf("certificate-%s.pdf", certificate.CertificateCode),
	}
	if err := c.server.Send(ctx, out); err != nil {
		c.appendLog(ctx, certificate, consts.EmailOutcomeFailed, err.Error())
		return errs.DispatchError{Channel: c.Name(), Err: err}
	}

	c.appendLog(ctx, certificate, consts.EmailOutcomeSent, "")
	if err := c.certs.MarkCertificateSent(ctx, certificate.ID, time.Now()); err != nil {
		slog.Error("can't mark certificate as sent", "certificate", certificate.ID, "err", err)
	}
	return nil
}

func (c *SendCertificateEmail) appendLog(ctx context.Context, certificate db.Certificate, outcome consts.EmailOutcome, errMessage string) {
	entry := db.EmailLog{
		CertificateID:  certificate.ID,
		RecipientEmail: certificate.RecipientEmail,
		Status:         outcome,
		ErrorMessage:   errMessage,
		CreatedAt:      time.Now(),
	}
	if err := c.logs.AppendEmailLog(ctx, entry); err != nil {
		slog.Error("can't append email log", "certificate", certificate.ID, "err", err)
	}
}
