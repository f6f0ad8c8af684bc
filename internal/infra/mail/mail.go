package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

type OutgoingMail struct {
	To             string
	Subject        string
	Text           string
	HTML           string
	AttachmentPath string
	AttachmentName string
}

type MailServer struct {
	cfg *MailConfig
}

func NewMailServer(cfg *MailConfig) *MailServer {
	return &MailServer{cfg: cfg}
}

func (m *MailServer) Send(ctx context.Context, out OutgoingMail) error {
	if !m.cfg.Configured() {
		return fmt.Errorf("mail transport is not configured")
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.Username); err != nil {
		return fmt.Errorf("invalid sender address, %v", err)
	}
	if err := msg.To(out.To); err != nil {
		return fmt.Errorf("invalid recipient address, %v", err)
	}
	msg.Subject(out.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, out.Text)
	if out.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, out.HTML)
	}
	if out.AttachmentPath != "" {
		msg.AttachFile(out.AttachmentPath, gomail.WithFileName(out.AttachmentName))
	}

	client, err := gomail.NewClient(m.cfg.SMTPHost,
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("can't create mail client, %v", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
