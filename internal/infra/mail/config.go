package mail

import (
	"os"
	"strconv"

	"github.com/giftflow/certgen-backend/pkg/env"
)

type MailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	FromName string
}

func NewMailConfig() *MailConfig {
	port, err := strconv.Atoi(env.GetEnv("MAIL_PORT", "587"))
	if err != nil {
		port = 587
	}
	return &MailConfig{
		SMTPHost: os.Getenv("MAIL_HOST"),
		SMTPPort: port,
		Username: os.Getenv("MAIL_USERNAME"),
		Password: os.Getenv("MAIL_PASSWORD"),
		FromName: env.GetEnv("MAIL_FROM_NAME", "Certificate Generator"),
	}
}

func (c *MailConfig) Configured() bool {
	return c.SMTPHost != "" && c.Username != ""
}
