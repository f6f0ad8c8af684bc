package db

import (
	"encoding/json"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/consts"
	"github.com/shopspring/decimal"
)

type Template struct {
	ID           string          `db:"id"`
	Name         string          `db:"name"`
	Filename     string          `db:"filename"`
	FilePath     string          `db:"file_path"`
	FieldMapping json.RawMessage `db:"field_mapping"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

type Certificate struct {
	ID              string                   `db:"id"`
	TemplateID      string                   `db:"template_id"`
	FirstName       string                   `db:"first_name"`
	LastName        string                   `db:"last_name"`
	RecipientEmail  string                   `db:"recipient_email"`
	Amount          decimal.Decimal          `db:"amount"`
	IssueDate       time.Time                `db:"issue_date"`
	ExpiresAt       time.Time                `db:"expires_at"`
	Message         string                   `db:"message"`
	FromName        string                   `db:"from_name"`
	CertificateCode string                   `db:"certificate_code"`
	PDFPath         string                   `db:"pdf_path"`
	Status          consts.CertificateStatus `db:"status"`
	IdempotencyKey  string                   `db:"idempotency_key"`
	Metadata        json.RawMessage          `db:"metadata"`
	CreatedAt       time.Time                `db:"created_at"`
	SentAt          *time.Time               `db:"sent_at"`
}

// Expired reports whether the certificate's expiry date has passed relative
// to now. Expiry is computed at read time, never written back to status.
func (c Certificate) Expired(now time.Time) bool {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiry := time.Date(c.ExpiresAt.Year(), c.ExpiresAt.Month(), c.ExpiresAt.Day(), 0, 0, 0, 0, time.UTC)
	return nowDate.After(expiry)
}

type EmailLog struct {
	ID             int64               `db:"id"`
	CertificateID  string              `db:"certificate_id"`
	RecipientEmail string              `db:"recipient_email"`
	Status         consts.EmailOutcome `db:"status"`
	ErrorMessage   string              `db:"error_message"`
	CreatedAt      time.Time           `db:"created_at"`
}
