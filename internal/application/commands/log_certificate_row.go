package commands

import (
	"context"

	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/infra/sheets"
)

// LogCertificateRow appends one row per issued certificate to the external
// log sheet. Appends are not idempotent, a manual replay duplicates the row.
type LogCertificateRow struct {
	cfg   *config.AppConfig
	sheet interfaces.RowAppender
}

func NewLogCertificateRow(cfg *config.AppConfig, sheet interfaces.RowAppender) *LogCertificateRow {
	return &LogCertificateRow{cfg: cfg, sheet: sheet}
}

func (c *LogCertificateRow) Name() string { return "spreadsheet" }

func (c *LogCertificateRow) Dispatch(ctx context.Context, certificate db.Certificate) error {
	if err := c.sheet.EnsureHeaders(ctx); err != nil {
		return errs.DispatchError{Channel: c.Name(), Err: err}
	}
	row := sheets.BuildRow(certificate, c.cfg.VerificationURL(certificate.CertificateCode))
	if err := c.sheet.AppendRow(ctx, row); err != nil {
		return errs.DispatchError{Channel: c.Name(), Err: err}
	}
	return nil
}
