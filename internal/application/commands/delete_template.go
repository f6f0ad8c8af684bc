package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
)

// DeleteTemplate removes a template and its source file. Deletion is blocked
// while any certificate references the template.
type DeleteTemplate struct {
	templates interfaces.TemplateRepo
	certs     interfaces.CertificateRepo
}

func NewDeleteTemplate(templates interfaces.TemplateRepo, certs interfaces.CertificateRepo) *DeleteTemplate {
	return &DeleteTemplate{templates: templates, certs: certs}
}

func (c *DeleteTemplate) Execute(ctx context.Context, templateID string) error {
	template, err := c.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return err
	}
	count, err := c.certs.CountCertificatesByTemplate(ctx, templateID)
	if err != nil {
		return errs.PersistenceError{Err: err}
	}
	if count > 0 {
		return errs.TemplateInUseError{TemplateID: templateID, Certificates: count}
	}
	if err := c.templates.DeleteTemplate(ctx, templateID); err != nil {
		return errs.PersistenceError{Err: err}
	}
	if err := os.Remove(template.FilePath); err != nil && !os.IsNotExist(err) {
		slog.Error("can't remove template file", "path", template.FilePath, "err", err)
	}
	return nil
}
