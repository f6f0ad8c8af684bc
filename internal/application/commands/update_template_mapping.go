package commands

import (
	"context"
	"encoding/json"

	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/render"
)

// UpdateTemplateMapping replaces a template's stored field mapping.
type UpdateTemplateMapping struct {
	templates interfaces.TemplateRepo
}

func NewUpdateTemplateMapping(templates interfaces.TemplateRepo) *UpdateTemplateMapping {
	return &UpdateTemplateMapping{templates: templates}
}

func (c *UpdateTemplateMapping) Execute(ctx context.Context, templateID string, mapping json.RawMessage) error {
	if len(mapping) == 0 {
		return errs.ValidationError{Details: []string{"field_mapping is required"}}
	}
	if _, err := render.ParseMapping(mapping); err != nil {
		return errs.ValidationError{Details: []string{err.Error()}}
	}
	if _, err := c.templates.GetTemplateByID(ctx, templateID); err != nil {
		return err
	}
	return c.templates.UpdateFieldMapping(ctx, templateID, mapping)
}
