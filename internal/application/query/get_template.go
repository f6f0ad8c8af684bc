package query

import (
	"context"

	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
)

type GetTemplate struct {
	templates interfaces.TemplateRepo
}

func NewGetTemplate(templates interfaces.TemplateRepo) *GetTemplate {
	return &GetTemplate{templates: templates}
}

func (q *GetTemplate) Query(ctx context.Context, templateID string) (*dto.TemplateResponse, error) {
	template, err := q.templates.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return &dto.TemplateResponse{
		ID:           template.ID,
		Name:         template.Name,
		Filename:     template.Filename,
		FieldMapping: template.FieldMapping,
		CreatedAt:    template.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    template.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

type ListTemplates struct {
	templates interfaces.TemplateRepo
}

func NewListTemplates(templates interfaces.TemplateRepo) *ListTemplates {
	return &ListTemplates{templates: templates}
}

func (q *ListTemplates) Query(ctx context.Context) (*dto.ListTemplatesResponse, error) {
	templates, err := q.templates.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]dto.TemplateInfo, 0, len(templates))
	for _, template := range templates {
		infos = append(infos, dto.TemplateInfo{
			ID:        template.ID,
			Name:      template.Name,
			Filename:  template.Filename,
			CreatedAt: template.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return &dto.ListTemplatesResponse{Templates: infos, Count: len(infos)}, nil
}
