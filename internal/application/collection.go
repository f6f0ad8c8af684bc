package application

import (
	"github.com/giftflow/certgen-backend/internal/application/commands"
	"github.com/giftflow/certgen-backend/internal/application/query"
)

type Handlers struct {
	IssueCertificate      *commands.IssueCertificate
	CreateTemplate        *commands.CreateTemplate
	UpdateTemplateMapping *commands.UpdateTemplateMapping
	DeleteTemplate        *commands.DeleteTemplate
	GetCertificate        *query.GetCertificate
	VerifyCertificate     *query.VerifyCertificate
	GetTemplate           *query.GetTemplate
	ListTemplates         *query.ListTemplates
}
