package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/render"
)

type TemplateRepo interface {
	GetTemplateByID(ctx context.Context, id string) (*db.Template, error)
	ListTemplates(ctx context.Context) ([]db.Template, error)
	InsertTemplate(ctx context.Context, template db.Template) error
	UpdateFieldMapping(ctx context.Context, id string, mapping json.RawMessage) error
	DeleteTemplate(ctx context.Context, id string) error
}

// CertificateRepo is the fact store for issued certificates. Insert must be
// rejected with errs.ErrDuplicateKey when idempotency_key or certificate_code
// already exist; lookups return errs.ErrNotFound on a miss.
type CertificateRepo interface {
	GetCertificateByID(ctx context.Context, id string) (*db.Certificate, error)
	GetCertificateByIdempotencyKey(ctx context.Context, key string) (*db.Certificate, error)
	GetCertificateByCode(ctx context.Context, code string) (*db.Certificate, error)
	InsertCertificate(ctx context.Context, certificate db.Certificate) error
	MarkCertificateSent(ctx context.Context, id string, sentAt time.Time) error
	CountCertificatesByTemplate(ctx context.Context, templateID string) (int, error)
}

// EmailLogRepo is an append-only audit trail, entries are never updated.
type EmailLogRepo interface {
	AppendEmailLog(ctx context.Context, entry db.EmailLog) error
}

type Renderer interface {
	Render(template *db.Template, data render.CertificateData) (string, error)
}

// Dispatcher is one side-effect channel triggered after issuance. Failures
// stay inside the channel's own boundary and never fail the parent request.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, certificate db.Certificate) error
}

// DispatchQueue accepts certificates for background fan-out without blocking
// the caller.
type DispatchQueue interface {
	Enqueue(certificate db.Certificate)
}
