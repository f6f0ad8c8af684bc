// Package testinfra provides in-memory fakes for the application's storage
// and side-effect contracts. The certificate fake enforces the same
// uniqueness rules as the database schema so the issuance pipeline can be
// exercised without Postgres.
package testinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/consts"
	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/db"
)

type MemoryTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]db.Template
}

var _ interfaces.TemplateRepo = (*MemoryTemplateRepo)(nil)

func NewMemoryTemplateRepo(templates ...db.Template) *MemoryTemplateRepo {
	r := &MemoryTemplateRepo{templates: make(map[string]db.Template)}
	for _, template := range templates {
		r.templates[template.ID] = template
	}
	return r
}

func (r *MemoryTemplateRepo) GetTemplateByID(_ context.Context, id string) (*db.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &template, nil
}

func (r *MemoryTemplateRepo) ListTemplates(_ context.Context) ([]db.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	templates := make([]db.Template, 0, len(r.templates))
	for _, template := range r.templates {
		templates = append(templates, template)
	}
	return templates, nil
}

func (r *MemoryTemplateRepo) InsertTemplate(_ context.Context, template db.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[template.ID]; ok {
		return fmt.Errorf("template %v, %w", template.ID, errs.ErrDuplicateKey)
	}
	r.templates[template.ID] = template
	return nil
}

func (r *MemoryTemplateRepo) UpdateFieldMapping(_ context.Context, id string, mapping json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok {
		return errs.ErrNotFound
	}
	template.FieldMapping = mapping
	template.UpdatedAt = time.Now().UTC()
	r.templates[id] = template
	return nil
}

func (r *MemoryTemplateRepo) DeleteTemplate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

// MemoryCertificateRepo mirrors the schema's UNIQUE constraints on
// idempotency_key and certificate_code, including under concurrent inserts.
type MemoryCertificateRepo struct {
	mu    sync.Mutex
	certs []db.Certificate
}

var _ interfaces.CertificateRepo = (*MemoryCertificateRepo)(nil)

func NewMemoryCertificateRepo() *MemoryCertificateRepo {
	return &MemoryCertificateRepo{}
}

func (r *MemoryCertificateRepo) GetCertificateByID(_ context.Context, id string) (*db.Certificate, error) {
	return r.find(func(c db.Certificate) bool { return c.ID == id })
}

func (r *MemoryCertificateRepo) GetCertificateByIdempotencyKey(_ context.Context, key string) (*db.Certificate, error) {
	return r.find(func(c db.Certificate) bool { return c.IdempotencyKey == key })
}

func (r *MemoryCertificateRepo) GetCertificateByCode(_ context.Context, code string) (*db.Certificate, error) {
	return r.find(func(c db.Certificate) bool { return c.CertificateCode == code })
}

func (r *MemoryCertificateRepo) find(match func(db.Certificate) bool) (*db.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.certs {
		if match(r.certs[i]) {
			certificate := r.certs[i]
			return &certificate, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *MemoryCertificateRepo) InsertCertificate(_ context.Context, certificate db.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.certs {
		if existing.IdempotencyKey == certificate.IdempotencyKey ||
			existing.CertificateCode == certificate.CertificateCode {
			return fmt.Errorf("certificate %v, %w", certificate.ID, errs.ErrDuplicateKey)
		}
	}
	r.certs = append(r.certs, certificate)
	return nil
}

func (r *MemoryCertificateRepo) MarkCertificateSent(_ context.Context, id string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.certs {
		if r.certs[i].ID == id {
			r.certs[i].Status = consts.CertificateStatusSent
			r.certs[i].SentAt = &sentAt
			return nil
		}
	}
	return errs.ErrNotFound
}

func (r *MemoryCertificateRepo) CountCertificatesByTemplate(_ context.Context, templateID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, certificate := range r.certs {
		if certificate.TemplateID == templateID {
			count++
		}
	}
	return count, nil
}

// All returns a snapshot of the stored certificates for assertions.
func (r *MemoryCertificateRepo) All() []db.Certificate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]db.Certificate(nil), r.certs...)
}

// Put stores a certificate bypassing uniqueness checks, for test setup.
func (r *MemoryCertificateRepo) Put(certificate db.Certificate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.certs = append(r.certs, certificate)
}

type MemoryEmailLogRepo struct {
	mu      sync.Mutex
	Entries []db.EmailLog
}

var _ interfaces.EmailLogRepo = (*MemoryEmailLogRepo)(nil)

func NewMemoryEmailLogRepo() *MemoryEmailLogRepo {
	return &MemoryEmailLogRepo{}
}

func (r *MemoryEmailLogRepo) AppendEmailLog(_ context.Context, entry db.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, entry)
	return nil
}

// CaptureQueue records enqueued certificates instead of dispatching them.
type CaptureQueue struct {
	mu    sync.Mutex
	Certs []db.Certificate
}

var _ interfaces.DispatchQueue = (*CaptureQueue)(nil)

func (q *CaptureQueue) Enqueue(certificate db.Certificate) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Certs = append(q.Certs, certificate)
}

func (q *CaptureQueue) Enqueued() []db.Certificate {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]db.Certificate(nil), q.Certs...)
}
