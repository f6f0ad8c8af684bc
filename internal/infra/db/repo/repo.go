package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// translate maps driver-level failures onto the repo sentinels the
// application layer matches on.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateKey, pgErr.ConstraintName)
	}
	return err
}

type TemplateRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.TemplateRepo = (*TemplateRepo)(nil)

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

func (r *TemplateRepo) GetTemplateByID(ctx context.Context, id string) (*db.Template, error) {
	var template db.Template
	query := "SELECT id, name, filename, file_path, field_mapping, created_at, updated_at FROM templates WHERE id = $1"
	err := r.pool.QueryRow(ctx, query, id).Scan(&template.ID, &template.Name, &template.Filename,
		&template.FilePath, &template.FieldMapping, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *TemplateRepo) ListTemplates(ctx context.Context) ([]db.Template, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, filename, file_path, field_mapping, created_at, updated_at FROM templates ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []db.Template
	for rows.Next() {
		var template db.Template
		if err := rows.Scan(&template.ID, &template.Name, &template.Filename,
			&template.FilePath, &template.FieldMapping, &template.CreatedAt, &template.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func (r *TemplateRepo) InsertTemplate(ctx context.Context, template db.Template) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO templates(id, name, filename, file_path, field_mapping, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)",
		template.ID, template.Name, template.Filename, template.FilePath,
		template.FieldMapping, template.CreatedAt, template.UpdatedAt)
	return translate(err)
}

func (r *TemplateRepo) UpdateFieldMapping(ctx context.Context, id string, mapping json.RawMessage) error {
	tag, err := r.pool.Exec(ctx, "UPDATE templates SET field_mapping = $1, updated_at = $2 WHERE id = $3",
		mapping, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *TemplateRepo) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type CertificateRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.CertificateRepo = (*CertificateRepo)(nil)

func NewCertificateRepo(pool *pgxpool.Pool) *CertificateRepo {
	return &CertificateRepo{pool: pool}
}

const certificateColumns = `id, template_id, first_name, last_name, recipient_email, amount,
	issue_date, expires_at, message, from_name, certificate_code, pdf_path,
	status, idempotency_key, metadata, created_at, sent_at`

func (r *CertificateRepo) scanCertificate(row pgx.Row) (*db.Certificate, error) {
	var certificate db.Certificate
	err := row.Scan(&certificate.ID, &certificate.TemplateID, &certificate.FirstName,
		&certificate.LastName, &certificate.RecipientEmail, &certificate.Amount,
		&certificate.IssueDate, &certificate.ExpiresAt, &certificate.Message,
		&certificate.FromName, &certificate.CertificateCode, &certificate.PDFPath,
		&certificate.Status, &certificate.IdempotencyKey, &certificate.Metadata,
		&certificate.CreatedAt, &certificate.SentAt)
	if err != nil {
		return nil, translate(err)
	}
	return &certificate, nil
}

func (r *CertificateRepo) GetCertificateByID(ctx context.Context, id string) (*db.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE id = $1", certificateColumns)
	return r.scanCertificate(r.pool.QueryRow(ctx, query, id))
}

func (r *CertificateRepo) GetCertificateByIdempotencyKey(ctx context.Context, key string) (*db.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE idempotency_key = $1", certificateColumns)
	return r.scanCertificate(r.pool.QueryRow(ctx, query, key))
}

func (r *CertificateRepo) GetCertificateByCode(ctx context.Context, code string) (*db.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE certificate_code = $1", certificateColumns)
	return r.scanCertificate(r.pool.QueryRow(ctx, query, code))
}

// InsertCertificate relies on the unique constraints over idempotency_key and
// certificate_code as the race authority; concurrent duplicates surface as
// errs.ErrDuplicateKey.
func (r *CertificateRepo) InsertCertificate(ctx context.Context, certificate db.Certificate) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO certificates(%s)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`, certificateColumns),
		certificate.ID, certificate.TemplateID, certificate.FirstName, certificate.LastName,
		certificate.RecipientEmail, certificate.Amount, certificate.IssueDate, certificate.ExpiresAt,
		certificate.Message, certificate.FromName, certificate.CertificateCode, certificate.PDFPath,
		certificate.Status, certificate.IdempotencyKey, certificate.Metadata,
		certificate.CreatedAt, certificate.SentAt)
	return translate(err)
}

func (r *CertificateRepo) MarkCertificateSent(ctx context.Context, id string, sentAt time.Time) error {
	tag, err := r.pool.Exec(ctx, "UPDATE certificates SET status = 'sent', sent_at = $1 WHERE id = $2", sentAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *CertificateRepo) CountCertificatesByTemplate(ctx context.Context, templateID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM certificates WHERE template_id = $1", templateID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

type EmailLogRepo struct {
	pool *pgxpool.Pool
}

var _ interfaces.EmailLogRepo = (*EmailLogRepo)(nil)

func NewEmailLogRepo(pool *pgxpool.Pool) *EmailLogRepo {
	return &EmailLogRepo{pool: pool}
}

func (r *EmailLogRepo) AppendEmailLog(ctx context.Context, entry db.EmailLog) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO email_logs(certificate_id, recipient_email, status, error_message, created_at) VALUES ($1,$2,$3,$4,$5)",
		entry.CertificateID, entry.RecipientEmail, entry.Status, entry.ErrorMessage, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("err inserting email log, %v", err)
	}
	return nil
}
