package query

import (
	"context"

	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/config"
)

type GetCertificate struct {
	cfg   *config.AppConfig
	certs interfaces.CertificateRepo
}

func NewGetCertificate(cfg *config.AppConfig, certs interfaces.CertificateRepo) *GetCertificate {
	return &GetCertificate{cfg: cfg, certs: certs}
}

func (q *GetCertificate) Query(ctx context.Context, certificateID string) (*dto.CertificateResponse, error) {
	certificate, err := q.certs.GetCertificateByID(ctx, certificateID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CertificateResponse{
		CertificateID:   certificate.ID,
		TemplateID:      certificate.TemplateID,
		FirstName:       certificate.FirstName,
		LastName:        certificate.LastName,
		RecipientEmail:  certificate.RecipientEmail,
		Amount:          certificate.Amount,
		IssueDate:       certificate.IssueDate.Format("2006-01-02"),
		ExpiresAt:       certificate.ExpiresAt.Format("2006-01-02"),
		Message:         certificate.Message,
		FromName:        certificate.FromName,
		CertificateCode: certificate.CertificateCode,
		Status:          string(certificate.Status),
		PDFURL:          q.cfg.PDFURL(certificate.ID),
		VerificationURL: q.cfg.VerificationURL(certificate.CertificateCode),
		CreatedAt:       certificate.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if certificate.SentAt != nil {
		resp.SentAt = certificate.SentAt.Format("2006-01-02 15:04:05")
	}
	return resp, nil
}
