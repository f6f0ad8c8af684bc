package query

import (
	"context"
	"fmt"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/consts"
	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
)

// VerifyCertificate is the public validity check. It is a pure read: expiry
// is computed against the clock, the stored status is never touched.
type VerifyCertificate struct {
	certs interfaces.CertificateRepo
	now   func() time.Time
}

func NewVerifyCertificate(certs interfaces.CertificateRepo, now func() time.Time) *VerifyCertificate {
	return &VerifyCertificate{certs: certs, now: now}
}

func (q *VerifyCertificate) Query(ctx context.Context, code string) (*dto.VerificationResponse, error) {
	certificate, err := q.certs.GetCertificateByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	expired := certificate.Expired(q.now())
	valid := certificate.Status == consts.CertificateStatusIssued && !expired

	return &dto.VerificationResponse{
		Valid: valid,
		Certificate: dto.VerifiedCertificate{
			ID:        certificate.ID,
			Holder:    fmt.Sprintf("%s %s", certificate.FirstName, certificate.LastName),
			Amount:    certificate.Amount,
			IssueDate: certificate.IssueDate.Format("2006-01-02"),
			ExpiresAt: certificate.ExpiresAt.Format("2006-01-02"),
			Status:    string(certificate.Status),
			Expired:   expired,
		},
	}, nil
}
