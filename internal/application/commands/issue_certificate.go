package commands

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/consts"
	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// IssueCertificate runs the issuance pipeline: validate, idempotency check,
// template lookup, code generation, render, persist, background dispatch.
type IssueCertificate struct {
	cfg       *config.AppConfig
	templates interfaces.TemplateRepo
	certs     interfaces.CertificateRepo
	renderer  interfaces.Renderer
	dispatch  interfaces.DispatchQueue
	validate  *validator.Validate
}

func NewIssueCertificate(
	cfg *config.AppConfig,
	templates interfaces.TemplateRepo,
	certs interfaces.CertificateRepo,
	renderer interfaces.Renderer,
	dispatch interfaces.DispatchQueue,
) *IssueCertificate {
	return &IssueCertificate{
		cfg:       cfg,
		templates: templates,
		certs:     certs,
		renderer:  renderer,
		dispatch:  dispatch,
		validate:  newRequestValidator(),
	}
}

// Execute returns the response plus whether a new certificate was created.
// A replayed idempotency key returns the original record with created=false
// and performs no render, persist or dispatch.
func (c *IssueCertificate) Execute(ctx context.Context, req dto.CreateCertificateRequest) (*dto.CreateCertificateResponse, bool, error) {
	if details := c.validateRequest(req); len(details) > 0 {
		return nil, false, errs.ValidationError{Details: details}
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	existing, err := c.certs.GetCertificateByIdempotencyKey(ctx, idempotencyKey)
	if err == nil {
		return c.response(existing), false, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, false, errs.PersistenceError{Err: err}
	}

	template, err := c.templates.GetTemplateByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, false, errs.TemplateNotFoundError{TemplateID: req.TemplateID}
		}
		return nil, false, errs.PersistenceError{Err: err}
	}

	certificateID := uuid.NewString()
	code := newCertificateCode()
	issueDate, expiresAt := c.resolveDates(req)

	pdfPath, err := c.renderer.Render(template, render.CertificateData{
		CertificateID:   certificateID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Amount:          req.Amount,
		IssueDate:       issueDate,
		ExpiresAt:       expiresAt,
		Message:         req.Message,
		FromName:        req.FromName,
		CertificateCode: code,
	})
	if err != nil {
		var renderErr errs.RenderError
		if errors.As(err, &renderErr) {
			return nil, false, err
		}
		return nil, false, errs.RenderError{Err: err}
	}

	metadata, err := json.Marshal(req.Metadata)
	if err != nil || req.Metadata == nil {
		metadata = []byte("{}")
	}
	certificate := db.Certificate{
		ID:              certificateID,
		TemplateID:      req.TemplateID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		RecipientEmail:  req.RecipientEmail,
		Amount:          req.Amount,
		IssueDate:       issueDate,
		ExpiresAt:       expiresAt,
		Message:         req.Message,
		FromName:        req.FromName,
		CertificateCode: code,
		PDFPath:         pdfPath,
		Status:          consts.CertificateStatusIssued,
		IdempotencyKey:  idempotencyKey,
		Metadata:        metadata,
		CreatedAt:       time.Now(),
	}

	if err := c.certs.InsertCertificate(ctx, certificate); err != nil {
		// The row never existed, so the freshly rendered file is an orphan
		// either way.
		if removeErr := os.Remove(pdfPath); removeErr != nil {
			slog.Error("can't remove orphaned pdf", "path", pdfPath, "err", removeErr)
		}
		if errors.Is(err, errs.ErrDuplicateKey) {
			// Lost the race against a concurrent identical request; the
			// storage constraint is the authority, return the winner.
			winner, fetchErr := c.certs.GetCertificateByIdempotencyKey(ctx, idempotencyKey)
			if fetchErr != nil {
				return nil, false, errs.PersistenceError{Err: fetchErr}
			}
			return c.response(winner), false, nil
		}
		return nil, false, errs.PersistenceError{Err: err}
	}

	c.dispatch.Enqueue(certificate)

	return c.response(&certificate), true, nil
}

func (c *IssueCertificate) response(certificate *db.Certificate) *dto.CreateCertificateResponse {
	return &dto.CreateCertificateResponse{
		CertificateID:   certificate.ID,
		PDFURL:          c.cfg.PDFURL(certificate.ID),
		VerificationURL: c.cfg.VerificationURL(certificate.CertificateCode),
		Status:          string(certificate.Status),
	}
}

func (c *IssueCertificate) resolveDates(req dto.CreateCertificateRequest) (issueDate, expiresAt time.Time) {
	now := time.Now()
	issueDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.IssueDate != "" {
		if parsed, err := time.Parse(dateLayout, req.IssueDate); err == nil {
			issueDate = parsed
		}
	}
	expiresAt = issueDate.AddDate(0, 0, c.cfg.ExpiryDays)
	if req.ExpiresAt != "" {
		if parsed, err := time.Parse(dateLayout, req.ExpiresAt); err == nil {
			expiresAt = parsed
		}
	}
	return issueDate, expiresAt
}

func (c *IssueCertificate) validateRequest(req dto.CreateCertificateRequest) []string {
	var details []string
	if err := c.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details = append(details, describeViolation(fe))
			}
		} else {
			details = append(details, err.Error())
		}
	}
	if !req.Amount.IsPositive() {
		details = append(details, "amount must be positive")
	}
	return details
}

func describeViolation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in the form %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func newRequestValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// violations report the json field name, not the Go one
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newCertificateCode builds the human-readable public identifier:
// CERT-<unix millis>-<6 random chars>.
func newCertificateCode() string {
	suffix := make([]byte, 6)
	random := make([]byte, 6)
	if _, err := rand.Read(random); err != nil {
		// crypto/rand is documented to not fail on supported platforms
		panic(err)
	}
	for i, b := range random {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("CERT-%d-%s", time.Now().UnixMilli(), suffix)
}
