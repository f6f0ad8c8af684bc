package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type CreateCertificateRequest struct {
	TemplateID     string                 `json:"template_id" validate:"required"`
	FirstName      string                 `json:"first_name" validate:"required"`
	LastName       string                 `json:"last_name" validate:"required"`
	RecipientEmail string                 `json:"recipient_email" validate:"required,email"`
	Amount         decimal.Decimal        `json:"amount"`
	IssueDate      string                 `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiresAt      string                 `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
	Message        string                 `json:"message" validate:"omitempty,max=500"`
	FromName       string                 `json:"from_name" validate:"omitempty,max=100"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type CreateCertificateResponse struct {
	CertificateID   string `json:"certificate_id"`
	PDFURL          string `json:"pdf_url"`
	VerificationURL string `json:"verification_url"`
	Status          string `json:"status"`
}

type CertificateResponse struct {
	CertificateID   string          `json:"certificate_id"`
	TemplateID      string          `json:"template_id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	RecipientEmail  string          `json:"recipient_email"`
	Amount          decimal.Decimal `json:"amount"`
	IssueDate       string          `json:"issue_date"`
	ExpiresAt       string          `json:"expires_at"`
	Message         string          `json:"message,omitempty"`
	FromName        string          `json:"from_name,omitempty"`
	CertificateCode string          `json:"certificate_code"`
	Status          string          `json:"status"`
	PDFURL          string          `json:"pdf_url"`
	VerificationURL string          `json:"verification_url"`
	CreatedAt       string          `json:"created_at"`
	SentAt          string          `json:"sent_at,omitempty"`
}

type VerifiedCertificate struct {
	ID        string          `json:"id"`
	Holder    string          `json:"holder"`
	Amount    decimal.Decimal `json:"amount"`
	IssueDate string          `json:"issue_date"`
	ExpiresAt string          `json:"expires_at"`
	Status    string          `json:"status"`
	Expired   bool            `json:"expired"`
}

type VerificationResponse struct {
	Valid       bool                `json:"valid"`
	Certificate VerifiedCertificate `json:"certificate"`
}

type TemplateInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at"`
}

type ListTemplatesResponse struct {
	Templates []TemplateInfo `json:"templates"`
	Count     int            `json:"count"`
}

type TemplateResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Filename     string          `json:"filename"`
	FieldMapping json.RawMessage `json:"field_mapping"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type CreateTemplateResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Filename     string          `json:"filename"`
	FieldMapping json.RawMessage `json:"field_mapping"`
}

type UpdateMappingRequest struct {
	FieldMapping json.RawMessage `json:"field_mapping"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
