package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/giftflow/certgen-backend/internal/infra/db"
)

const textBody = `Hello, {{.FirstName}} {{.LastName}}!

Congratulations! You have received a gift certificate for {{.Amount}} RUB.
{{if .Message}}
Message: {{.Message}}
{{end}}
Certificate details:
- Code: {{.Code}}
- Issued: {{.IssueDate}}
- Valid until: {{.ExpiresAt}}
{{if .FromName}}
From: {{.FromName}}
{{end}}
The PDF certificate is attached to this email.

To verify the certificate, follow this link:
{{.VerificationURL}}

Best regards,
{{.SenderName}}`

const htmlBody = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your gift certificate</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #f8f9fa; padding: 20px; border-radius: 8px; margin-bottom: 20px; text-align: center; }
        .certificate-info { background: #e7f3ff; padding: 15px; border-radius: 8px; margin: 20px 0; }
        .amount { font-size: 24px; font-weight: bold; color: #007bff; }
        .code { font-family: monospace; background: #f1f1f1; padding: 5px 10px; border-radius: 4px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 14px; color: #666; }
        .verify-link { display: inline-block; background: #28a745; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; margin: 10px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Congratulations!</h1>
        <p>You have received a gift certificate</p>
    </div>

    <p>Hello, <strong>{{.FirstName}} {{.LastName}}</strong>!</p>

    <div class="certificate-info">
        <p>Certificate amount: <span class="amount">{{.Amount}} RUB</span></p>
        {{if .Message}}<p><strong>Message:</strong> {{.Message}}</p>{{end}}
    </div>

    <h3>Certificate details:</h3>
    <ul>
        <li><strong>Code:</strong> <span class="code">{{.Code}}</span></li>
        <li><strong>Issued:</strong> {{.IssueDate}}</li>
        <li><strong>Valid until:</strong> {{.ExpiresAt}}</li>
        {{if .FromName}}<li><strong>From:</strong> {{.FromName}}</li>{{end}}
    </ul>

    <p>The PDF certificate is attached to this email.</p>

    <p>
        <a href="{{.VerificationURL}}" class="verify-link">Verify certificate</a>
    </p>

    <div class="footer">
        <p>Best regards,<br>{{.SenderName}}</p>
    </div>
</body>
</html>`

var (
	textTmpl = texttemplate.Must(texttemplate.New("certificate-text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("certificate-html").Parse(htmlBody))
)

type certificateMailData struct {
	FirstName       string
	LastName        string
	Amount          string
	Message         string
	Code            string
	IssueDate       string
	ExpiresAt       string
	FromName        string
	VerificationURL string
	SenderName      string
}

// ComposeCertificateMail renders the text and HTML variants of the delivery
// email for one certificate.
func ComposeCertificateMail(certificate db.Certificate, verificationURL, senderName string) (subject, text, html string, err error) {
	data := certificateMailData{
		FirstName:       certificate.FirstName,
		LastName:        certificate.LastName,
		Amount:          certificate.Amount.String(),
		Message:         certificate.Message,
		Code:            certificate.CertificateCode,
		IssueDate:       formatDate(certificate.IssueDate),
		ExpiresAt:       formatDate(certificate.ExpiresAt),
		FromName:        certificate.FromName,
		VerificationURL: verificationURL,
		SenderName:      senderName,
	}

	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", "", fmt.Errorf("error rendering text body, %v", err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", "", fmt.Errorf("error rendering html body, %v", err)
	}

	subject = fmt.Sprintf("Your gift certificate for %s RUB", data.Amount)
	return subject, textBuf.String(), htmlBuf.String(), nil
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
