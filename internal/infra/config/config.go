package config

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/giftflow/certgen-backend/pkg/env"
)

// AppConfig carries every environment-derived setting the pipeline needs.
// It is built once in cmd and injected, tests construct it by hand.
type AppConfig struct {
	Port            string
	BaseURL         string
	APIKey          string
	PublicDir       string
	TemplatesDir    string
	CertificatesDir string
	ExpiryDays      int
}

func NewAppConfig() *AppConfig {
	expiryDays, err := strconv.Atoi(env.GetEnv("CERTIFICATE_EXPIRY_DAYS", "365"))
	if err != nil || expiryDays <= 0 {
		expiryDays = 365
	}
	publicDir := env.GetEnv("PUBLIC_DIR", "./public")
	return &AppConfig{
		Port:            env.GetEnv("PORT", "8080"),
		BaseURL:         env.GetEnv("BASE_URL", "http://localhost:8080"),
		APIKey:          env.GetEnv("API_KEY", ""),
		PublicDir:       publicDir,
		TemplatesDir:    env.GetEnv("TEMPLATES_DIR", "./templates"),
		CertificatesDir: filepath.Join(publicDir, "certificates"),
		ExpiryDays:      expiryDays,
	}
}

func (c *AppConfig) PDFURL(certificateID string) string {
	return fmt.Sprintf("%s/static/certificates/%s.pdf", c.BaseURL, certificateID)
}

func (c *AppConfig) VerificationURL(code string) string {
	return fmt.Sprintf("%s/api/v1/verify/%s", c.BaseURL, code)
}
