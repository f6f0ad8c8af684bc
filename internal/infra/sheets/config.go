package sheets

import (
	"os"
	"strings"

	"github.com/giftflow/certgen-backend/pkg/env"
)

type SheetsConfig struct {
	SpreadsheetID string
	ClientEmail   string
	PrivateKey    string
	SheetName     string
}

func NewSheetsConfig() *SheetsConfig {
	// private keys arrive through env with escaped newlines
	privateKey := strings.ReplaceAll(os.Getenv("GOOGLE_SHEETS_PRIVATE_KEY"), `\n`, "\n")
	return &SheetsConfig{
		SpreadsheetID: os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		ClientEmail:   os.Getenv("GOOGLE_SHEETS_CLIENT_EMAIL"),
		PrivateKey:    privateKey,
		SheetName:     env.GetEnv("GOOGLE_SHEETS_SHEET_NAME", "Certificates"),
	}
}

func (c *SheetsConfig) Configured() bool {
	return c.SpreadsheetID != "" && c.ClientEmail != "" && c.PrivateKey != ""
}
