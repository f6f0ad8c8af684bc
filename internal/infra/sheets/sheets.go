package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/giftflow/certgen-backend/internal/infra/db"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var headerRow = []interface{}{
	"Created At", "Certificate ID", "First Name", "Last Name", "Email",
	"Amount", "Issue Date", "Expires At", "Certificate Code", "Message",
	"From", "Status", "Verification URL",
}

// Client appends certificate rows to a Google spreadsheet. The service is
// built lazily on first use so an unconfigured deployment only fails at
// dispatch time, matching the rest of the side-effect boundaries.
type Client struct {
	cfg *SheetsConfig

	mu  sync.Mutex
	svc *gsheets.Service
}

func NewClient(cfg *SheetsConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) service(ctx context.Context) (*gsheets.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}
	if !c.cfg.Configured() {
		return nil, fmt.Errorf("google sheets is not configured")
	}
	jwtConfig := &jwt.Config{
		Email:      c.cfg.ClientEmail,
		PrivateKey: []byte(c.cfg.PrivateKey),
		TokenURL:   google.JWTTokenURL,
		Scopes:     []string{gsheets.SpreadsheetsScope},
	}
	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("can't create sheets service, %v", err)
	}
	c.svc = svc
	return svc, nil
}

// EnsureHeaders creates the log sheet and its header row when absent.
func (c *Client) EnsureHeaders(ctx context.Context) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	spreadsheet, err := svc.Spreadsheets.Get(c.cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("can't read spreadsheet, %v", err)
	}
	found := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.cfg.SheetName {
			found = true
			break
		}
	}
	if !found {
		_, err = svc.Spreadsheets.BatchUpdate(c.cfg.SpreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheets.Request{{
				AddSheet: &gsheets.AddSheetRequest{
					Properties: &gsheets.SheetProperties{Title: c.cfg.SheetName},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("can't create sheet %q, %v", c.cfg.SheetName, err)
		}
	}

	headerRange := fmt.Sprintf("%s!A1:M1", c.cfg.SheetName)
	existing, err := svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("can't read headers, %v", err)
	}
	if len(existing.Values) == 0 {
		_, err = svc.Spreadsheets.Values.Update(c.cfg.SpreadsheetID, headerRange, &gsheets.ValueRange{
			Values: [][]interface{}{headerRow},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("can't write headers, %v", err)
		}
	}
	return nil
}

// AppendRow appends one row. Replays are not deduplicated, a retried
// dispatch can produce a duplicate row.
func (c *Client) AppendRow(ctx context.Context, values []interface{}) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	appendRange := fmt.Sprintf("%s!A:M", c.cfg.SheetName)
	_, err = svc.Spreadsheets.Values.Append(c.cfg.SpreadsheetID, appendRange, &gsheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("can't append row, %v", err)
	}
	return nil
}

// BuildRow flattens one certificate into the 13 ordered columns of the log
// sheet.
func BuildRow(certificate db.Certificate, verificationURL string) []interface{} {
	return []interface{}{
		time.Now().Format(time.RFC3339),
		certificate.ID,
		certificate.FirstName,
		certificate.LastName,
		certificate.RecipientEmail,
		certificate.Amount.String(),
		certificate.IssueDate.Format("2006-01-02"),
		certificate.ExpiresAt.Format("2006-01-02"),
		certificate.CertificateCode,
		certificate.Message,
		certificate.FromName,
		string(certificate.Status),
		verificationURL,
	}
}
