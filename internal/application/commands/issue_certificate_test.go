package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/giftflow/certgen-backend/internal/application/commands"
	"github.com/giftflow/certgen-backend/internal/application/consts"
	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/render"
	"github.com/giftflow/certgen-backend/internal/testinfra"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeRenderer writes a placeholder file per certificate so the pipeline's
// cleanup paths operate on something real.
type fakeRenderer struct {
	dir string
	err error

	mu    sync.Mutex
	calls int
}

func (r *fakeRenderer) Render(_ *db.Template, data render.CertificateData) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	path := filepath.Join(r.dir, data.CertificateID+".pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *fakeRenderer) rendered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fixture struct {
	cfg       *config.AppConfig
	templates *testinfra.MemoryTemplateRepo
	certs     *testinfra.MemoryCertificateRepo
	renderer  *fakeRenderer
	queue     *testinfra.CaptureQueue
	SUT       *commands.IssueCertificate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cfg: &config.AppConfig{
			BaseURL:    "http://localhost:8080",
			ExpiryDays: 365,
		},
		templates: testinfra.NewMemoryTemplateRepo(db.Template{
			ID:       "tpl-1",
			Name:     "Birthday",
			FilePath: "templates/birthday.pdf",
		}),
		certs:    testinfra.NewMemoryCertificateRepo(),
		renderer: &fakeRenderer{dir: t.TempDir()},
		queue:    &testinfra.CaptureQueue{},
	}
	f.SUT = commands.NewIssueCertificate(f.cfg, f.templates, f.certs, f.renderer, f.queue)
	return f
}

func validRequest() dto.CreateCertificateRequest {
	return dto.CreateCertificateRequest{
		TemplateID:     "tpl-1",
		FirstName:      "Anna",
		LastName:       "Petrova",
		RecipientEmail: "anna@example.com",
		Amount:         decimal.NewFromInt(5000),
		Message:        "Happy birthday!",
		FromName:       "Ivan",
	}
}

func Test_IssueCertificate_When_Valid_Then_Persists_Renders_And_Enqueues(t *testing.T) {
	f := newFixture(t)

	resp, created, err := f.SUT.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, resp.CertificateID)
	require.Equal(t, "issued", resp.Status)
	require.Equal(t, "http://localhost:8080/static/certificates/"+resp.CertificateID+".pdf", resp.PDFURL)

	stored := f.certs.All()
	require.Len(t, stored, 1)
	require.Equal(t, resp.CertificateID, stored[0].ID)
	require.Equal(t, consts.CertificateStatusIssued, stored[0].Status)
	require.NotEmpty(t, stored[0].IdempotencyKey)
	require.FileExists(t, stored[0].PDFPath)
	require.Equal(t, "http://localhost:8080/api/v1/verify/"+stored[0].CertificateCode, resp.VerificationURL)

	enqueued := f.queue.Enqueued()
	require.Len(t, enqueued, 1)
	require.Equal(t, resp.CertificateID, enqueued[0].ID)
}

func Test_IssueCertificate_When_Expiry_Not_Given_Then_Expires_In_Configured_Days(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.SUT.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	stored := f.certs.All()[0]
	require.Equal(t, stored.IssueDate.AddDate(0, 0, 365), stored.ExpiresAt)
}

func Test_IssueCertificate_When_Dates_Given_Then_Uses_Them(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.IssueDate = "2026-01-15"
	req.ExpiresAt = "2026-06-15"

	_, _, err := f.SUT.Execute(context.Background(), req)
	require.NoError(t, err)

	stored := f.certs.All()[0]
	require.Equal(t, "2026-01-15", stored.IssueDate.Format("2006-01-02"))
	require.Equal(t, "2026-06-15", stored.ExpiresAt.Format("2006-01-02"))
}

func Test_IssueCertificate_When_Same_Idempotency_Key_Then_Replays_Original(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.IdempotencyKey = "order-42"

	first, created, err := f.SUT.Execute(context.Background(), req)
	require.NoError(t, err)
	require.True(t, created)

	// a retry even with different payload returns the original certificate
	retry := req
	retry.FirstName = "Boris"
	second, created, err := f.SUT.Execute(context.Background(), retry)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.CertificateID, second.CertificateID)

	require.Len(t, f.certs.All(), 1)
	require.Len(t, f.queue.Enqueued(), 1)
	require.Equal(t, 1, f.renderer.rendered())
}

func Test_IssueCertificate_When_Invalid_Then_Validation_Error_And_No_Side_Effects(t *testing.T) {
	cases := map[string]func(*dto.CreateCertificateRequest){
		"missing first name":   func(r *dto.CreateCertificateRequest) { r.FirstName = "" },
		"missing template":     func(r *dto.CreateCertificateRequest) { r.TemplateID = "" },
		"bad email":            func(r *dto.CreateCertificateRequest) { r.RecipientEmail = "not-an-email" },
		"zero amount":          func(r *dto.CreateCertificateRequest) { r.Amount = decimal.Zero },
		"negative amount":      func(r *dto.CreateCertificateRequest) { r.Amount = decimal.NewFromInt(-100) },
		"bad issue date":       func(r *dto.CreateCertificateRequest) { r.IssueDate = "15.01.2026" },
		"message over limit":   func(r *dto.CreateCertificateRequest) { r.Message = strings.Repeat("a", 501) },
		"from name over limit": func(r *dto.CreateCertificateRequest) { r.FromName = strings.Repeat("a", 101) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			mutate(&req)

			_, created, err := f.SUT.Execute(context.Background(), req)
			require.False(t, created)
			var validationErr errs.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Details)

			require.Empty(t, f.certs.All())
			require.Empty(t, f.queue.Enqueued())
			require.Equal(t, 0, f.renderer.rendered())
		})
	}
}

func Test_IssueCertificate_When_Template_Unknown_Then_Template_Not_Found(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.TemplateID = "tpl-unknown"

	_, _, err := f.SUT.Execute(context.Background(), req)
	var notFound errs.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "tpl-unknown", notFound.TemplateID)
	require.Empty(t, f.certs.All())
	require.Equal(t, 0, f.renderer.rendered())
}

func Test_IssueCertificate_When_Render_Fails_Then_No_Row_And_No_Dispatch(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errs.RenderError{Err: errors.New("template file not found")}

	_, _, err := f.SUT.Execute(context.Background(), validRequest())
	var renderErr errs.RenderError
	require.ErrorAs(t, err, &renderErr)
	require.Empty(t, f.certs.All())
	require.Empty(t, f.queue.Enqueued())
}

func Test_IssueCertificate_When_Insert_Fails_Then_Removes_Orphaned_PDF(t *testing.T) {
	f := newFixture(t)
	boom := &failingInserts{MemoryCertificateRepo: f.certs, err: errors.New("connection reset")}
	f.SUT = commands.NewIssueCertificate(f.cfg, f.templates, boom, f.renderer, f.queue)

	_, _, err := f.SUT.Execute(context.Background(), validRequest())
	var persistErr errs.PersistenceError
	require.ErrorAs(t, err, &persistErr)

	entries, readErr := os.ReadDir(f.renderer.dir)
	require.NoError(t, readErr)
	require.Empty(t, entries)
	require.Empty(t, f.queue.Enqueued())
}

func Test_IssueCertificate_When_Concurrent_Same_Key_Then_Exactly_One_Row(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.IdempotencyKey = "order-7"

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	createdFlags := make([]bool, workers)
	execErrs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, created, err := f.SUT.Execute(context.Background(), req)
			if err != nil {
				execErrs[i] = err
				return
			}
			ids[i] = resp.CertificateID
			createdFlags[i] = created
		}(i)
	}
	wg.Wait()
	for _, err := range execErrs {
		require.NoError(t, err)
	}

	stored := f.certs.All()
	require.Len(t, stored, 1)
	for _, id := range ids {
		require.Equal(t, stored[0].ID, id)
	}
	createdCount := 0
	for _, flag := range createdFlags {
		if flag {
			createdCount++
		}
	}
	require.Equal(t, 1, createdCount)
	require.Len(t, f.queue.Enqueued(), 1)

	// losers cleaned up after themselves, only the winner's file remains
	entries, err := os.ReadDir(f.renderer.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, stored[0].ID+".pdf", entries[0].Name())
}

func Test_IssueCertificate_Codes_Are_Well_Formed_And_Unique(t *testing.T) {
	f := newFixture(t)
	codeShape := regexp.MustCompile(`^CERT-\d+-[A-Z0-9]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		_, _, err := f.SUT.Execute(context.Background(), validRequest())
		require.NoError(t, err)
	}
	for _, certificate := range f.certs.All() {
		require.Regexp(t, codeShape, certificate.CertificateCode)
		_, dup := seen[certificate.CertificateCode]
		require.False(t, dup, "code %s issued twice", certificate.CertificateCode)
		seen[certificate.CertificateCode] = struct{}{}
	}
	require.Len(t, seen, 20)
}

// failingInserts delegates everything but InsertCertificate.
type failingInserts struct {
	*testinfra.MemoryCertificateRepo
	err error
}

func (r *failingInserts) InsertCertificate(context.Context, db.Certificate) error {
	return r.err
}
