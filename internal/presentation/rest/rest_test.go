package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/giftflow/certgen-backend/internal/application"
	"github.com/giftflow/certgen-backend/internal/application/commands"
	"github.com/giftflow/certgen-backend/internal/application/query"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/presentation/rest"
	"github.com/giftflow/certgen-backend/internal/render"
	"github.com/giftflow/certgen-backend/internal/testinfra"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type stubRenderer struct {
	dir string
}

func (r *stubRenderer) Render(_ *db.Template, data render.CertificateData) (string, error) {
	path := filepath.Join(r.dir, data.CertificateID+".pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func newTestApp(t *testing.T) (*fiber.App, *testinfra.MemoryCertificateRepo) {
	t.Helper()
	cfg := &config.AppConfig{BaseURL: "http://localhost:8080", APIKey: testAPIKey, ExpiryDays: 365}
	templates := testinfra.NewMemoryTemplateRepo(db.Template{ID: "tpl-1", Name: "Birthday", FilePath: "templates/birthday.pdf"})
	certs := testinfra.NewMemoryCertificateRepo()
	queue := &testinfra.CaptureQueue{}
	renderer := &stubRenderer{dir: t.TempDir()}

	handlers := &application.Handlers{
		IssueCertificate:      commands.NewIssueCertificate(cfg, templates, certs, renderer, queue),
		CreateTemplate:        commands.NewCreateTemplate(cfg, templates),
		UpdateTemplateMapping: commands.NewUpdateTemplateMapping(templates),
		DeleteTemplate:        commands.NewDeleteTemplate(templates, certs),
		GetCertificate:        query.NewGetCertificate(cfg, certs),
		VerifyCertificate:     query.NewVerifyCertificate(certs, time.Now),
		GetTemplate:           query.NewGetTemplate(templates),
		ListTemplates:         query.NewListTemplates(templates),
	}

	app := fiber.New()
	rest.RegisterHandlers(app, rest.NewServer(handlers), cfg.APIKey)
	return app, certs
}

func doJSON(t *testing.T, app *fiber.App, method, path, apiKey string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func issueBody() map[string]interface{} {
	return map[string]interface{}{
		"template_id":     "tpl-1",
		"first_name":      "Ann",
		"last_name":       "Lee",
		"recipient_email": "a@x.com",
		"amount":          500,
	}
}

func Test_CreateCertificate_When_Valid_Then_201_With_URLs(t *testing.T) {
	app, certs := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, issueBody())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "issued", body["status"])
	require.NotEmpty(t, body["certificate_id"])
	require.Contains(t, body["pdf_url"], "/static/certificates/")
	require.Contains(t, body["verification_url"], "/api/v1/verify/")

	require.Len(t, certs.All(), 1)
}

func Test_CreateCertificate_When_Replayed_Then_200_With_Same_ID(t *testing.T) {
	app, certs := newTestApp(t)
	payload := issueBody()
	payload["idempotency_key"] = "order-1"

	first, firstBody := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, payload)
	require.Equal(t, fiber.StatusCreated, first.StatusCode)

	second, secondBody := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, payload)
	require.Equal(t, fiber.StatusOK, second.StatusCode)
	require.Equal(t, firstBody["certificate_id"], secondBody["certificate_id"])
	require.Len(t, certs.All(), 1)
}

func Test_CreateCertificate_When_Invalid_Then_422_With_Details(t *testing.T) {
	app, _ := newTestApp(t)
	payload := issueBody()
	payload["recipient_email"] = "nope"
	payload["amount"] = 0

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, payload)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "validation failed", body["error"])
	require.NotEmpty(t, body["details"])
}

func Test_CreateCertificate_When_Template_Missing_Then_422(t *testing.T) {
	app, certs := newTestApp(t)
	payload := issueBody()
	payload["template_id"] = "missing"

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, payload)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "template not found", body["error"])
	require.Empty(t, certs.All())
}

func Test_VerifyCertificate_Is_Public_And_Returns_Validity(t *testing.T) {
	app, certs := newTestApp(t)
	_, created := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, issueBody())

	code := certs.All()[0].CertificateCode
	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/verify/"+code, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["valid"])

	certificate := body["certificate"].(map[string]interface{})
	require.Equal(t, created["certificate_id"], certificate["id"])
	require.Equal(t, "Ann Lee", certificate["holder"])
}

func Test_VerifyCertificate_When_Unknown_Code_Then_404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/verify/CERT-0-ZZZZZZ", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func Test_GetCertificate_When_Unknown_Then_404(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/certificates/nope", testAPIKey, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func Test_Protected_Routes_Without_Key_Then_401(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", "", issueBody())
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func Test_Protected_Routes_With_Wrong_Key_Then_403(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/templates", "wrong-key", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func Test_ListTemplates_Returns_Seeded_Template(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/templates", testAPIKey, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	templates := body["templates"].([]interface{})
	require.Len(t, templates, 1)
	require.Equal(t, "tpl-1", templates[0].(map[string]interface{})["id"])
}

func Test_UpdateTemplateMapping_When_Malformed_Then_400(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodPut, "/api/v1/templates/tpl-1/mapping", testAPIKey,
		map[string]interface{}{"field_mapping": map[string]interface{}{"bogus": map[string]interface{}{"x": 1}}})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func Test_DeleteTemplate_When_Referenced_Then_400(t *testing.T) {
	app, certs := newTestApp(t)
	doJSON(t, app, fiber.MethodPost, "/api/v1/certificates", testAPIKey, issueBody())
	require.Len(t, certs.All(), 1)

	resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/v1/templates/tpl-1", testAPIKey, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func Test_ServiceInfo_Is_Public(t *testing.T) {
	app, _ := newTestApp(t)
	resp, body := doJSON(t, app, fiber.MethodGet, "/", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Certificate Generator API", body["name"])
	require.NotEmpty(t, body["endpoints"])
}
