package rest

import (
	"errors"
	"log/slog"

	"github.com/giftflow/certgen-backend/internal/application"
	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	handlers *application.Handlers
}

func NewServer(handlers *application.Handlers) *Server {
	return &Server{handlers: handlers}
}

func RegisterHandlers(app *fiber.App, s *Server, apiKey string) {
	app.Get("/", s.ServiceInfo)

	api := app.Group("/api/v1")
	api.Get("/verify/:code", s.VerifyCertificate)

	protected := api.Group("", APIKeyAuth(apiKey))
	protected.Post("/certificates", s.CreateCertificate)
	protected.Get("/certificates/:id", s.GetCertificate)
	protected.Get("/templates", s.ListTemplates)
	protected.Post("/templates", s.CreateTemplate)
	protected.Get("/templates/:id", s.GetTemplate)
	protected.Put("/templates/:id/mapping", s.UpdateTemplateMapping)
	protected.Delete("/templates/:id", s.DeleteTemplate)
}

func (s *Server) ServiceInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "Certificate Generator API",
		"version": "1.0.0",
		"endpoints": fiber.Map{
			"POST /api/v1/certificates":         "issue a certificate",
			"GET /api/v1/certificates/:id":      "fetch a certificate",
			"GET /api/v1/verify/:code":          "verify a certificate (public)",
			"GET /api/v1/templates":             "list templates",
			"POST /api/v1/templates":            "upload a template",
			"GET /api/v1/templates/:id":         "fetch a template",
			"PUT /api/v1/templates/:id/mapping": "update template field mapping",
			"DELETE /api/v1/templates/:id":      "delete an unused template",
			"GET /static/certificates/:id.pdf":  "rendered certificate files (public)",
		},
	})
}

func (s *Server) CreateCertificate(c *fiber.Ctx) error {
	var req dto.CreateCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp, created, err := s.handlers.IssueCertificate.Execute(c.Context(), req)
	if err != nil {
		return s.errorResponse(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

func (s *Server) GetCertificate(c *fiber.Ctx) error {
	resp, err := s.handlers.GetCertificate.Query(c.Context(), c.Params("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) VerifyCertificate(c *fiber.Ctx) error {
	resp, err := s.handlers.VerifyCertificate.Query(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "certificate not found"})
		}
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) ListTemplates(c *fiber.Ctx) error {
	resp, err := s.handlers.ListTemplates.Query(c.Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) GetTemplate(c *fiber.Ctx) error {
	resp, err := s.handlers.GetTemplate.Query(c.Context(), c.Params("id"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) CreateTemplate(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("template")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "template file is required"})
	}
	resp, err := s.handlers.CreateTemplate.Execute(c.Context(),
		c.FormValue("name"), []byte(c.FormValue("field_mapping")), fileHeader)
	if err != nil {
		var validationErr errs.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid template upload", Details: validationErr.Details})
		}
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) UpdateTemplateMapping(c *fiber.Ctx) error {
	var req dto.UpdateMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	templateID := c.Params("id")
	if err := s.handlers.UpdateTemplateMapping.Execute(c.Context(), templateID, req.FieldMapping); err != nil {
		var validationErr errs.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid field mapping", Details: validationErr.Details})
		}
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"id": templateID, "message": "field mapping updated"})
}

func (s *Server) DeleteTemplate(c *fiber.Ctx) error {
	if err := s.handlers.DeleteTemplate.Execute(c.Context(), c.Params("id")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "template deleted"})
}

// errorResponse maps the error taxonomy onto HTTP statuses. Internal causes
// go to the server log only, never into the response body.
func (s *Server) errorResponse(c *fiber.Ctx, err error) error {
	var validationErr errs.ValidationError
	var templateNotFound errs.TemplateNotFoundError
	var templateInUse errs.TemplateInUseError
	var renderErr errs.RenderError
	var persistErr errs.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: "validation failed", Details: validationErr.Details})
	case errors.As(err, &templateNotFound):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: "template not found", Details: []string{templateNotFound.TemplateID}})
	case errors.As(err, &templateInUse):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: templateInUse.Error()})
	case errors.Is(err, errs.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "not found"})
	case errors.As(err, &renderErr):
		slog.Error("render failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "certificate rendering failed"})
	case errors.As(err, &persistErr):
		slog.Error("storage failure", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "storage failure"})
	default:
		slog.Error("unhandled error", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
}
