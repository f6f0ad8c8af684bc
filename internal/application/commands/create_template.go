package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/giftflow/certgen-backend/internal/application/dto"
	"github.com/giftflow/certgen-backend/internal/application/errs"
	"github.com/giftflow/certgen-backend/internal/application/interfaces"
	"github.com/giftflow/certgen-backend/internal/infra/config"
	"github.com/giftflow/certgen-backend/internal/infra/db"
	"github.com/giftflow/certgen-backend/internal/render"
	"github.com/google/uuid"
)

const maxTemplateSize = 10 << 20 // 10MB

// CreateTemplate stores an uploaded template document and its field mapping.
type CreateTemplate struct {
	cfg       *config.AppConfig
	templates interfaces.TemplateRepo
}

func NewCreateTemplate(cfg *config.AppConfig, templates interfaces.TemplateRepo) *CreateTemplate {
	return &CreateTemplate{cfg: cfg, templates: templates}
}

func (c *CreateTemplate) Execute(ctx context.Context, name string, mappingJSON []byte, fileHeader *multipart.FileHeader) (*dto.CreateTemplateResponse, error) {
	var details []string
	if name == "" {
		details = append(details, "name is required")
	}
	if fileHeader == nil {
		details = append(details, "template file is required")
	} else {
		if fileHeader.Size > maxTemplateSize {
			details = append(details, "template file must be at most 10MB")
		}
		if contentType := fileHeader.Header.Get("Content-Type"); contentType != "application/pdf" {
			details = append(details, "template file must be a PDF")
		}
	}
	mapping := json.RawMessage("{}")
	if len(mappingJSON) > 0 {
		if _, err := render.ParseMapping(mappingJSON); err != nil {
			details = append(details, err.Error())
		} else {
			mapping = mappingJSON
		}
	}
	if len(details) > 0 {
		return nil, errs.ValidationError{Details: details}
	}

	filePath, err := c.saveUpload(fileHeader)
	if err != nil {
		return nil, err
	}

	template := db.Template{
		ID:           uuid.NewString(),
		Name:         name,
		Filename:     fileHeader.Filename,
		FilePath:     filePath,
		FieldMapping: mapping,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := c.templates.InsertTemplate(ctx, template); err != nil {
		// don't leave the uploaded file around without a row referencing it
		if removeErr := os.Remove(filePath); removeErr != nil {
			slog.Error("can't remove uploaded template file", "path", filePath, "err", removeErr)
		}
		return nil, errs.PersistenceError{Err: err}
	}

	return &dto.CreateTemplateResponse{
		ID:           template.ID,
		Name:         template.Name,
		Filename:     template.Filename,
		FieldMapping: template.FieldMapping,
	}, nil
}

func (c *CreateTemplate) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(c.cfg.TemplatesDir, 0o755); err != nil {
		return "", errs.PersistenceError{Err: fmt.Errorf("can't create templates dir, %v", err)}
	}
	src, err := fileHeader.Open()
	if err != nil {
		return "", errs.PersistenceError{Err: fmt.Errorf("err opening file, %v", err)}
	}
	defer src.Close()

	filePath := filepath.Join(c.cfg.TemplatesDir,
		fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(fileHeader.Filename)))
	dst, err := os.Create(filePath)
	if err != nil {
		return "", errs.PersistenceError{Err: fmt.Errorf("err creating file, %v", err)}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filePath)
		return "", errs.PersistenceError{Err: fmt.Errorf("err saving file, %v", err)}
	}
	if err := dst.Close(); err != nil {
		os.Remove(filePath)
		return "", errs.PersistenceError{Err: fmt.Errorf("err saving file, %v", err)}
	}
	return filePath, nil
}
