package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for the repo contract. Infra implementations translate their
// storage-level failures into these so callers never depend on driver errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// ValidationError is terminal and carries the itemized schema violations.
type ValidationError struct {
	Details []string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Details, "; "))
}

type TemplateNotFoundError struct {
	TemplateID string
}

func (e TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.TemplateID)
}

type TemplateInUseError struct {
	TemplateID   string
	Certificates int
}

func (e TemplateInUseError) Error() string {
	return fmt.Sprintf("template %s is referenced by %d certificates", e.TemplateID, e.Certificates)
}

type RenderError struct {
	Err error
}

func (e RenderError) Error() string {
	return fmt.Sprintf("error rendering certificate: %v", e.Err)
}

func (e RenderError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("error persisting certificate: %v", e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// DispatchError is never terminal to a request, it only surfaces in logs and
// the email audit trail.
type DispatchError struct {
	Channel string
	Err     error
}

func (e DispatchError) Error() string {
	return fmt.Sprintf("dispatch via %s failed: %v", e.Channel, e.Err)
}

func (e DispatchError) Unwrap() error { return e.Err }
