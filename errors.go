package pdfcertify

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrUnreadableDocument = errors.New("unreadable document")
	ErrEncryptedDocument  = errors.New("encrypted document")
	ErrMetadataCopy       = errors.New("metadata copy failed")
	ErrRenderOrMerge      = errors.New("render or merge failure")
)

// UnreadableDocumentError is returned when the input is not a structurally
// valid PDF.
type UnreadableDocumentError struct {
	Err error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unreadable document: %v", e.Err)
	}
	return "unreadable document"
}

func (e *UnreadableDocumentError) Unwrap() error { return e.Err }

func (e *UnreadableDocumentError) Is(target error) bool { return target == ErrUnreadableDocument }

// Message returns the text shown to the user.
func (e *UnreadableDocumentError) Message() string {
	if e.Err != nil {
		return fmt.Sprintf("No se pudo leer el PDF: %v", e.Err)
	}
	return "No se pudo leer el PDF."
}

// EncryptedDocumentError is returned when the input carries an /Encrypt
// dictionary. Decryption is never attempted.
type EncryptedDocumentError struct{}

func (e *EncryptedDocumentError) Error() string {
	return "document is encrypted"
}

func (e *EncryptedDocumentError) Is(target error) bool { return target == ErrEncryptedDocument }

// Message returns the text shown to the user.
func (e *EncryptedDocumentError) Message() string {
	return "Este PDF está protegido (encriptado). Desencríptalo antes de usarlo."
}

// MetadataCopyError records a failure to carry the document information
// dictionary over to the output. It is never returned from Write; it is
// reported in Result.Warnings.
type MetadataCopyError struct {
	Err error
}

func (e *MetadataCopyError) Error() string {
	return fmt.Sprintf("failed to copy metadata: %v", e.Err)
}

func (e *MetadataCopyError) Unwrap() error { return e.Err }

func (e *MetadataCopyError) Is(target error) bool { return target == ErrMetadataCopy }

// Message returns the text shown to the user.
func (e *MetadataCopyError) Message() string {
	return "No se pudieron copiar los metadatos del PDF original."
}

// RenderError wraps any failure while synthesizing the certification page or
// merging it into the document. Stage is "render" or "merge".
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRenderOrMerge }

// Message returns the text shown to the user.
func (e *RenderError) Message() string {
	return fmt.Sprintf("Ocurrió un error al generar el PDF: %v", e.Err)
}

// UserMessage returns the user-facing message for err. Errors that carry no
// message of their own are shown as their Error text.
func UserMessage(err error) string {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}
