// Package document validates incoming documents and relays them to the
// object-storage backend.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/docgate/service/internal/storage"
)

// AllowedContentType is the only content type the gateway accepts.
const AllowedContentType = "application/pdf"

// ErrNoFile is returned when the request carries no file.
var ErrNoFile = errors.New("no file uploaded")

// ErrUnsupportedType is returned for any content type other than PDF.
var ErrUnsupportedType = errors.New("only PDF files are allowed")

// ErrTooLarge is returned when the payload exceeds the configured ceiling.
var ErrTooLarge = errors.New("file exceeds the size limit")

// ErrMissingReference is returned when a delete names no storage reference.
var ErrMissingReference = errors.New("missing public_id")

// ErrBackend marks a storage backend failure; the wrapped message is the
// backend's own and is surfaced to the caller without retries.
var ErrBackend = errors.New("storage backend error")

// Artifact is the result of a successful upload.
type Artifact struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Service is the upload pipeline: validate, stream to the backend, return the
// storage reference.
type Service struct {
	store    storage.Storage
	maxBytes int64
}

// NewService creates a document Service with the given size ceiling.
func NewService(store storage.Storage, maxBytes int64) *Service {
	return &Service{store: store, maxBytes: maxBytes}
}

// Upload validates the declared content type and size, then streams the
// payload to the backend under a fresh key. The reader is consumed exactly
// once; nothing is staged locally.
func (s *Service) Upload(ctx context.Context, r io.Reader, contentType string, size int64) (*Artifact, error) {
	if contentType != AllowedContentType {
		return nil, ErrUnsupportedType
	}
	if size <= 0 {
		return nil, ErrNoFile
	}
	if size > s.maxBytes {
		return nil, ErrTooLarge
	}

	key := "documents/" + uuid.NewString() + ".pdf"
	if err := s.store.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	return &Artifact{
		URL:      s.store.PublicURL(key),
		PublicID: key,
	}, nil
}

// Delete revokes a previously uploaded document from the backend. The
// reference must be non-empty; the backend's verdict is authoritative.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return ErrMissingReference
	}
	if err := s.store.Delete(ctx, publicID); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}
