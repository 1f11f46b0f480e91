package document

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/docgate/service/internal/response"
)

// parseMaxMemory caps how much of the multipart form is held in memory;
// larger parts spill to temp files that are released after the request.
const parseMaxMemory = 1 << 20

// multipartOverhead leaves headroom for multipart boundaries and part headers
// on top of the file size ceiling when capping the request body.
const multipartOverhead = 10 << 10

// Handler holds HTTP handlers for document upload and deletion.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a new document Handler.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

type deleteRequest struct {
	PublicID string `json:"public_id" example:"documents/0b6e7c0e-2f8d-4d21-9d3e-8f0a3a4a9f21.pdf"`
}

type deleteData struct {
	Result   string `json:"result"    example:"ok"`
	PublicID string `json:"public_id" example:"documents/0b6e7c0e-2f8d-4d21-9d3e-8f0a3a4a9f21.pdf"`
}

// Upload godoc
//
//	@Summary		Upload a document
//	@Description	Accepts a single PDF (multipart field "file", max 5 MiB by default) and relays it to object storage.
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"PDF document"
//	@Success		200		{object}	response.Envelope{data=Artifact}
//	@Failure		400		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		429		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(parseMaxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.BadRequest(w, ErrTooLarge.Error())
			return
		}
		response.BadRequest(w, ErrNoFile.Error())
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Printf("failed to free multipart form resources: %v", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, ErrNoFile.Error())
		return
	}
	defer file.Close()

	artifact, err := h.svc.Upload(r.Context(), file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, artifact)
}

// Delete godoc
//
//	@Summary		Delete a document
//	@Description	Revokes a previously uploaded document from object storage by its public_id.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		deleteRequest	true	"Storage reference"
//	@Success		200		{object}	response.Envelope{data=deleteData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		429		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/delete [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.svc.Delete(r.Context(), req.PublicID); err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, deleteData{Result: "ok", PublicID: req.PublicID})
}

// writeError maps pipeline errors onto the HTTP boundary. Validation failures
// are 400 with the category message; backend failures are 500 carrying the
// backend's own message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrTooLarge),
		errors.Is(err, ErrNoFile),
		errors.Is(err, ErrMissingReference):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrBackend):
		log.Printf("storage backend failure: %v", err)
		response.InternalError(w, err.Error())
	default:
		log.Printf("unexpected upload pipeline error: %v", err)
		response.InternalError(w, "internal server error")
	}
}
