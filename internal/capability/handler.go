package capability

import (
	"log"
	"net/http"

	"github.com/docgate/service/internal/response"
)

// Handler holds HTTP handlers for capability endpoints.
type Handler struct {
	mgr Manager
}

// NewHandler creates a new capability Handler.
func NewHandler(mgr Manager) *Handler {
	return &Handler{mgr: mgr}
}

type tokenData struct {
	Token string `json:"token" example:"eyJhbGci..."`
}

// Begin godoc
//
//	@Summary		Begin an upload session
//	@Description	Issue a short-lived upload capability. In token mode the response carries a Bearer token; in session mode a session cookie is set instead.
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=tokenData}
//	@Failure		429	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/session [post]
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	grant, err := h.mgr.Issue(r.Context())
	if err != nil {
		log.Printf("capability issue failed: %v", err)
		response.InternalError(w, "could not begin session")
		return
	}

	if grant.Cookie != nil {
		http.SetCookie(w, grant.Cookie)
		response.OK(w, map[string]bool{"success": true})
		return
	}

	response.OK(w, map[string]string{"token": grant.Token})
}
