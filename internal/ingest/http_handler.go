package ingest

import (
	"crypto/subtle"
	"net/http"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	svc    *Service
	secret string
}

func NewHTTPHandler(svc *Service, secret string) *HTTPHandler {
	return &HTTPHandler{svc: svc, secret: secret}
}

type IngestReq struct {
	ISBNs []string `json:"isbns" validate:"required,min=1,max=1000"`
}

// Ingest handles POST /internal/jobs/ingest
// @Summary Import books by ISBN
// @Description Look up the given ISBNs on Open Library in batches and add the missing ones to the catalog
// @Tags internal
// @Accept json
// @Produce json
// @Param X-Internal-Secret header string true "Internal secret for authentication"
// @Param request body IngestReq true "ISBNs to import"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [post]
func (h *HTTPHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Internal-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid internal secret", nil)
		return
	}

	var req IngestReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	run, err := h.svc.Run(r.Context(), req.ISBNs)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, run, nil)
}
