package catalog

import (
	"errors"
	"net/http"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/validation"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Resolve handles GET /books?isbn=
// @Summary Resolve a book by ISBN
// @Description Look the ISBN up in the catalog; on a miss fetch it from Open Library and add it to the catalog
// @Tags books
// @Produce json
// @Param isbn query string true "Book ISBN (digits only)"
// @Success 200 {object} httpx.SuccessResponse "found in the catalog"
// @Success 201 {object} httpx.SuccessResponse "fetched and created"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Resolve(r.Context(), r.URL.Query().Get("isbn"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	meta := map[string]any{"status": string(res.Kind)}
	if res.Kind == KindCreated {
		httpx.JSONCreated(w, r, res.Book, meta)
		return
	}
	httpx.JSONSuccess(w, r, res.Book, meta)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No book found for this ISBN", nil)
	case errors.Is(err, ErrIncompleteMetadata):
		var details []httpx.ErrorDetail
		if failures, ok := validation.Details(err); ok {
			for _, f := range failures {
				details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Reason})
			}
		}
		httpx.JSONError(w, r, http.StatusBadGateway, "BAD_GATEWAY", "The metadata provider returned an incomplete record", details)
	case errors.Is(err, ErrProvider):
		httpx.JSONError(w, r, http.StatusBadGateway, "BAD_GATEWAY", "The metadata provider is unavailable", nil)
	default:
		httpx.WriteError(w, r, err)
	}
}
