package book

import (
	"errors"
	"net/http"

	"bookcatalog/internal/httpx"
	"bookcatalog/internal/paging"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// BookRequest is the body of create and update requests.
type BookRequest struct {
	ID        string `json:"id" validate:"omitempty,uuid"`
	ISBN      string `json:"isbn" validate:"omitempty,digits,max=32"`
	Title     string `json:"title" validate:"max=255"`
	Subtitle  string `json:"subtitle" validate:"max=255"`
	Author    string `json:"author" validate:"max=255"`
	Publisher string `json:"publisher" validate:"max=255"`
	Year      string `json:"year" validate:"max=8"`
	Pages     string `json:"pages" validate:"max=8"`
	Genre     string `json:"genre" validate:"max=100"`
	Image     string `json:"image" validate:"max=2048"`
}

func (req BookRequest) book() Book {
	return Book{
		ID:        req.ID,
		ISBN:      req.ISBN,
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Author:    req.Author,
		Publisher: req.Publisher,
		Year:      req.Year,
		Pages:     req.Pages,
		Genre:     req.Genre,
		Image:     req.Image,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrIDMismatch):
		httpx.JSONError(w, r, http.StatusBadRequest, "ID_MISMATCH", "The book id does not correspond with the body data", nil)
	default:
		httpx.WriteError(w, r, err)
	}
}

func decodeBook(r *http.Request) (Book, error) {
	var req BookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return Book{}, err
	}
	if err := httpx.ValidateStruct(req); err != nil {
		return Book{}, err
	}
	return req.book(), nil
}

// List handles GET /books
// @Summary List books
// @Description Filter the catalog by any of eight fields (case-insensitive substring, combined with AND) and page through the result
// @Tags books
// @Produce json
// @Param author query string false "Author contains"
// @Param genre query string false "Genre contains"
// @Param image query string false "Image contains"
// @Param pages query string false "Pages contains"
// @Param publisher query string false "Publisher contains"
// @Param subtitle query string false "Subtitle contains"
// @Param title query string false "Title contains"
// @Param year query string false "Year contains"
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size (1-100)"
// @Param sort query []string false "Sort key as field or field,desc" collectionFormat(multi)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := h.service.List(r.Context(), FilterFromQuery(query), paging.FromQuery(query, SortColumns))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, page.Content, page.Meta())
}

// Get handles GET /books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /books
// @Summary Add a book to the catalog
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body BookRequest true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBook(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, created, nil)
}

// Update handles PUT /books/{id}
// @Summary Replace a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body BookRequest true "Book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBook(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.service.Update(r.Context(), r.PathValue("id"), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, updated, nil)
}

// Delete handles DELETE /books/{id}
// @Summary Remove a book from the catalog
// @Description Fails while any user still owns the book
// @Tags books
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
