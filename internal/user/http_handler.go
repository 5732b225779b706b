package user

import (
	"errors"
	"net/http"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/paging"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// ProfileRequest is the body of update requests.
type ProfileRequest struct {
	ID        string `json:"id" validate:"omitempty,uuid"`
	Username  string `json:"username" validate:"max=50"`
	Name      string `json:"name" validate:"max=255"`
	Birthdate string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	ProfileRequest
	Password string `json:"password"`
}

type PasswordRequest struct {
	Password string `json:"password"`
}

// OwnedBookRequest names a catalog book by id.
type OwnedBookRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

func (req ProfileRequest) profile() Profile {
	p := Profile{ID: req.ID, Username: req.Username, Name: req.Name}
	// the datetime tag already rejected malformed dates
	p.Birthdate, _ = time.Parse(DateLayout, req.Birthdate)
	return p
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrBookNotOwned):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "The user does not have this book", nil)
	case errors.Is(err, ErrBookAlreadyOwned):
		httpx.JSONError(w, r, http.StatusBadRequest, "ALREADY_OWNED", "The user already has this book", nil)
	case errors.Is(err, ErrIDMismatch):
		httpx.JSONError(w, r, http.StatusBadRequest, "ID_MISMATCH", "The user id does not correspond with the body data", nil)
	default:
		httpx.WriteError(w, r, err)
	}
}

// decode reads and checks the tags of a JSON body.
func decode(r *http.Request, v any) error {
	if err := httpx.DecodeJSON(r, v); err != nil {
		return err
	}
	return httpx.ValidateStruct(v)
}

// self only lets callers change their own account.
func self(w http.ResponseWriter, r *http.Request) bool {
	if httpx.UserIDFrom(r) != r.PathValue("id") {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Users can only change their own account", nil)
		return false
	}
	return true
}

// Create handles POST /users
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "User"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /users [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.service.Create(r.Context(), req.profile(), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, u, nil)
}

// List handles GET /users
// @Summary List users, or find one by username
// @Tags users
// @Produce json
// @Security Bearer
// @Param username query string false "Exact username"
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size (1-100)"
// @Param sort query []string false "Sort key as field or field,desc" collectionFormat(multi)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if username := query.Get("username"); username != "" {
		u, err := h.service.GetByUsername(r.Context(), username)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.JSONSuccess(w, r, u, nil)
		return
	}

	page, err := h.service.List(r.Context(), paging.FromQuery(query, SortColumns))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, page.Content, page.Meta())
}

// Me handles GET /users/me
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /users/me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := httpx.UserIDFrom(r)
	if id == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// Get handles GET /users/{id}
// @Summary Get a user
// @Tags users
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// Update handles PUT /users/{id}
// @Summary Replace the profile of a user
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Param request body ProfileRequest true "Profile"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !self(w, r) {
		return
	}
	var req ProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.service.Update(r.Context(), r.PathValue("id"), req.profile())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// UpdatePassword handles PUT /users/{id}/password
// @Summary Change the password of a user
// @Tags users
// @Accept json
// @Security Bearer
// @Param id path string true "User ID"
// @Param request body PasswordRequest true "New password"
// @Success 204 "No Content"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id}/password [put]
func (h *HTTPHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if !self(w, r) {
		return
	}
	var req PasswordRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.service.UpdatePassword(r.Context(), r.PathValue("id"), req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// Delete handles DELETE /users/{id}
// @Summary Delete a user and their collection
// @Tags users
// @Security Bearer
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !self(w, r) {
		return
	}
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// AddBook handles POST /users/{id}/books
// @Summary Add a catalog book to the collection of a user
// @Tags users
// @Accept json
// @Security Bearer
// @Param id path string true "User ID"
// @Param request body OwnedBookRequest true "Book"
// @Success 204 "No Content"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id}/books [post]
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	if !self(w, r) {
		return
	}
	var req OwnedBookRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.service.AddBook(r.Context(), r.PathValue("id"), req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// RemoveBook handles DELETE /users/{id}/books/{bookId}
// @Summary Remove a book from the collection of a user
// @Tags users
// @Security Bearer
// @Param id path string true "User ID"
// @Param bookId path string true "Book ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /users/{id}/books/{bookId} [delete]
func (h *HTTPHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	if !self(w, r) {
		return
	}
	if _, err := h.service.RemoveBook(r.Context(), r.PathValue("id"), r.PathValue("bookId")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
