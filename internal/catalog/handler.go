// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookhaven/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the catalog endpoints. Mutating routes are expected to sit
// behind the staff-key middleware.
func (h *Handler) Routes(r chi.Router, staff func(http.Handler) http.Handler) {
	r.Get("/books", h.handleList)
	r.Get("/books/{bookID}", h.handleGet)
	r.With(staff).Post("/books", h.handleAdd)
	r.With(staff).Post("/books/{bookID}/restock", h.handleRestock)
	r.With(staff).Delete("/books/{bookID}", h.handleRemove)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var params NewBookParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	book, err := h.service.AddBook(r.Context(), params)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) {
			httpx.RespondError(w, http.StatusConflict, "duplicate_isbn", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, "invalid_book", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, book)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "book id must be a UUID")
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "book_not_found", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, book)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, books)
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "book id must be a UUID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	book, err := h.service.Restock(r.Context(), id, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "book_not_found", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, "invalid_restock", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, book)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "book id must be a UUID")
		return
	}

	if err := h.service.RemoveBook(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrBookNotFound):
			httpx.RespondError(w, http.StatusNotFound, "book_not_found", err.Error())
		case errors.Is(err, ErrBookReferenced):
			httpx.RespondError(w, http.StatusConflict, "book_referenced", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
