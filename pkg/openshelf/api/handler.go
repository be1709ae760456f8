// Package api exposes the catalog service over HTTP.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/openshelf/openshelf/pkg/openshelf"
)

const defaultMaxUploadBytes = 64 << 20

// Handler serves the public catalog API endpoints.
type Handler struct {
	service        openshelf.Service
	maxUploadBytes int64
}

// NewHandler creates a handler backed by the given service.
func NewHandler(service openshelf.Service) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: defaultMaxUploadBytes,
	}
}

// Routes returns the router for the catalog endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/books", h.ListBooks)
	r.Post("/upload", h.UploadBook)
	r.Delete("/books/{id}", h.DeleteBook)
	return r
}

// ListBooksResponse is the payload of GET /books.
type ListBooksResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Books   []openshelf.Book `json:"books"`
}

// UploadBookResponse is the payload of POST /upload.
type UploadBookResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Book    openshelf.Book `json:"book"`
	Total   int            `json:"total"`
}

// DeleteBookResponse is the payload of DELETE /books/{id}.
type DeleteBookResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Removed openshelf.Book `json:"removed"`
}

// ErrorResponse is the uniform failure payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ListBooks returns every catalog entry.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if books == nil {
		books = []openshelf.Book{}
	}

	render.JSON(w, r, ListBooksResponse{Success: true, Count: len(books), Books: books})
}

// UploadBook accepts a multipart upload with one file field plus the
// catalog text fields.
func (h *Handler) UploadBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		writeError(w, r, http.StatusBadRequest, "failed to read file")
		return
	}

	year := 0
	if raw := r.FormValue("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "year must be a number")
			return
		}
	}

	result, err := h.service.UploadBook(r.Context(), openshelf.UploadBookRequest{
		FileName:    header.Filename,
		Data:        data,
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Genre:       r.FormValue("genre"),
		Year:        year,
		Language:    r.FormValue("language"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, UploadBookResponse{
		Success: true,
		Message: "Book uploaded successfully",
		Book:    result.Book,
		Total:   result.Total,
	})
}

// DeleteBook removes one catalog entry; the caller must present the
// admin credential as a bearer token.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}

	removed, err := h.service.DeleteBook(r.Context(), id, bearerToken(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, DeleteBookResponse{
		Success: true,
		Message: "Book removed",
		Removed: *removed,
	})
}

// writeServiceError maps service failures onto the uniform error
// payload. Unexpected errors are logged server-side and reported with a
// generic message so internals do not leak to clients.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *openshelf.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, r, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, openshelf.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, openshelf.ErrBookNotFound):
		writeError(w, r, http.StatusNotFound, "book not found")
	case errors.Is(err, openshelf.ErrCatalogConflict):
		slog.Warn("catalog conflict exhausted retries", "error", err)
		writeError(w, r, http.StatusInternalServerError, "catalog was updated concurrently, please retry")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Success: false, Error: message})
}

// bearerToken extracts the credential from an Authorization header of
// the form "Bearer <token>".
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}
