package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/handler/dto"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/model"
	"github.com/rosterd/rosterd/internal/repository"
)

// StudentStore is the persistence surface the student handlers need.
type StudentStore interface {
	ListStudents(ctx context.Context, search string, page, limit int) ([]*model.Student, int64, error)
	GetStudent(ctx context.Context, id string) (*model.Student, error)
	CreateStudent(ctx context.Context, student *model.Student) (*model.Student, error)
	UpdateStudent(ctx context.Context, id string, update repository.StudentUpdate) (*model.Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// StudentHandler serves the /api/students CRUD surface.
type StudentHandler struct {
	logger  *slog.Logger
	store   StudentStore
	metrics metrics.Recorder

	defaultLimit int
	maxLimit     int
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(logger *slog.Logger, store StudentStore, rec metrics.Recorder, defaultLimit, maxLimit int) *StudentHandler {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &StudentHandler{
		logger:       logger,
		store:        store,
		metrics:      rec,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List handles GET /api/students.
// Supports ?page, ?limit and ?search (case-insensitive substring match
// on name or email).
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := dto.ParseListQuery(r.URL.Query(), h.defaultLimit, h.maxLimit)

	start := time.Now()
	students, total, err := h.store.ListStudents(r.Context(), q.Search, q.Page, q.Limit)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.metrics.IncStudentListed()
	h.metrics.ObserveListDuration(time.Since(start))

	if students == nil {
		students = []*model.Student{}
	}
	respondList(w, students, &Pagination{
		Total: total,
		Page:  q.Page,
		Pages: totalPages(total, q.Limit),
	})
}

// Get handles GET /api/students/{id}.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, err := h.store.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	respondData(w, http.StatusOK, student)
}

// Create handles POST /api/students.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	req.Sanitize()
	if err := req.Validate(); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	student, err := h.store.CreateStudent(r.Context(), &model.Student{
		Name:  req.Name,
		Age:   *req.Age,
		Grade: req.Grade,
		Email: req.Email,
	})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.metrics.IncStudentCreated()

	h.logger.Info("student created",
		slog.String("student_id", student.ID),
	)
	respondData(w, http.StatusCreated, student)
}

// Update handles PUT /api/students/{id}. The update is partial: only
// supplied fields change.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	req.Sanitize()
	if err := req.Validate(); err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	student, err := h.store.UpdateStudent(r.Context(), chi.URLParam(r, "id"), repository.StudentUpdate{
		Name:  req.Name,
		Age:   req.Age,
		Grade: req.Grade,
		Email: req.Email,
	})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.metrics.IncStudentUpdated()

	respondData(w, http.StatusOK, student)
}

// Delete handles DELETE /api/students/{id}.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteStudent(r.Context(), id); err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.metrics.IncStudentDeleted()

	h.logger.Info("student deleted",
		slog.String("student_id", id),
	)
	respondData(w, http.StatusOK, struct{}{})
}

// decodeJSON reads a request body into dst. Malformed or oversized
// bodies classify as validation failures; the raw decoder error stays
// server-side.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Wrap(apperr.KindValidation, "Request body too large", err)
		}
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	// A body with trailing content after the JSON value is malformed.
	if dec.More() {
		return apperr.New(apperr.KindValidation, "Invalid request body")
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

// totalPages computes ceil(total/limit) for the pagination envelope.
func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
