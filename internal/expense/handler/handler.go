package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"expenses/internal/expense/models"
	dErrors "expenses/pkg/domain-errors"
	"expenses/pkg/platform/httputil"
	"expenses/pkg/requestcontext"
)

// Registry defines the expense operations the handler exposes.
type Registry interface {
	GetAll(ctx context.Context, params models.FilterParameters) ([]*models.Expense, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Insert(ctx context.Context, details models.ExpenseDetails) (*models.Expense, error)
	Update(ctx context.Context, id uuid.UUID, details models.ExpenseDetails) (*models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler serves the expense API.
type Handler struct {
	registry Registry
	logger   *slog.Logger
}

// New creates a new expense Handler.
func New(registry Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Register registers the expense routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/expenses", func(r chi.Router) {
		r.Get("/", h.handleGetAll)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := ParseFilterParameters(r.URL.Query())
	if err != nil {
		h.writeError(ctx, w, err, "invalid query parameter")
		return
	}

	expenses, err := h.registry.GetAll(ctx, params)
	if err != nil {
		h.writeError(ctx, w, err, "failed to list expenses")
		return
	}

	h.logger.InfoContext(ctx, "expenses listed",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(expenses),
	)
	httputil.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, err, "invalid expense id")
		return
	}

	expense, err := h.registry.Get(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err, "failed to get expense")
		return
	}
	if expense == nil {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeNotFound, notFoundMessage(id)), "expense not found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, expense)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := decodeDetails(r)
	if err != nil {
		h.writeError(ctx, w, err, "invalid create expense request")
		return
	}

	expense, err := h.registry.Insert(ctx, details)
	if err != nil {
		h.writeError(ctx, w, err, "failed to create expense")
		return
	}

	h.logger.InfoContext(ctx, "expense created",
		"request_id", requestcontext.RequestID(ctx),
		"expense_id", expense.ID,
	)
	w.Header().Set("Location", "/api/expenses/"+expense.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, expense)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, err, "invalid expense id")
		return
	}
	details, err := decodeDetails(r)
	if err != nil {
		h.writeError(ctx, w, err, "invalid update expense request")
		return
	}

	expense, err := h.registry.Update(ctx, id, details)
	if err != nil {
		h.writeError(ctx, w, err, "failed to update expense")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, expense)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, err, "invalid expense id")
		return
	}

	if err := h.registry.Delete(ctx, id); err != nil {
		h.writeError(ctx, w, err, "failed to delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError logs err at a level matching its status and writes the envelope.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	code := dErrors.CodeOf(err)
	status := httputil.StatusFor(code)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"code", code,
		"error", err.Error(),
	}
	switch {
	case code == dErrors.CodeCancelled:
		h.logger.WarnContext(ctx, "operation cancelled by client", attrs...)
	case status >= http.StatusInternalServerError:
		h.logger.ErrorContext(ctx, msg, attrs...)
	default:
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id: must be a UUID")
	}
	return id, nil
}

func decodeDetails(r *http.Request) (models.ExpenseDetails, error) {
	var details models.ExpenseDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		return models.ExpenseDetails{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return details, nil
}

func notFoundMessage(id uuid.UUID) string {
	return "No expense found with given ID: " + id.String()
}
