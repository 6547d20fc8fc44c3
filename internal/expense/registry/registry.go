// Package registry orchestrates expense operations: it validates input, fills
// defaults, assigns identities and translates store failures into domain
// errors.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"expenses/internal/expense/filter"
	"expenses/internal/expense/metrics"
	"expenses/internal/expense/models"
	dErrors "expenses/pkg/domain-errors"
	"expenses/pkg/platform/sentinel"
)

const tracerName = "expenses/internal/expense/registry"

type Repository interface {
	GetAll(ctx context.Context, f filter.Filter) ([]*models.Expense, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Insert(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, id uuid.UUID, details models.ExpenseDetails) (*models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Clock supplies the default date of new expenses.
type Clock func() time.Time

// Registry is the entry point for expense operations.
type Registry struct {
	repo    Repository
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     Clock
	newID   func() uuid.UUID
}

type Option func(r *Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithClock replaces time.Now as the source of default dates.
func WithClock(clock Clock) Option {
	return func(r *Registry) {
		r.now = clock
	}
}

// WithIDGenerator replaces uuid.New as the source of new expense ids.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(r *Registry) {
		r.newID = gen
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tracer
	}
}

// New constructs a Registry.
func New(repo Repository, opts ...Option) *Registry {
	r := &Registry{
		repo:   repo,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// GetAll returns every expense matching params.
func (r *Registry) GetAll(ctx context.Context, params models.FilterParameters) (_ []*models.Expense, err error) {
	ctx, done := r.begin(ctx, metrics.OpGetAll,
		attribute.String("filter.from", params.From),
		attribute.String("filter.to", params.To),
		attribute.String("filter.in", params.In),
	)
	defer func() { done(err) }()

	expenses, err := r.repo.GetAll(ctx, filter.New(params))
	if err != nil {
		return nil, translate(ctx, err, "failed to list expenses")
	}
	return expenses, nil
}

// Get returns the expense with id, or nil when there is none.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (_ *models.Expense, err error) {
	ctx, done := r.begin(ctx, metrics.OpGet, attribute.String("expense.id", id.String()))
	defer func() { done(err) }()

	expense, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(ctx, err, "failed to load expense")
	}
	return expense, nil
}

// Insert validates details, fills the date and payment method when absent and
// stores a new expense under a fresh id. The constructed expense is returned
// as built; it is not re-read from the store.
func (r *Registry) Insert(ctx context.Context, details models.ExpenseDetails) (_ *models.Expense, err error) {
	ctx, done := r.begin(ctx, metrics.OpInsert)
	defer func() { done(err) }()

	if err := details.Validate(); err != nil {
		return nil, err
	}
	if details.Date == nil {
		now := r.now().UTC()
		details.Date = &now
	}
	if details.PaymentMethod == nil {
		details.PaymentMethod = models.PaymentMethodUndefined.Ptr()
	}
	expense := &models.Expense{ID: r.newID(), Details: details}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("expense.id", expense.ID.String()))

	if err := r.repo.Insert(ctx, expense); err != nil {
		return nil, translate(ctx, err, "failed to create expense")
	}
	if r.metrics != nil {
		r.metrics.IncrementExpensesCreated()
	}
	return expense, nil
}

// Update validates details and overwrites the stored expense with them.
func (r *Registry) Update(ctx context.Context, id uuid.UUID, details models.ExpenseDetails) (_ *models.Expense, err error) {
	ctx, done := r.begin(ctx, metrics.OpUpdate, attribute.String("expense.id", id.String()))
	defer func() { done(err) }()

	if err := details.Validate(); err != nil {
		return nil, err
	}
	expense, err := r.repo.Update(ctx, id, details)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) && ctx.Err() == nil {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, notFoundMessage(id))
		}
		return nil, translate(ctx, err, "failed to update expense")
	}
	return expense, nil
}

// Delete removes the expense with id. Removing an absent expense succeeds.
func (r *Registry) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := r.begin(ctx, metrics.OpDelete, attribute.String("expense.id", id.String()))
	defer func() { done(err) }()

	if err := r.repo.Delete(ctx, id); err != nil {
		return translate(ctx, err, "failed to delete expense")
	}
	return nil
}

func notFoundMessage(id uuid.UUID) string {
	return fmt.Sprintf("No expense found with given ID: %s", id)
}

// begin opens the span and logs the start of op. The returned func closes
// both and records metrics.
func (r *Registry) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "expense."+op, trace.WithAttributes(attrs...))
	r.logger.DebugContext(ctx, "expense operation invoked", "operation", op)

	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()

		elapsed := time.Since(start)
		if err != nil && serverFault(err) {
			r.logger.ErrorContext(ctx, "expense operation failed",
				"operation", op,
				"elapsed", elapsed,
				"error", err,
			)
		} else {
			r.logger.DebugContext(ctx, "expense operation completed",
				"operation", op,
				"elapsed", elapsed,
				"outcome", outcome,
			)
		}
		if r.metrics != nil {
			r.metrics.Observe(op, start, outcome)
		}
	}
}

func serverFault(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeInvariantViolation, dErrors.CodeTimeout:
		return true
	}
	return false
}

// translate maps store and context failures onto domain codes. A done ctx
// wins over whatever the store reported, since drivers surface an aborted call
// as a query or network error. Errors that already carry a code pass through.
func translate(ctx context.Context, err error, msg string) error {
	if cause := ctx.Err(); cause != nil {
		return aborted(err, cause)
	}
	var de *dErrors.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return aborted(err, err)
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "expense not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "expense already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "expense store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// aborted separates a caller that went away from a deadline running out.
func aborted(err, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeCancelled, "operation cancelled")
}
