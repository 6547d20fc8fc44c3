package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/auth"
	"expenses/internal/docstore/memory"
	"expenses/internal/expense/handler"
	expensemetrics "expenses/internal/expense/metrics"
	"expenses/internal/expense/models"
	"expenses/internal/expense/registry"
	"expenses/internal/expense/repository"
	"expenses/internal/platform/config"
	"expenses/internal/platform/metrics"
	"expenses/internal/platform/middleware"
	"expenses/pkg/platform/sentinel"
)

type unhealthyContainer struct {
	*memory.Container
}

func (unhealthyContainer) Health(context.Context) error { return sentinel.ErrUnavailable }

func newTestAPI(t *testing.T) (http.Handler, http.Handler) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	container := memory.New()
	reg := metrics.NewRegistry()

	users, err := newUserService(config.Auth{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	expenses := registry.New(repository.New(container),
		registry.WithLogger(log),
		registry.WithMetrics(expensemetrics.New(reg)),
	)
	api := newAPIRouter(handler.New(expenses, log), users, metrics.New(reg), 5*time.Second, log)
	return api, newOpsRouter(container, reg)
}

func TestAPIRequiresBasicAuth(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `realm="expenses"`)
}

func TestAPICreateThenList(t *testing.T) {
	api, ops := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"value":12.5,"reason":"coffee"}`))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("admin", "s3cret")
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	req.SetBasicAuth("admin", "s3cret")
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":"coffee"`)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	ops.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "expenses_created_total 1")
	assert.Contains(t, string(body), `route="/api/expenses`)
}

func TestOpsHealth(t *testing.T) {
	_, ops := newTestAPI(t)

	rec := httptest.NewRecorder()
	ops.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	unhealthy := newOpsRouter(unhealthyContainer{memory.New()}, metrics.NewRegistry())
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewUserServicePrefersHash(t *testing.T) {
	hash, err := auth.HashPassword("from-hash")
	require.NoError(t, err)

	users, err := newUserService(config.Auth{Username: "admin", Password: "ignored", PasswordHash: hash})
	require.NoError(t, err)

	ok, err := users.Validate("admin", "from-hash")
	require.NoError(t, err)
	assert.True(t, ok)
}

type panickingRegistry struct{}

func (panickingRegistry) GetAll(context.Context, models.FilterParameters) ([]*models.Expense, error) {
	panic("listing exploded")
}

func (panickingRegistry) Get(context.Context, uuid.UUID) (*models.Expense, error) { return nil, nil }

func (panickingRegistry) Insert(context.Context, models.ExpenseDetails) (*models.Expense, error) {
	return nil, nil
}

func (panickingRegistry) Update(context.Context, uuid.UUID, models.ExpenseDetails) (*models.Expense, error) {
	return nil, nil
}

func (panickingRegistry) Delete(context.Context, uuid.UUID) error { return nil }

func TestPanicLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	users, err := newUserService(config.Auth{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	api := newAPIRouter(handler.New(panickingRegistry{}, log), users, nil, 5*time.Second, log)

	req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	req.SetBasicAuth("admin", "s3cret")
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "panic recovered" {
			found = true
			assert.Equal(t, "req-42", entry["request_id"])
		}
	}
	assert.True(t, found, "no panic log in:\n%s", buf.String())
}
