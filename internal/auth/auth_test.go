package auth

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "expenses/pkg/domain-errors"
	"expenses/pkg/requestcontext"
	"expenses/pkg/testutil"
)

func newTestService(t *testing.T) *UserService {
	t.Helper()
	svc, err := NewUserService("alice", "s3cret")
	require.NoError(t, err)
	return svc
}

func TestUserServiceValidate(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		want     bool
		code     dErrors.Code
	}{
		{name: "match", username: "alice", password: "s3cret", want: true},
		{name: "wrong password", username: "alice", password: "nope"},
		{name: "wrong username", username: "bob", password: "s3cret"},
		{name: "username is case sensitive", username: "Alice", password: "s3cret"},
		{name: "blank username", username: " ", password: "s3cret", code: dErrors.CodeInvalidArgument},
		{name: "blank password", username: "alice", password: "", code: dErrors.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Validate(tt.username, tt.password)
			if tt.code != "" {
				assert.True(t, dErrors.HasCode(err, tt.code))
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUserServiceFromHash(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	svc, err := NewUserServiceFromHash("admin", hash)
	require.NoError(t, err)
	ok, err := svc.Validate("admin", "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewUserServiceFromHash("", hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))

	broken, err := NewUserServiceFromHash("admin", "not-a-bcrypt-hash")
	require.NoError(t, err)
	_, err = broken.Validate("admin", "pw")
	assert.Error(t, err)
}

func TestRequireBasicAuth(t *testing.T) {
	svc := newTestService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seenUser string
	protected := RequireBasicAuth(svc, "expenses", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = requestcontext.Username(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid credentials", func(t *testing.T) {
		req := testutil.WithBasicAuth(testutil.NewRequest(t, http.MethodGet, "/api/expenses"), "alice", "s3cret")
		rr := testutil.DoRequest(protected, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "alice", seenUser)
	})

	t.Run("missing header", func(t *testing.T) {
		rr := testutil.DoRequest(protected, testutil.NewRequest(t, http.MethodGet, "/api/expenses"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		assert.Contains(t, rr.Header().Get("WWW-Authenticate"), `realm="expenses"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := testutil.WithBasicAuth(testutil.NewRequest(t, http.MethodGet, "/api/expenses"), "alice", "guess")
		rr := testutil.DoRequest(protected, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("blank password", func(t *testing.T) {
		req := testutil.WithBasicAuth(testutil.NewRequest(t, http.MethodGet, "/api/expenses"), "alice", "")
		rr := testutil.DoRequest(protected, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}
