package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"vcc/pkg/testutil"
)

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	testutil.Given(t, "a configured admin token", func(t *testing.T) {
		h := RequireAdminToken("s3cret", logger)(ok)

		testutil.When(t, "the header matches", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/bootstrap", nil)
			req.Header.Set("X-Admin-Token", "s3cret")
			testutil.AssertStatus(t, testutil.DoRequest(h, req), http.StatusNoContent)
		})

		testutil.When(t, "the header is wrong", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/bootstrap", nil)
			req.Header.Set("X-Admin-Token", "guess")
			testutil.AssertStatusAndError(t, testutil.DoRequest(h, req), http.StatusUnauthorized, "unauthorized")
		})
	})

	testutil.Given(t, "no admin token configured", func(t *testing.T) {
		h := RequireAdminToken("", logger)(ok)
		testutil.Then(t, "even an empty header is rejected", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/bootstrap", nil)
			testutil.AssertStatus(t, testutil.DoRequest(h, req), http.StatusUnauthorized)
		})
	})
}
