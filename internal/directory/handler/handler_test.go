package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcc/internal/directory/models"
	"vcc/internal/directory/service"
	profile "vcc/internal/profile/models"
	profilestore "vcc/internal/profile/store/memory"
	"vcc/pkg/domain"
	auditmemory "vcc/pkg/platform/audit/store/memory"
	"vcc/pkg/testutil"
)

type fixture struct {
	router   http.Handler
	approved *profile.Profile
	pending  *profile.Profile
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	profiles := profilestore.New()

	approved, err := profile.NewProfile(domain.NewProfileID(), "ada@example.com", "hash", "Ada", now)
	require.NoError(t, err)
	approved.ApplySubmission(profile.Application{SubmissionRole: "Developer", Handle: "ada", Bio: "compilers"}, "", now)
	approved.ApplyTransition(profile.StatusApproved, "", now.Add(time.Hour))
	require.NoError(t, profiles.Create(ctx, approved))

	pending, err := profile.NewProfile(domain.NewProfileID(), "grace@example.com", "hash", "Grace", now)
	require.NoError(t, err)
	pending.ApplySubmission(profile.Application{SubmissionRole: "Researcher"}, "", now.Add(time.Minute))
	require.NoError(t, profiles.Create(ctx, pending))

	svc, err := service.New(profiles, service.WithAuditReader(auditmemory.NewInMemoryStore()))
	require.NoError(t, err)
	r := chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return fixture{router: r, approved: approved, pending: pending}
}

func TestListDirectory(t *testing.T) {
	f := newFixture(t)

	rec := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory"))
	require.Equal(t, http.StatusOK, rec.Code)
	page := testutil.UnmarshalResponse[models.Page](t, rec)
	require.Len(t, page.Items, 1)
	assert.Equal(t, f.approved.ID.String(), page.Items[0].ID)
	assert.Equal(t, "ada", page.Items[0].Handle)

	rec = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory?limit=abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory?cursor=%25%25"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeaturedDirectory(t *testing.T) {
	f := newFixture(t)

	rec := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory/featured"))
	require.Equal(t, http.StatusOK, rec.Code)
	featured := testutil.UnmarshalResponse[models.Featured](t, rec)
	require.Len(t, featured.Items, 1)
	assert.Equal(t, f.approved.ID.String(), featured.Items[0].ID)
	assert.Equal(t, "compilers", featured.Items[0].Bio)
	assert.NotContains(t, rec.Body.String(), "grace@example.com")

	rec = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory/featured?limit=x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfileViews(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous gets the public view", func(t *testing.T) {
		rec := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory/"+f.approved.ID.String()))
		require.Equal(t, http.StatusOK, rec.Code)
		body := *testutil.UnmarshalResponse[map[string]any](t, rec)
		assert.Equal(t, "compilers", body["bio"])
		assert.NotContains(t, body, "email")
		assert.NotContains(t, body, "status")
	})

	t.Run("unpublished is not found for members", func(t *testing.T) {
		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/directory/"+f.pending.ID.String()), testutil.PrincipalWith())
		assert.Equal(t, http.StatusNotFound, testutil.DoRequest(f.router, req).Code)
	})

	t.Run("reviewer preview includes review data", func(t *testing.T) {
		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/directory/"+f.pending.ID.String()), testutil.PrincipalWith(domain.RoleReviewer))
		rec := testutil.DoRequest(f.router, req)
		require.Equal(t, http.StatusOK, rec.Code)
		body := testutil.UnmarshalResponse[models.DetailProfile](t, rec)
		assert.Equal(t, "grace@example.com", body.Email)
		assert.Equal(t, "PENDING", body.Status)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/directory/not-a-uuid"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQueues(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		principal *domain.Principal
		path      string
		want      int
	}{
		{"anonymous", nil, "/queues/PENDING", http.StatusUnauthorized},
		{"member", testutil.PrincipalWith(), "/queues/PENDING", http.StatusUnauthorized},
		{"reviewer pending", testutil.PrincipalWith(domain.RoleReviewer), "/queues/PENDING", http.StatusOK},
		{"reviewer ready", testutil.PrincipalWith(domain.RoleReviewer), "/queues/READY_FOR_APPROVAL", http.StatusUnauthorized},
		{"approver ready", testutil.PrincipalWith(domain.RoleApprover), "/queues/READY_FOR_APPROVAL", http.StatusOK},
		{"unknown status", testutil.PrincipalWith(domain.RoleAdmin), "/queues/ARCHIVED", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, tt.path)
			if tt.principal != nil {
				req = testutil.WithPrincipal(req, tt.principal)
			}
			assert.Equal(t, tt.want, testutil.DoRequest(f.router, req).Code)
		})
	}

	req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/queues/PENDING"), testutil.PrincipalWith(domain.RoleReviewer))
	queue := testutil.UnmarshalResponse[models.Queue](t, testutil.DoRequest(f.router, req))
	require.Len(t, queue.Items, 1)
	assert.Equal(t, f.pending.ID.String(), queue.Items[0].ID)
}

func TestAuditTrailIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	path := "/admin/profiles/" + f.pending.ID.String() + "/audit"

	req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, path), testutil.PrincipalWith(domain.RoleApprover))
	assert.Equal(t, http.StatusUnauthorized, testutil.DoRequest(f.router, req).Code)

	req = testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, path), testutil.PrincipalWith(domain.RoleAdmin))
	rec := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := *testutil.UnmarshalResponse[map[string]any](t, rec)
	assert.Contains(t, body, "events")
}
