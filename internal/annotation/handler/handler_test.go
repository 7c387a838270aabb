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

	"vcc/internal/annotation/models"
	"vcc/internal/annotation/service"
	commentstore "vcc/internal/annotation/store/memory"
	profile "vcc/internal/profile/models"
	profilestore "vcc/internal/profile/store/memory"
	"vcc/pkg/domain"
	"vcc/pkg/testutil"
)

func newRouter(t *testing.T) (http.Handler, domain.ProfileID) {
	t.Helper()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	profiles := profilestore.New()
	p, err := profile.NewProfile(domain.NewProfileID(), "ada@example.com", "hash", "Ada", now)
	require.NoError(t, err)
	p.ApplySubmission(profile.Application{SubmissionRole: "Developer"}, "", now)
	require.NoError(t, profiles.Create(context.Background(), p))

	svc, err := service.New(commentstore.New(), profiles)
	require.NoError(t, err)
	r := chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler)).Register(r)
	return r, p.ID
}

func TestCommentThread(t *testing.T) {
	router, id := newRouter(t)
	reviewer := testutil.PrincipalWith(domain.RoleReviewer)
	path := "/applications/" + id.String() + "/comments"

	// Given a reviewer posts a note
	post := testutil.WithPrincipal(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": "checked references"}), reviewer)
	rec := testutil.DoRequest(router, post)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := testutil.UnmarshalResponse[models.CommentResponse](t, rec)
	assert.Equal(t, "checked references", created.Content)
	assert.Equal(t, reviewer.ID.String(), created.AuthorID)

	// When the thread is read
	list := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, path), reviewer)
	rec = testutil.DoRequest(router, list)

	// Then it contains the note
	require.Equal(t, http.StatusOK, rec.Code)
	body := testutil.UnmarshalResponse[struct {
		Comments []models.CommentResponse `json:"comments"`
	}](t, rec)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, created.ID, body.Comments[0].ID)
}

func TestCommentErrors(t *testing.T) {
	router, id := newRouter(t)
	path := "/applications/" + id.String() + "/comments"

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous")

	member := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, path), testutil.PrincipalWith())
	assert.Equal(t, http.StatusUnauthorized, testutil.DoRequest(router, member).Code, "member without comment capability")

	empty := testutil.WithPrincipal(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": ""}), testutil.PrincipalWith(domain.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, testutil.DoRequest(router, empty).Code)

	unknown := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/applications/"+domain.NewProfileID().String()+"/comments"), testutil.PrincipalWith(domain.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, testutil.DoRequest(router, unknown).Code)
}
