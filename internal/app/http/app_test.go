package httpapp

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/handlers/slogdiscard"
	"portfolio_gallery/internal/lib/nonce"
	mw "portfolio_gallery/internal/middleware"
	"portfolio_gallery/internal/repository"
	chunk "portfolio_gallery/internal/services/chunk_service"
	filter "portfolio_gallery/internal/services/filter_service"
	gallery "portfolio_gallery/internal/services/gallery_service"
	legacy "portfolio_gallery/internal/services/legacy_service"
	migration "portfolio_gallery/internal/services/migration_service"
	settings "portfolio_gallery/internal/services/settings_service"
	user "portfolio_gallery/internal/services/user_service"
	"portfolio_gallery/internal/storage/memory"
	httprouters "portfolio_gallery/internal/transport/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const password = "password123"

type testServer struct {
	srv  *Server
	repo *repository.MemoryRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slogdiscard.NewDiscardLogger()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	repo := repository.NewMemoryRepo(memory.New())
	meta := repository.NewMetaStore(repo)
	options := repository.NewOptionStore(repo)

	legacySvc := legacy.NewLegacyService(log, meta, options)
	galleries := gallery.NewGalleryService(log, repo, meta, legacySvc)
	users := user.NewUserService(log, []user.Account{
		{Name: "root", Role: models.RoleAdministrator, PasswordHash: string(hash)},
		{Name: "ann", Role: models.RoleAuthor, PasswordHash: string(hash)},
	})
	nonces := nonce.NewIssuer("nonce-secret", time.Hour)

	routers := httprouters.NewRouter(log, httprouters.Routers{
		GalleryService:   galleries,
		LegacyService:    legacySvc,
		ChunkService:     chunk.NewChunkService(log, repo, galleries, chunk.DefaultTTL),
		FilterService:    filter.NewFilterService(log, options),
		MigrationService: migration.NewMigrationService(log, repo, meta, options, options, galleries, legacySvc),
		SettingsService:  settings.NewSettingsService(log, options, 0),
		UserService:      users,
		Nonces:           nonces,
	})

	srv := New(log, "session-secret", "", "0", routers, Guards{Users: users, Galleries: galleries, Nonces: nonces})
	srv.BuildRouters()

	return &testServer{srv: srv, repo: repo}
}

type client struct {
	t       *testing.T
	s       *testServer
	cookies []*http.Cookie
}

func (ts *testServer) client(t *testing.T) *client {
	return &client{t: t, s: ts}
}

func (c *client) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.s.srv.Echo().ServeHTTP(rec, req)

	if cks := rec.Result().Cookies(); len(cks) > 0 {
		c.cookies = cks
	}
	return rec
}

func (c *client) login(name string) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/login", fmt.Sprintf(`{"username":%q,"password":%q}`, name, password))
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (c *client) nonce(action string) string {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/api/v1/nonce?action="+action, "")
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Data struct {
			Nonce string `json:"nonce"`
		} `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Data.Nonce
}

func (c *client) createGallery(title string) int64 {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/galleries", fmt.Sprintf(`{"title":%q}`, title),
		mw.NonceHeader, c.nonce(mw.ActionGallery))
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Data struct {
			Gallery models.GalleryRecord `json:"gallery"`
		} `json:"data"`
	}
	require.NoError(c.t, jsoniter.Unmarshal(rec.Body.Bytes(), &out))
	return out.Data.Gallery.ID
}

func TestServer_Login(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	rec := c.do(http.MethodGet, "/api/v1/galleries", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/login", `{"username":"root","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/login", `{"username":"root"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.login("root")
	rec = c.do(http.MethodGet, "/api/v1/galleries", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/nonce?action=unknown", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, "/api/v1/galleries", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_MutationsRequireNonce(t *testing.T) {
	ts := newTestServer(t)
	root := ts.client(t)
	root.login("root")

	tests := []struct {
		name  string
		nonce string
	}{
		{name: "missing nonce"},
		{name: "wrong action", nonce: root.nonce(mw.ActionFilters)},
		{name: "garbage", nonce: "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := root.do(http.MethodPost, "/api/v1/galleries", `{"title":"X"}`, mw.NonceHeader, tt.nonce)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}

	ids, err := ts.repo.GalleryIDs(t.Context())
	require.NoError(t, err)
	assert.Empty(t, ids, "rejected requests must not write")

	id := root.createGallery("Portfolio")
	assert.Positive(t, id)
}

func TestServer_NonceBoundToUser(t *testing.T) {
	ts := newTestServer(t)
	root := ts.client(t)
	root.login("root")
	ann := ts.client(t)
	ann.login("ann")

	token := root.nonce(mw.ActionGallery)

	rec := ann.do(http.MethodPost, "/api/v1/galleries", `{"title":"X"}`, mw.NonceHeader, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_AuthorCapabilities(t *testing.T) {
	ts := newTestServer(t)
	root := ts.client(t)
	root.login("root")
	ann := ts.client(t)
	ann.login("ann")

	foreign := root.createGallery("Root's")
	own := ann.createGallery("Ann's")

	settingsBody := `{"settings":{"columns_lg":5}}`

	rec := ann.do(http.MethodPut, fmt.Sprintf("/api/v1/galleries/%d/settings", foreign), settingsBody,
		mw.NonceHeader, ann.nonce(mw.ActionGallery))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ann.do(http.MethodPut, fmt.Sprintf("/api/v1/galleries/%d/settings", own), settingsBody,
		mw.NonceHeader, ann.nonce(mw.ActionGallery))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ann.do(http.MethodDelete, fmt.Sprintf("/api/v1/galleries/%d", own), "",
		mw.NonceHeader, ann.nonce(mw.ActionGallery))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ann.do(http.MethodPost, "/api/v1/filters", `{"name":"Nature"}`, mw.NonceHeader, ann.nonce(mw.ActionFilters))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ann.do(http.MethodGet, "/api/v1/migration/status", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ann.do(http.MethodGet, "/api/v1/settings", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = root.do(http.MethodDelete, fmt.Sprintf("/api/v1/galleries/%d", own), "",
		mw.NonceHeader, root.nonce(mw.ActionGallery))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = root.do(http.MethodGet, fmt.Sprintf("/api/v1/galleries/%d", own), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AdminEndpoints(t *testing.T) {
	ts := newTestServer(t)
	root := ts.client(t)
	root.login("root")

	rec := root.do(http.MethodGet, "/api/v1/migration/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = root.do(http.MethodPost, "/api/v1/migration/run", `{}`, mw.NonceHeader, root.nonce(mw.ActionMigration))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = root.do(http.MethodPut, "/api/v1/settings", `{"chunk_size":100}`, mw.NonceHeader, root.nonce(mw.ActionSettings))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Data models.PluginSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 100, out.Data.ChunkSize)

	rec = root.do(http.MethodPut, "/api/v1/settings", `{"chunk_size":0}`, mw.NonceHeader, root.nonce(mw.ActionSettings))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = root.do(http.MethodPost, "/api/v1/migration/restore", `{"key":"pfg_backup_1_1"}`, mw.NonceHeader, root.nonce(mw.ActionMigration))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Infrastructure(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client(t)

	rec := c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
