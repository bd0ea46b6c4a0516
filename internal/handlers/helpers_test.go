package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/repository/repotest"
	"github.com/arzan03/FilesManager/internal/services"
	"github.com/arzan03/FilesManager/internal/session"
	"github.com/arzan03/FilesManager/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingPublisher keeps published jobs so tests can run them by hand.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []models.ThumbnailJob
}

func (p *recordingPublisher) Publish(_ context.Context, fileID, userID string) (models.ThumbnailJob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job := models.ThumbnailJob{ID: fileID, FileID: fileID, UserID: userID}
	p.jobs = append(p.jobs, job)
	return job, nil
}

func (p *recordingPublisher) Jobs() []models.ThumbnailJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ThumbnailJob(nil), p.jobs...)
}

type alive bool

func (a alive) IsAlive(context.Context) bool { return bool(a) }

type testServer struct {
	app   *fiber.App
	users *repotest.Users
	files *repotest.Files
	store *storage.LocalStore
	jobs  *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop().Sugar()

	users := repotest.NewUsers()
	files := repotest.NewFiles()
	sessions := session.NewMemoryStore(session.DefaultTTL, 0)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	jobs := &recordingPublisher{}

	h := NewHandler(
		services.NewAppService(users, files, sessions, alive(true)),
		services.NewAuthService(users, sessions, log),
		services.NewFileService(files, store, jobs, log, services.FileServiceOptions{}),
		log,
	)
	return &testServer{
		app:   NewApp(h, AppOptions{BodyLimit: 16 << 20}),
		users: users,
		files: files,
		store: store,
		jobs:  jobs,
	}
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r response) JSON(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (r response) Error(t *testing.T) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	r.JSON(t, &body)
	return body.Error
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

func basicAuth(email, password string) map[string]string {
	return map[string]string{
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password)),
	}
}

func tokenHeader(token string) map[string]string {
	return map[string]string{"X-Token": token}
}

// login registers a user and returns a session token for it.
func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/users", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	resp = s.do(t, http.MethodGet, "/connect", nil, basicAuth(email, password))
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var out struct {
		Token string `json:"token"`
	}
	resp.JSON(t, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

// fileJSON mirrors the public view of a record.
type fileJSON struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	IsPublic bool            `json:"isPublic"`
	ParentID json.RawMessage `json:"parentId"`
}
