package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/recipebook/apiserver/internal/services"
	"github.com/recipebook/apiserver/internal/session"
	"github.com/recipebook/apiserver/internal/storage"
	"github.com/recipebook/apiserver/internal/store/memory"
	"github.com/stretchr/testify/require"
)

const mediaBaseURL = "http://media.test"

type testAPI struct {
	srv      *httptest.Server
	mem      *memory.Store
	sessions *session.Manager
	objects  *mediaStub
	pinger   *pingerStub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	sessions, err := session.NewManager(session.Options{Secret: "test-secret"})
	require.NoError(t, err)

	api := &testAPI{
		mem:      memory.New(),
		sessions: sessions,
		objects:  &mediaStub{objects: map[string]storedObject{}},
		pinger:   &pingerStub{},
	}

	userService := services.NewUserService(api.mem.Users(), nil)
	recipeService := services.NewRecipeService(api.mem.Recipes(), nil)
	avatarService := services.NewAvatarService(api.mem.Users(), api.objects, mediaBaseURL)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz(api.pinger))
	AuthRouter(router, userService, sessions)
	router.Route("/recipes", func(r chi.Router) {
		RecipeRouter(r, recipeService, sessions.Require)
	})
	AvatarRouter(router, avatarService, sessions.Require)

	api.srv = httptest.NewServer(router)
	t.Cleanup(api.srv.Close)
	return api
}

// client returns an HTTP client with its own cookie jar, i.e. a fresh browser.
func (api *testAPI) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (api *testAPI) do(t *testing.T, client *http.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, api.srv.URL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, client, req)
}

func send(t *testing.T, client *http.Client, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// signup registers username and leaves client logged in.
func (api *testAPI) signup(t *testing.T, client *http.Client, username string) map[string]any {
	t.Helper()
	resp, body := api.do(t, client, http.MethodPost, "/signup", map[string]string{
		"username":  username,
		"password":  username + "password",
		"image_url": "https://img.example/" + username + ".png",
		"bio":       "Cooks things.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decodeObject(t, body)
}

func decodeObject(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func decodeErrors(t *testing.T, data []byte) []string {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out.Errors
}

type pingerStub struct {
	mu  sync.Mutex
	err error
}

func (p *pingerStub) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *pingerStub) PingContext(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

type storedObject struct {
	data        []byte
	contentType string
}

type mediaStub struct {
	mu      sync.Mutex
	objects map[string]storedObject
}

func (s *mediaStub) EnsureBucket(ctx context.Context) error { return nil }

func (s *mediaStub) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{data: data, contentType: contentType}
	return nil
}

func (s *mediaStub) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	info := storage.ObjectInfo{Key: key, Size: int64(len(obj.data)), ContentType: obj.contentType}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

func (s *mediaStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return errors.New("missing object")
	}
	delete(s.objects, key)
	return nil
}

func (s *mediaStub) Bucket() string { return "media" }

func (s *mediaStub) Close() error { return nil }

func (s *mediaStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
