package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fakeAPI is an in-memory stand-in for the flyer server.
type fakeAPI struct {
	mu          sync.Mutex
	companies   []Company
	flyers      map[uint][]Flyer
	failCompany uint
	accessToken string
	refreshes   atomic.Int32
	lastQuery   string
	authHeaders []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		companies: []Company{{ID: 1, Name: "Company A"}, {ID: 2, Name: "Company B"}, {ID: 3, Name: "Company C"}},
		flyers: map[uint][]Flyer{
			1: {{ID: 11, Title: "A1", ImagePath: "/uploads/a1.png", CompanyID: 1}},
			2: {{ID: 22, Title: "B2", ImagePath: "/uploads/b2.jpg", CompanyID: 2}, {ID: 21, Title: "B1", ImagePath: "/uploads/b1.png", CompanyID: 2}},
		},
		accessToken: "access-1",
	}
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		companyID := uint(2)
		name := "Company B"
		switch {
		case req["email"] == "admin@flyer.com" && req["password"] == "admin123":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "email": req["email"], "role": RoleAdmin, "companyId": nil, "companyName": nil, "accessToken": f.token(), "refreshToken": "refresh-1"})
		case req["email"] == "companyB@flyer.com" && req["password"] == "company123":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 3, "email": req["email"], "role": RoleCompany, "companyId": companyID, "companyName": name, "accessToken": f.token(), "refreshToken": "refresh-1"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password", "code": "INVALID_CREDENTIALS"})
		}
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		f.mu.Lock()
		f.accessToken = "access-" + strconv.Itoa(int(f.refreshes.Load())+1)
		token := f.accessToken
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
	})
	mux.HandleFunc("GET /api/flyer/companies", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.companies)
	}))
	mux.HandleFunc("GET /api/flyer/company/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		f.lastQuery = r.URL.RawQuery
		fail := f.failCompany == uint(id)
		flyers := append([]Flyer{}, f.flyers[uint(id)]...)
		f.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error", "code": "INTERNAL_ERROR"})
			return
		}
		writeJSON(w, http.StatusOK, flyers)
	}))
	mux.HandleFunc("GET /api/flyer/download/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "flyer not found", "code": "FLYER_NOT_FOUND"})
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="b1.png"`)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	mux.HandleFunc("DELETE /api/flyer/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "flyer deleted"})
	}))
	mux.HandleFunc("POST /api/flyer/upload", f.authed(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "code": "INVALID_FORM"})
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file uploaded", "code": "EMPTY_FILE"})
			return
		}
		file.Close()
		companyID, _ := strconv.Atoi(r.FormValue("companyId"))
		writeJSON(w, http.StatusCreated, Flyer{ID: 99, Title: r.FormValue("title"), ImagePath: "/uploads/x" + filepath.Ext(header.Filename), CompanyID: uint(companyID)})
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accessToken
}

func (f *fakeAPI) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessToken = "rotated"
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, header)
		want := "Bearer " + f.accessToken
		f.mu.Unlock()
		if header != want {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid bearer token", "code": "UNAUTHORIZED"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func loggedIn(t *testing.T, api *fakeAPI, email, password string) *Client {
	t.Helper()
	c := New(api.server(t).URL, NewSession(nil))
	_, err := c.Login(context.Background(), email, password)
	require.NoError(t, err)
	return c
}

func TestClient_Login(t *testing.T) {
	api := newFakeAPI()
	c := New(api.server(t).URL, nil)

	id, err := c.Login(context.Background(), "companyB@flyer.com", "company123")
	require.NoError(t, err)
	assert.Equal(t, RoleCompany, id.Role)
	require.NotNil(t, id.CompanyID)
	assert.Equal(t, uint(2), *id.CompanyID)

	state, ok := c.Session().Current()
	require.True(t, ok)
	assert.Equal(t, "access-1", state.AccessToken)
	assert.Equal(t, "refresh-1", state.RefreshToken)
}

func TestClient_LoginRejected(t *testing.T) {
	api := newFakeAPI()
	c := New(api.server(t).URL, nil)

	_, err := c.Login(context.Background(), "companyB@flyer.com", "wrongpass")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, "invalid email or password", apiErr.Message)

	_, ok := c.Session().Current()
	assert.False(t, ok)
}

func TestClient_FlyersSendsMonth(t *testing.T) {
	api := newFakeAPI()
	c := loggedIn(t, api, "admin@flyer.com", "admin123")

	flyers, err := c.Flyers(context.Background(), 2, &Month{Year: 2024, Month: time.March})
	require.NoError(t, err)
	assert.Len(t, flyers, 2)
	assert.Equal(t, "month=3&year=2024", api.lastQuery)
}

func TestClient_RefreshesOnceOnUnauthorized(t *testing.T) {
	api := newFakeAPI()
	c := loggedIn(t, api, "admin@flyer.com", "admin123")
	api.expire()

	companies, err := c.Companies(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 3)
	assert.Equal(t, int32(1), api.refreshes.Load())

	state, _ := c.Session().Current()
	assert.Equal(t, "access-2", state.AccessToken)
}

func TestClient_UploadDownloadDelete(t *testing.T) {
	api := newFakeAPI()
	c := loggedIn(t, api, "admin@flyer.com", "admin123")
	ctx := context.Background()

	flyer, err := c.Upload(ctx, "Sale", 2, "/tmp/promo.png", strings.NewReader(string(pngBytes)))
	require.NoError(t, err)
	assert.Equal(t, "Sale", flyer.Title)
	assert.Equal(t, uint(2), flyer.CompanyID)
	assert.True(t, strings.HasSuffix(flyer.ImagePath, ".png"))

	file, err := c.Download(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, "b1.png", file.Name)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, pngBytes, file.Data)

	_, err = c.Download(ctx, 404)
	assert.True(t, IsNotFound(err))

	assert.NoError(t, c.Delete(ctx, 21))
}

func TestClient_LogoutClearsSession(t *testing.T) {
	api := newFakeAPI()
	c := loggedIn(t, api, "admin@flyer.com", "admin123")

	require.NoError(t, c.Logout(context.Background()))
	_, ok := c.Session().Current()
	assert.False(t, ok)
	assert.NoError(t, c.Logout(context.Background()))
}

func TestClient_ImageURL(t *testing.T) {
	c := New("http://localhost:8080/", nil)
	assert.Equal(t, "http://localhost:8080/uploads/a.png", c.ImageURL(Flyer{ImagePath: "/uploads/a.png"}))
}

type memoryPersister struct {
	state   *State
	saves   int
	cleared bool
}

func (p *memoryPersister) Load() (*State, error) { return p.state, nil }
func (p *memoryPersister) Save(s *State) error {
	copied := *s
	p.state = &copied
	p.saves++
	return nil
}
func (p *memoryPersister) Clear() error {
	p.state = nil
	p.cleared = true
	return nil
}

func TestSession_PersistsAndRestores(t *testing.T) {
	p := &memoryPersister{}
	s := NewSession(p)
	require.NoError(t, s.Set(State{Identity: Identity{ID: 1, Role: RoleAdmin}, AccessToken: "a"}))
	assert.Equal(t, 1, p.saves)

	restored := NewSession(p)
	require.NoError(t, restored.Restore())
	id := restored.Identity()
	require.NotNil(t, id)
	assert.True(t, id.IsAdmin())

	require.NoError(t, restored.Clear())
	assert.True(t, p.cleared)
	assert.Nil(t, restored.Identity())
}

func TestSession_CurrentReturnsCopy(t *testing.T) {
	s := NewSession(nil)
	require.NoError(t, s.Set(State{AccessToken: "a"}))
	state, _ := s.Current()
	state.AccessToken = "changed"
	again, _ := s.Current()
	assert.Equal(t, "a", again.AccessToken)
}

func TestClient_DownloadSharerWritesFile(t *testing.T) {
	api := newFakeAPI()
	c := loggedIn(t, api, "companyB@flyer.com", "company123")
	d := NewCompanyDashboard(c)
	dir := t.TempDir()
	downloads := &DownloadSharer{Dir: dir}

	used, err := d.Share(context.Background(), Flyer{ID: 21, Title: "Summer Sale!", ImagePath: "/uploads/b1.png", CompanyID: 2}, downloads)
	require.NoError(t, err)
	assert.Equal(t, "download", used.Name())

	data, err := os.ReadFile(filepath.Join(dir, "Summer Sale_.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}
