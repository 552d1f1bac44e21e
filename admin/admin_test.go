package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/testutil"
	"freelancehub/tokens"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memRepo struct {
	mu     sync.Mutex
	admins map[string]*models.Admin
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[email]; ok {
		return a, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memRepo) Insert(_ context.Context, a *models.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[a.Email] = a
	return nil
}

func newService(token string) (*Service, *tokens.Manager) {
	tm := tokens.NewManager([]byte("test-secret"), time.Hour, nil)
	return NewService(&memRepo{admins: map[string]*models.Admin{}}, tm, token, zap.NewNop()), tm
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	in := Input{Email: "root@hub.test", Password: "pw", FullName: "Root"}

	disabled, _ := newService("")
	_, err := disabled.Bootstrap(ctx, "", in)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))

	svc, _ := newService("s3cret")
	_, err = svc.Bootstrap(ctx, "wrong", in)
	assert.EqualError(t, err, "Forbidden")
	_, err = svc.Bootstrap(ctx, "s3cret", Input{Email: "root@hub.test"})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	a, err := svc.Bootstrap(ctx, "s3cret", in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, a.Role)
	assert.Equal(t, "Root", a.Profile.FullName)
	assert.True(t, strings.HasPrefix(a.Password, "$2"))

	_, err = svc.Bootstrap(ctx, "s3cret", in)
	assert.ErrorIs(t, err, ErrExists)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestSignin(t *testing.T) {
	ctx := context.Background()
	svc, tm := newService("")
	_, err := svc.Create(ctx, Input{Email: "Root@Hub.test", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Signin(ctx, "root@hub.test", "nope")
	assert.EqualError(t, err, "Invalid credentials")
	_, err = svc.Signin(ctx, "", "pw")
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	sess, err := svc.Signin(ctx, "ROOT@hub.test", "pw")
	require.NoError(t, err)
	claims, err := tm.Parse(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, sess.Admin.ID.Hex(), claims.UserID())
}

func TestHandlers(t *testing.T) {
	svc, _ := newService("s3cret")
	h := NewHandler(svc, zap.NewNop())
	router := httprouter.New()
	router.GET("/api/admin/health", h.Health)
	router.POST("/api/admin/bootstrap", h.Bootstrap)
	router.POST("/api/admin/signin", h.Signin)

	do := func(path, body string, header map[string]string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		method := http.MethodPost
		if body == "" {
			method = http.MethodGet
		}
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		for k, v := range header {
			req.Header.Set(k, v)
		}
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do("/api/admin/health", "", nil)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	body := `{"email":"root@hub.test","password":"pw"}`
	rec = do("/api/admin/bootstrap", body, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())

	rec = do("/api/admin/bootstrap", body, map[string]string{"X-Bootstrap-Token": "s3cret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin"`)
	assert.NotContains(t, rec.Body.String(), `"password"`)

	rec = do("/api/admin/bootstrap?token=s3cret", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Admin already exists"}`, rec.Body.String())

	rec = do("/api/admin/signin", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)
	assert.Equal(t, http.StatusUnauthorized, do("/api/admin/signin", `{"email":"root@hub.test","password":"x"}`, nil).Code)
}

func TestStoreUniqueEmail(t *testing.T) {
	d := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := New(d)

	now := time.Now().UTC().Truncate(time.Millisecond)
	a := &models.Admin{Email: "root@hub.test", Password: "h", Role: models.RoleAdmin, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Insert(ctx, a))
	got, err := s.GetByEmail(ctx, "root@hub.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	err = s.Insert(ctx, &models.Admin{Email: "root@hub.test", Role: models.RoleAdmin})
	assert.True(t, mongo.IsDuplicateKeyError(err))

	_, err = s.GetByEmail(ctx, "nobody@hub.test")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
