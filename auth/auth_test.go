package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"freelancehub/apperr"
	"freelancehub/middleware"
	"freelancehub/models"
	"freelancehub/tokens"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memAccounts struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func (m *memAccounts) byEmail(email string) *models.User {
	for _, u := range m.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.byEmail(email); u != nil {
		c := *u
		return &c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memAccounts) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memAccounts) SetPassword(_ context.Context, id primitive.ObjectID, hash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Password = hash
	return nil
}

func (m *memAccounts) Update(_ context.Context, id primitive.ObjectID, set, _ bson.M) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "profile.fullName":
			u.Profile.FullName = v.(string)
		case "profile.bio":
			u.Profile.Bio = v.(string)
		case "profile.hourlyRate":
			f := v.(float64)
			u.Profile.HourlyRate = &f
		case "profile.skills":
			u.Profile.Skills = v.([]string)
		case "profile.role", "role", "email":
			panic("not allow-listed: " + k)
		}
	}
	c := *u
	return &c, nil
}

func (m *memAccounts) SetResetCode(_ context.Context, email, code string, expires, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail(email)
	if u == nil {
		return false, nil
	}
	u.ResetOTP = code
	u.ResetOTPExpires = &expires
	return true, nil
}

func (m *memAccounts) ConsumeResetCode(_ context.Context, email, code, hash string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail(email)
	if u == nil || u.ResetOTP != code || u.ResetOTPExpires == nil || !u.ResetOTPExpires.After(now) {
		return nil, mongo.ErrNoDocuments
	}
	u.Password = hash
	u.ResetOTP = ""
	u.ResetOTPExpires = nil
	c := *u
	return &c, nil
}

type syncRecorder struct {
	mu        sync.Mutex
	mirrored  []string
	passwords []string
}

func (s *syncRecorder) MirrorUser(_ context.Context, u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Role == models.RoleEmployer {
		s.mirrored = append(s.mirrored, u.Email)
	}
}

func (s *syncRecorder) SyncPassword(_ context.Context, email, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords = append(s.passwords, email)
}

type outbox struct {
	mu   sync.Mutex
	sent []string
}

func (o *outbox) Send(_ context.Context, to, _, html string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, to+"|"+html)
	return nil
}

type memRevoker struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[jti] = true
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[jti], nil
}

type fixture struct {
	svc      *Service
	accounts *memAccounts
	sync     *syncRecorder
	mail     *outbox
	tokens   *tokens.Manager
	clock    *time.Time
}

func newFixture() *fixture {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		accounts: &memAccounts{users: map[primitive.ObjectID]*models.User{}},
		sync:     &syncRecorder{},
		mail:     &outbox{},
		tokens:   tokens.NewManager([]byte("test-secret"), time.Hour, &memRevoker{ids: map[string]bool{}}),
		clock:    &now,
	}
	f.svc = NewService(f.accounts, f.sync, f.tokens, f.mail, zap.NewNop())
	f.svc.now = func() time.Time { return *f.clock }
	return f
}

func TestSignup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, SignupInput{Email: "a@b.test", Password: "pw", FullName: "A"})
	assert.EqualError(t, err, "role must be freelancer or employer")
	_, err = f.svc.Signup(ctx, SignupInput{Email: "a@b.test", FullName: "A", Role: "freelancer"})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	sess, err := f.svc.Signup(ctx, SignupInput{Email: " Boss@Acme.Test", Password: "pw", FullName: "Boss", Role: "employer", Title: "CTO"})
	require.NoError(t, err)
	assert.Equal(t, "boss@acme.test", sess.User.Email)
	assert.Equal(t, "CTO", sess.User.Profile.Title)
	assert.True(t, strings.HasPrefix(sess.User.Password, "$2"))
	assert.Equal(t, []string{"boss@acme.test"}, f.sync.mirrored)

	claims, err := f.tokens.Parse(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID.Hex(), claims.UserID())
	assert.Equal(t, models.RoleEmployer, claims.Role)

	_, err = f.svc.Signup(ctx, SignupInput{Email: "boss@acme.test", Password: "pw", FullName: "Boss", Role: "employer"})
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
	assert.EqualError(t, err, "User already exists")
}

func TestSigninLegacyUpgrade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := primitive.NewObjectID()
	require.NoError(t, f.accounts.Insert(ctx, &models.User{ID: id, Email: "old@acme.test", Password: "plain", Role: models.RoleEmployer}))

	_, err := f.svc.Signin(ctx, SigninInput{Email: "old@acme.test", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, apperr.Status(err))
	_, err = f.svc.Signin(ctx, SigninInput{Email: "nobody@acme.test", Password: "plain"})
	assert.EqualError(t, err, "Invalid credentials")

	sess, err := f.svc.Signin(ctx, SigninInput{Email: "OLD@acme.test", Password: "plain"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	stored, _ := f.accounts.GetByID(ctx, id)
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))
	assert.Equal(t, []string{"old@acme.test"}, f.sync.passwords)
	assert.Equal(t, []string{"old@acme.test"}, f.sync.mirrored)

	// the upgraded hash keeps working
	_, err = f.svc.Signin(ctx, SigninInput{Email: "old@acme.test", Password: "plain"})
	require.NoError(t, err)
	assert.Len(t, f.sync.passwords, 1)
}

func TestSignoutRevokes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess, err := f.svc.Signup(ctx, SignupInput{Email: "ada@x.test", Password: "pw", FullName: "Ada", Role: "freelancer"})
	require.NoError(t, err)

	f.svc.Signout(ctx, "")
	f.svc.Signout(ctx, "garbage")
	_, err = f.tokens.Parse(ctx, sess.Token)
	require.NoError(t, err)

	f.svc.Signout(ctx, sess.Token)
	_, err = f.tokens.Parse(ctx, sess.Token)
	assert.ErrorIs(t, err, tokens.ErrRevoked)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess, err := f.svc.Signup(ctx, SignupInput{Email: "boss@acme.test", Password: "old", FullName: "Boss", Role: "employer"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Forgot(ctx, "ghost@acme.test"))
	assert.Empty(t, f.mail.sent)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(f.svc.Forgot(ctx, " ")))

	require.NoError(t, f.svc.Forgot(ctx, "boss@acme.test"))
	require.Len(t, f.mail.sent, 1)
	u, _ := f.accounts.GetByID(ctx, sess.User.ID)
	code := u.ResetOTP
	require.Len(t, code, 6)
	assert.Contains(t, f.mail.sent[0], code)
	assert.Equal(t, f.clock.Add(ResetCodeTTL), *u.ResetOTPExpires)

	err = f.svc.Reset(ctx, ResetInput{Email: "boss@acme.test", OTP: code})
	assert.EqualError(t, err, "Email, OTP and newPassword are required")
	err = f.svc.Reset(ctx, ResetInput{Email: "ghost@acme.test", OTP: code, NewPassword: "new"})
	assert.EqualError(t, err, "Invalid or expired code")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = f.svc.Reset(ctx, ResetInput{Email: "boss@acme.test", OTP: wrong, NewPassword: "new"})
	assert.EqualError(t, err, "Invalid code")

	require.NoError(t, f.svc.Reset(ctx, ResetInput{Email: "boss@acme.test", OTP: code, NewPassword: "new"}))
	assert.Equal(t, []string{"boss@acme.test"}, f.sync.passwords)

	u, _ = f.accounts.GetByID(ctx, sess.User.ID)
	assert.Empty(t, u.ResetOTP)
	assert.Nil(t, u.ResetOTPExpires)
	_, err = f.svc.Signin(ctx, SigninInput{Email: "boss@acme.test", Password: "new"})
	require.NoError(t, err)

	err = f.svc.Reset(ctx, ResetInput{Email: "boss@acme.test", OTP: code, NewPassword: "again"})
	assert.EqualError(t, err, "Invalid or expired code")
}

func TestResetCodeExpires(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess, err := f.svc.Signup(ctx, SignupInput{Email: "ada@x.test", Password: "old", FullName: "Ada", Role: "freelancer"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Forgot(ctx, "ada@x.test"))
	u, _ := f.accounts.GetByID(ctx, sess.User.ID)

	*f.clock = f.clock.Add(ResetCodeTTL + time.Second)
	err = f.svc.Reset(ctx, ResetInput{Email: "ada@x.test", OTP: u.ResetOTP, NewPassword: "new"})
	assert.EqualError(t, err, "Code expired")
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestProfileSetAllowList(t *testing.T) {
	set := profileSet(map[string]any{
		"fullName":   " Ada ",
		"bio":        " <script>x</script>hello ",
		"hourlyRate": float64(50),
		"skills":     []any{" Go ", 3, ""},
		"role":       "admin",
		"email":      "x@y.test",
		"title":      42,
		"reviews":    []any{},
	})
	assert.Equal(t, bson.M{
		"profile.fullName":   "Ada",
		"profile.bio":        "<script>x</script>hello",
		"profile.hourlyRate": float64(50),
		"profile.skills":     []string{"Go"},
	}, set)
}

func TestHandlers(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc, zap.NewNop())
	guard := middleware.NewAuth(f.tokens)
	router := httprouter.New()
	router.POST("/api/auth/signup", h.Register)
	router.POST("/api/auth/signin", h.Login)
	router.POST("/api/auth/signout", h.Logout)
	router.PATCH("/api/auth/profile/:userId", guard.SelfOrAdmin("userId", h.PatchProfile))

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/auth/signup", "", `{"email":"ada@x.test","password":"pw","fullName":"Ada","role":"freelancer"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"password"`)
	sess, err := f.svc.Signin(context.Background(), SigninInput{Email: "ada@x.test", Password: "pw"})
	require.NoError(t, err)
	self := "/api/auth/profile/" + sess.User.ID.Hex()

	rec = do(http.MethodPatch, self, "", `{"fullName":"Ada L"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	other, _ := f.tokens.Issue(primitive.NewObjectID().Hex(), models.RoleFreelancer)
	assert.Equal(t, http.StatusForbidden, do(http.MethodPatch, self, other, `{"fullName":"x"}`).Code)

	rec = do(http.MethodPatch, self, sess.Token, `{"fullName":"Ada L"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fullName":"Ada L"`)

	admin, _ := f.tokens.Issue(primitive.NewObjectID().Hex(), models.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(http.MethodPatch, self, admin, `{"bio":"hi"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPatch, "/api/auth/profile/"+primitive.NewObjectID().Hex(), admin, `{}`).Code)

	rec = do(http.MethodPost, "/api/auth/signout", sess.Token, "")
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPatch, self, sess.Token, `{"fullName":"x"}`).Code)
	assert.JSONEq(t, `{"success":true}`, do(http.MethodPost, "/api/auth/signout", "", "").Body.String())
}
