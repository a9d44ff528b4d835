package accounts_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/lineagehub/lineagehub/internal/app/features/accounts"
	users "github.com/lineagehub/lineagehub/internal/app/store/users"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/ratelimit"
	"github.com/lineagehub/lineagehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func newHandler(t *testing.T, db *mongo.Database) *accounts.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager(testSessionKey, "lineagehub_session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return accounts.NewHandler(users.New(db), sm, zap.NewNop())
}

func TestHandleRegister_CreatesUserAndSignsIn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := testutil.NewJSONRequest("POST", "/api/auth/register", map[string]string{
		"fullName": "Trần Văn An",
		"email":    "An@Example.com",
		"password": "correct horse",
	})
	rec := testutil.NewRecorder()

	h.HandleRegister(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var created struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	rec.DecodeJSON(t, &created)
	if created.Email != "an@example.com" {
		t.Errorf("email not normalized: got %q", created.Email)
	}
	if created.FullName != "Trần Văn An" {
		t.Errorf("full name: got %q", created.FullName)
	}

	// Registration should establish a session cookie.
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie after register")
	}
}

func TestHandleRegister_AccumulatesViolations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := testutil.NewJSONRequest("POST", "/api/auth/register", map[string]string{
		"fullName": "  ",
		"email":    "not-an-email",
		"password": "short",
	})
	rec := testutil.NewRecorder()

	h.HandleRegister(rec, req)

	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	var body struct {
		Error      string   `json:"error"`
		Violations []string `json:"violations"`
	}
	rec.DecodeJSON(t, &body)
	if body.Error != "validation_failed" {
		t.Errorf("error category: got %q", body.Error)
	}
	if len(body.Violations) != 3 {
		t.Errorf("expected all 3 violations in one response, got %v", body.Violations)
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "First User", "taken@example.com", "password1")

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/api/auth/register", map[string]string{
		"fullName": "Second User",
		"email":    "Taken@Example.com",
		"password": "password2",
	})
	rec := testutil.NewRecorder()

	h.HandleRegister(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "conflict")
}

func TestHandleLogin_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Login User", "login@example.com", "hunter2hunter2")

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "hunter2hunter2",
	})
	rec := testutil.NewRecorder()

	h.HandleLogin(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie after login")
	}
	// Password hash must never appear on the wire.
	if body := rec.Body.String(); len(body) > 0 && containsHash(body) {
		t.Error("response leaked password hash")
	}
}

func containsHash(body string) bool {
	// bcrypt hashes start with $2a$ / $2b$.
	for i := 0; i+3 <= len(body); i++ {
		if body[i:i+3] == "$2a" || body[i:i+3] == "$2b" {
			return true
		}
	}
	return false
}

func TestHandleLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Login User", "login@example.com", "hunter2hunter2")

	h := newHandler(t, db)

	wrongPW := testutil.NewJSONRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "wrong",
	})
	recPW := testutil.NewRecorder()
	h.HandleLogin(recPW, wrongPW)
	recPW.AssertStatus(t, http.StatusUnauthorized)

	unknown := testutil.NewJSONRequest("POST", "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	recUnknown := testutil.NewRecorder()
	h.HandleLogin(recUnknown, unknown)
	recUnknown.AssertStatus(t, http.StatusUnauthorized)

	if recPW.Body.String() != recUnknown.Body.String() {
		t.Error("wrong-password and unknown-email responses should be identical")
	}
}

func TestHandleLogin_DisabledAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateDisabledUser(ctx, "Disabled User", "disabled@example.com")

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/api/auth/login", map[string]string{
		"email":    "disabled@example.com",
		"password": "anything",
	})
	rec := testutil.NewRecorder()

	h.HandleLogin(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Me User", "me@example.com", "password123")

	h := newHandler(t, db)

	// Signed in: returns the database record.
	req := testutil.NewAuthenticatedRequest("GET", "/api/auth/me", testutil.AsTestUser(user))
	rec := testutil.NewRecorder()
	h.ServeMe(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "me@example.com")

	// Not signed in: 401.
	anon := testutil.NewRequest("GET", "/api/auth/me")
	recAnon := testutil.NewRecorder()
	h.ServeMe(recAnon, anon)
	recAnon.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	req := testutil.NewRequest("POST", "/api/auth/logout")
	rec := testutil.NewRecorder()

	h.HandleLogout(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	// The deletion cookie must be expired.
	for _, c := range rec.Result().Cookies() {
		if c.Name == "lineagehub_session" && c.MaxAge >= 0 {
			t.Errorf("expected session cookie MaxAge < 0, got %d", c.MaxAge)
		}
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Trần Văn An", "an@example.com", "correct horse")

	h := newHandler(t, db)
	h.Limits = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	attempt := func() *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("POST", "/api/auth/login", map[string]string{
			"email":    "an@example.com",
			"password": "wrong password",
		})
		rec := testutil.NewRecorder()
		h.HandleLogin(rec, req)
		return rec
	}

	attempt().AssertStatus(t, http.StatusUnauthorized)
	attempt().AssertStatus(t, http.StatusUnauthorized)

	rec := attempt()
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, "rate_limited")
}

func TestHandleLogin_SuccessResetsEmailWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateUser(ctx, "Trần Văn An", "an@example.com", "correct horse")

	h := newHandler(t, db)
	h.Limits = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 3, time.Minute)

	login := func(password string) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("POST", "/api/auth/login", map[string]string{
			"email":    "an@example.com",
			"password": password,
		})
		rec := testutil.NewRecorder()
		h.HandleLogin(rec, req)
		return rec
	}

	login("wrong").AssertStatus(t, http.StatusUnauthorized)
	login("wrong").AssertStatus(t, http.StatusUnauthorized)
	login("correct horse").AssertStatus(t, http.StatusOK)

	// The successful sign-in cleared the email window, so the next
	// attempts start fresh instead of tripping the limit.
	login("wrong").AssertStatus(t, http.StatusUnauthorized)
	login("wrong").AssertStatus(t, http.StatusUnauthorized)
}
