package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/identity-service/internal/command"
	"github.com/xpch/platform/identity-service/internal/query"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.MustInitJWTSecret("test-secret", time.Hour)
}

// ---- mock implementations ----

type mockCommander struct {
	registerFn    func(cqrs.RegisterCommand) (*models.User, error)
	loginFn       func(cqrs.LoginCommand) (*command.LoginResult, error)
	forceFn       func(cqrs.ForcePasswordCommand) (*models.User, error)
	attachFn      func(cqrs.AttachRoleCommand) (*models.User, error)
	addManagerFn  func(cqrs.RegisterCommand) (*models.User, error)
	emailCheckFn  func(string, bool) error
	lastAttachCmd cqrs.AttachRoleCommand
}

func (m *mockCommander) Register(_ context.Context, cmd cqrs.RegisterCommand) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCommander) Login(_ context.Context, cmd cqrs.LoginCommand) (*command.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCommander) Activate(context.Context, cqrs.ActivateCommand) (*models.User, error) {
	return nil, command.ErrInvalidToken
}

func (m *mockCommander) ForgotPassword(context.Context, cqrs.ForgotPasswordCommand) error {
	return nil
}

func (m *mockCommander) ResetPassword(context.Context, cqrs.ResetPasswordCommand) (*models.User, error) {
	return nil, command.ErrInvalidToken
}

func (m *mockCommander) ForcePassword(_ context.Context, cmd cqrs.ForcePasswordCommand) (*models.User, error) {
	if m.forceFn != nil {
		return m.forceFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCommander) AttachRoles(_ context.Context, cmd cqrs.AttachRoleCommand) (*models.User, error) {
	m.lastAttachCmd = cmd
	if m.attachFn != nil {
		return m.attachFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCommander) DetachRole(context.Context, cqrs.DetachRoleCommand) (*models.User, error) {
	return nil, command.ErrRoleNotHeld
}

func (m *mockCommander) AddManager(_ context.Context, cmd cqrs.RegisterCommand) (*models.User, error) {
	if m.addManagerFn != nil {
		return m.addManagerFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockCommander) SetEmailCheck(_ context.Context, id string, enabled bool) error {
	if m.emailCheckFn != nil {
		return m.emailCheckFn(id, enabled)
	}
	return nil
}

type mockQuerier struct {
	getFn func(cqrs.GetUserQuery) (*models.UserView, error)
	roles map[string][]string
}

// storedRoles is what the store holds when a test sets no roles of its own.
var storedRoles = map[string][]string{
	"usr-1": {"user"},
	"usr-9": {"admin"},
}

func (m *mockQuerier) GetUser(_ context.Context, q cqrs.GetUserQuery) (*models.UserView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	roles := m.roles
	if roles == nil {
		roles = storedRoles
	}
	if r, ok := roles[q.UserID]; ok {
		return &models.UserView{ID: q.UserID, Roles: r}, nil
	}
	return nil, query.ErrUserNotFound
}

func (m *mockQuerier) ListUsers(context.Context) ([]models.UserView, error) {
	return []models.UserView{{ID: "usr-1"}}, nil
}

// ---- helpers ----

func newIdentityTestRouter(cmds *mockCommander, qrys *mockQuerier) *gin.Engine {
	r := gin.New()
	Routes(r, NewAuthHandler(cmds, qrys, false), NewUserHandler(cmds, qrys))
	return r
}

func identityDoRequest(router *gin.Engine, method, url string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("lg", "en")
	req.Header.Set("ch", "web")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	token, err := middleware.GenerateToken(userID, userID+"@example.com", roles)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// ---- tests ----

func TestRegister(t *testing.T) {
	valid := map[string]string{
		"email":       "ada@example.com",
		"password":    "Secret#123",
		"phoneNumber": "08012345678",
		"phoneCode":   "+234",
		"callback":    "https://app/activate",
	}
	tests := []struct {
		name           string
		body           interface{}
		registerFn     func(cqrs.RegisterCommand) (*models.User, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: valid,
			registerFn: func(cmd cqrs.RegisterCommand) (*models.User, error) {
				return &models.User{ID: "usr-1", Email: cmd.Email, PhoneNumber: "2348012345678", PhoneCode: cmd.PhoneCode}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - weak password",
			body:           map[string]string{"email": "ada@example.com", "password": "password", "phoneNumber": "0801", "phoneCode": "+234", "callback": "x"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - phone code without plus",
			body:           map[string]string{"email": "ada@example.com", "password": "Secret#123", "phoneNumber": "0801", "phoneCode": "234", "callback": "x"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - duplicate email",
			body:           valid,
			registerFn:     func(cqrs.RegisterCommand) (*models.User, error) { return nil, command.ErrEmailExists },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "server error - role missing",
			body:           valid,
			registerFn:     func(cqrs.RegisterCommand) (*models.User, error) { return nil, command.ErrRoleMissing },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newIdentityTestRouter(&mockCommander{registerFn: tt.registerFn}, &mockQuerier{})
			w := identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/register", tt.body, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: "usr-1", Email: "ada@example.com", Roles: []string{"user"}}
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(cqrs.LoginCommand) (*command.LoginResult, error)
		expectedStatus int
		expectCookie   bool
	}{
		{
			name: "success sets cookie",
			body: map[string]string{"email": "ada@example.com", "password": "Secret#123", "code": "123456"},
			loginFn: func(cqrs.LoginCommand) (*command.LoginResult, error) {
				return &command.LoginResult{Token: "jwt.token.value", User: user}, nil
			},
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name: "partial content - code mailed",
			body: map[string]string{"email": "ada@example.com", "password": "Secret#123"},
			loginFn: func(cqrs.LoginCommand) (*command.LoginResult, error) {
				return &command.LoginResult{User: user, CodeSent: true}, nil
			},
			expectedStatus: http.StatusPartialContent,
		},
		{
			name:           "forbidden - invalid credentials",
			body:           map[string]string{"email": "ada@example.com", "password": "nope"},
			loginFn:        func(cqrs.LoginCommand) (*command.LoginResult, error) { return nil, command.ErrInvalidCredentials },
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "forbidden - account locked",
			body:           map[string]string{"email": "ada@example.com", "password": "nope"},
			loginFn:        func(cqrs.LoginCommand) (*command.LoginResult, error) { return nil, command.ErrAccountLockedNow },
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"email": "ada@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newIdentityTestRouter(&mockCommander{loginFn: tt.loginFn}, &mockQuerier{})
			w := identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/login", tt.body, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			hasCookie := strings.Contains(w.Header().Get("Set-Cookie"), middleware.TokenCookie+"=jwt.token.value")
			if hasCookie != tt.expectCookie {
				t.Errorf("[%s] expected cookie %v, got header %q", tt.name, tt.expectCookie, w.Header().Get("Set-Cookie"))
			}
			if tt.expectCookie {
				var resp map[string]interface{}
				_ = json.Unmarshal(w.Body.Bytes(), &resp)
				if resp["token"] != "jwt.token.value" {
					t.Errorf("[%s] expected token in body, got %v", tt.name, resp["token"])
				}
			}
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newIdentityTestRouter(&mockCommander{}, &mockQuerier{})
	w := identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/logout", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "token=none") {
		t.Errorf("expected token cookie to be cleared, got %q", w.Header().Get("Set-Cookie"))
	}
}

func TestForcePassword(t *testing.T) {
	tests := []struct {
		name           string
		forceFn        func(cqrs.ForcePasswordCommand) (*models.User, error)
		expectedStatus int
	}{
		{"success", func(c cqrs.ForcePasswordCommand) (*models.User, error) { return &models.User{Email: c.Email}, nil }, http.StatusOK},
		{"forbidden - self chosen password", func(cqrs.ForcePasswordCommand) (*models.User, error) { return nil, command.ErrPasswordNotGenerated }, http.StatusForbidden},
		{"not found", func(cqrs.ForcePasswordCommand) (*models.User, error) { return nil, command.ErrUserNotFound }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newIdentityTestRouter(&mockCommander{forceFn: tt.forceFn}, &mockQuerier{})
			body := map[string]string{"email": "mgr@example.com", "password": "Chosen#2024"}
			w := identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/force-password", body, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestTokenRoutes(t *testing.T) {
	router := newIdentityTestRouter(&mockCommander{}, &mockQuerier{})
	w := identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/activate/bogus", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("activate: expected status 400, got %d", w.Code)
	}
	w = identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/reset-password/bogus", map[string]string{"password": "Secret#123"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("reset: expected status 400, got %d", w.Code)
	}
	w = identityDoRequest(router, http.MethodPost, "/api/identity/v1/auth/forgot-password", map[string]string{"email": "ada@example.com", "callback": "x"}, "")
	if w.Code != http.StatusOK {
		t.Errorf("forgot: expected status 200, got %d", w.Code)
	}
}

func TestGetUser(t *testing.T) {
	getFn := func(q cqrs.GetUserQuery) (*models.UserView, error) {
		if q.UserID != q.RequestingUserID {
			return nil, query.ErrForbidden
		}
		return &models.UserView{ID: q.UserID}, nil
	}
	tests := []struct {
		name           string
		url            string
		token          string
		expectedStatus int
	}{
		{"self", "/api/identity/v1/auth/user/usr-1", tokenFor(t, "usr-1", "user"), http.StatusOK},
		{"other user", "/api/identity/v1/users/usr-2", tokenFor(t, "usr-1", "user"), http.StatusForbidden},
		{"unauthenticated", "/api/identity/v1/auth/user/usr-1", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newIdentityTestRouter(&mockCommander{}, &mockQuerier{getFn: getFn})
			w := identityDoRequest(router, http.MethodGet, tt.url, nil, tt.token)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListUsersRequiresAdmin(t *testing.T) {
	router := newIdentityTestRouter(&mockCommander{}, &mockQuerier{})

	w := identityDoRequest(router, http.MethodGet, "/api/identity/v1/users", nil, tokenFor(t, "usr-1", "user"))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
	w = identityDoRequest(router, http.MethodGet, "/api/identity/v1/users", nil, tokenFor(t, "usr-9", "admin"))
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d; body: %s", w.Code, w.Body.String())
	}
}

func TestAttachRoleSplitsList(t *testing.T) {
	cmds := &mockCommander{attachFn: func(c cqrs.AttachRoleCommand) (*models.User, error) {
		return &models.User{ID: c.UserID, Roles: c.Roles}, nil
	}}
	router := newIdentityTestRouter(cmds, &mockQuerier{})
	w := identityDoRequest(router, http.MethodPut, "/api/identity/v1/auth/attach-role/usr-2",
		map[string]string{"roles": "admin,manager"}, tokenFor(t, "usr-9", "superadmin"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d; body: %s", w.Code, w.Body.String())
	}
	if len(cmds.lastAttachCmd.Roles) != 2 || cmds.lastAttachCmd.Roles[1] != "manager" {
		t.Errorf("expected roles to be split, got %v", cmds.lastAttachCmd.Roles)
	}

	w = identityDoRequest(router, http.MethodPut, "/api/identity/v1/auth/detach-role/usr-2",
		map[string]string{"roleName": "admin"}, tokenFor(t, "usr-9", "superadmin"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for role not held, got %d", w.Code)
	}
}

func TestEmailCheckRoutes(t *testing.T) {
	var got []bool
	cmds := &mockCommander{emailCheckFn: func(_ string, enabled bool) error {
		got = append(got, enabled)
		return nil
	}}
	router := newIdentityTestRouter(cmds, &mockQuerier{})

	w := identityDoRequest(router, http.MethodPut, "/api/identity/v1/users/enable-email/usr-1", nil, tokenFor(t, "usr-1", "user"))
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	w = identityDoRequest(router, http.MethodPut, "/api/identity/v1/users/disable-email/usr-2", nil, tokenFor(t, "usr-1", "user"))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
	w = identityDoRequest(router, http.MethodPut, "/api/identity/v1/users/disable-email/usr-2", nil, tokenFor(t, "usr-9", "admin"))
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("unexpected email check calls: %v", got)
	}
}

func TestAddUser(t *testing.T) {
	cmds := &mockCommander{addManagerFn: func(c cqrs.RegisterCommand) (*models.User, error) {
		return &models.User{ID: "usr-3", Email: c.Email, Roles: []string{"manager"}}, nil
	}}
	router := newIdentityTestRouter(cmds, &mockQuerier{})
	body := map[string]string{
		"firstName": "Mo", "lastName": "Ali", "email": "mo@example.com",
		"phoneNumber": "08000000000", "phoneCode": "+234", "callback": "https://app/login",
	}
	w := identityDoRequest(router, http.MethodPost, "/api/identity/v1/users/add-user", body, tokenFor(t, "usr-9", "admin"))
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d; body: %s", w.Code, w.Body.String())
	}
	w = identityDoRequest(router, http.MethodPost, "/api/identity/v1/users/add-user", body, tokenFor(t, "usr-1", "user"))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestAdminRoutesUseStoredRoles(t *testing.T) {
	tests := []struct {
		name           string
		roles          map[string][]string
		expectedStatus int
	}{
		{"role still held", map[string][]string{"usr-9": {"admin"}}, http.StatusOK},
		{"role detached after login", map[string][]string{"usr-9": {"user"}}, http.StatusForbidden},
		{"account removed", map[string][]string{}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newIdentityTestRouter(&mockCommander{}, &mockQuerier{roles: tt.roles})
			w := identityDoRequest(router, http.MethodGet, "/api/identity/v1/users", nil, tokenFor(t, "usr-9", "admin"))
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
