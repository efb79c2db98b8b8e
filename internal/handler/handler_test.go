package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notes-service/internal/auth"
	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/internal/quota"
	"notes-service/internal/scope"
	"notes-service/internal/store"
	"notes-service/pkg/jwtutil"
)

// testEnv wires the full request path the way cmd/main.go does, with the
// in-memory store substituted for the database.
type testEnv struct {
	e   *echo.Echo
	st  *store.MemStore
	jwt *jwtutil.JWTUtil
}

func newTestEnv() *testEnv {
	st := store.NewMemStore()
	jwt := jwtutil.New(&jwtutil.Config{SigningKey: "test-signing-key", ExpirationHours: 1})
	resolver := auth.NewResolver(st)
	filter := scope.NewFilter(st)
	enforcer := quota.NewEnforcer(st)

	authHandler := NewAuthHandler(st, jwt)
	noteHandler := NewNoteHandler(filter, enforcer)
	tenantHandler := NewTenantHandler(filter)

	e := echo.New()

	authRoutes := e.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/register", authHandler.Register)

	notes := e.Group("/notes")
	notes.Use(middleware.Authenticate(jwt, resolver))
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.ListNotes)
	notes.GET("/:id", noteHandler.GetNote)
	notes.PUT("/:id", noteHandler.UpdateNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)

	tenants := e.Group("/tenants")
	tenants.Use(middleware.Authenticate(jwt, resolver))
	tenants.POST("/:slug/upgrade", tenantHandler.UpgradePlan, middleware.RequireRole(model.RoleAdmin))

	return &testEnv{e: e, st: st, jwt: jwt}
}

func (env *testEnv) seedTenant(t *testing.T, name, slug string, plan model.Plan) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: name, Slug: slug, Plan: plan}
	require.NoError(t, env.st.CreateTenant(context.Background(), tenant))
	return tenant
}

func (env *testEnv) seedUser(t *testing.T, email, password string, role model.Role, tenantID uint) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{Email: email, Password: string(hashed), Role: role, TenantID: tenantID}
	require.NoError(t, env.st.CreateUser(context.Background(), user))
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := env.jwt.GenerateToken(user.Email, user.ID)
	require.NoError(t, err)
	return token
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func noteRequest(title, content string) map[string]string {
	return map[string]string{"title": title, "content": content}
}
