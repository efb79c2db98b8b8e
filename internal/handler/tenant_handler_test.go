package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-service/internal/model"
)

func (env *testEnv) tenantPlan(t *testing.T, slug string) model.Plan {
	t.Helper()
	tenant, err := env.st.FindTenantBySlug(context.Background(), slug)
	require.NoError(t, err)
	return tenant.Plan
}

func TestUpgradeByAdminOfOwnTenant(t *testing.T) {
	env := newTestEnv()
	tenant := env.seedTenant(t, "Acme", "acme", model.PlanFree)
	admin := env.seedUser(t, "admin@acme.test", "password", model.RoleAdmin, tenant.ID)

	rec := env.request(t, http.MethodPost, "/tenants/acme/upgrade", env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	returned := body["tenant"].(map[string]interface{})
	assert.Equal(t, "acme", returned["slug"])
	assert.Equal(t, string(model.PlanPro), returned["plan"])
	assert.Equal(t, model.PlanPro, env.tenantPlan(t, "acme"))
}

// A member invoking the admin-only upgrade gets Forbidden and the plan is
// untouched: the role gate leaves zero side effects.
func TestUpgradeByMemberIsForbidden(t *testing.T) {
	env := newTestEnv()
	tenant := env.seedTenant(t, "Acme", "acme", model.PlanFree)
	member := env.seedUser(t, "user@acme.test", "password", model.RoleMember, tenant.ID)

	rec := env.request(t, http.MethodPost, "/tenants/acme/upgrade", env.tokenFor(t, member), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, model.PlanFree, env.tenantPlan(t, "acme"))
}

func TestUpgradeByAdminOfOtherTenantIsForbidden(t *testing.T) {
	env := newTestEnv()
	env.seedTenant(t, "Acme", "acme", model.PlanFree)
	globex := env.seedTenant(t, "Globex", "globex", model.PlanFree)
	globexAdmin := env.seedUser(t, "admin@globex.test", "password", model.RoleAdmin, globex.ID)

	rec := env.request(t, http.MethodPost, "/tenants/acme/upgrade", env.tokenFor(t, globexAdmin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, model.PlanFree, env.tenantPlan(t, "acme"))
	assert.Equal(t, model.PlanFree, env.tenantPlan(t, "globex"))
}

func TestUpgradeAlreadyProTenant(t *testing.T) {
	env := newTestEnv()
	tenant := env.seedTenant(t, "Acme", "acme", model.PlanPro)
	admin := env.seedUser(t, "admin@acme.test", "password", model.RoleAdmin, tenant.ID)

	rec := env.request(t, http.MethodPost, "/tenants/acme/upgrade", env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_PRO", decodeBody(t, rec)["code"])
	assert.Equal(t, model.PlanPro, env.tenantPlan(t, "acme"))
}

func TestUpgradeUnknownSlugIsForbidden(t *testing.T) {
	env := newTestEnv()
	tenant := env.seedTenant(t, "Acme", "acme", model.PlanFree)
	admin := env.seedUser(t, "admin@acme.test", "password", model.RoleAdmin, tenant.ID)

	rec := env.request(t, http.MethodPost, "/tenants/nonexistent/upgrade", env.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
