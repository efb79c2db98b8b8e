package quota

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-service/internal/auth"
	"notes-service/internal/model"
	"notes-service/internal/store"
)

func newTenantWithUser(t *testing.T, st *store.MemStore, plan model.Plan) *auth.Principal {
	t.Helper()
	ctx := context.Background()

	tenant := &model.Tenant{Name: "Acme", Slug: "acme", Plan: plan}
	require.NoError(t, st.CreateTenant(ctx, tenant))
	user := &model.User{Email: "user@acme.test", Role: model.RoleMember, TenantID: tenant.ID}
	require.NoError(t, st.CreateUser(ctx, user))

	return &auth.Principal{
		UserID: user.ID, Email: user.Email, Role: user.Role,
		TenantID: tenant.ID, TenantSlug: tenant.Slug, TenantPlan: tenant.Plan,
	}
}

func TestFreePlanAdmitsUpToThree(t *testing.T) {
	st := store.NewMemStore()
	enforcer := NewEnforcer(st)
	p := newTenantWithUser(t, st, model.PlanFree)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := enforcer.CreateNote(ctx, p, fmt.Sprintf("note %d", i), "content")
		require.NoError(t, err)
	}

	_, err := enforcer.CreateNote(ctx, p, "one too many", "content")
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)

	count, err := st.CountNotesByTenant(ctx, p.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestProPlanIsUnbounded(t *testing.T) {
	st := store.NewMemStore()
	enforcer := NewEnforcer(st)
	p := newTenantWithUser(t, st, model.PlanPro)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := enforcer.CreateNote(ctx, p, fmt.Sprintf("note %d", i), "content")
		require.NoError(t, err)
	}

	count, err := st.CountNotesByTenant(ctx, p.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}

// Ten concurrent creates against an empty free tenant must admit exactly
// three and reject exactly seven, regardless of interleaving.
func TestQuotaCeilingUnderConcurrency(t *testing.T) {
	st := store.NewMemStore()
	enforcer := NewEnforcer(st)
	p := newTenantWithUser(t, st, model.PlanFree)
	ctx := context.Background()

	const requests = 10
	var wg sync.WaitGroup
	errs := make([]error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = enforcer.CreateNote(ctx, p, fmt.Sprintf("note %d", i), "content")
		}(i)
	}
	wg.Wait()

	admitted, rejected := 0, 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		require.ErrorIs(t, err, store.ErrQuotaExceeded)
		rejected++
	}
	assert.Equal(t, 3, admitted)
	assert.Equal(t, 7, rejected)

	count, err := st.CountNotesByTenant(ctx, p.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestNoteStampedFromPrincipal(t *testing.T) {
	st := store.NewMemStore()
	enforcer := NewEnforcer(st)
	p := newTenantWithUser(t, st, model.PlanFree)

	note, err := enforcer.CreateNote(context.Background(), p, "title", "content")
	require.NoError(t, err)
	assert.Equal(t, p.TenantID, note.TenantID)
	assert.Equal(t, p.UserID, note.UserID)
}

func TestUpgradeRaisesLimitForFutureCreates(t *testing.T) {
	st := store.NewMemStore()
	enforcer := NewEnforcer(st)
	p := newTenantWithUser(t, st, model.PlanFree)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := enforcer.CreateNote(ctx, p, fmt.Sprintf("note %d", i), "content")
		require.NoError(t, err)
	}
	_, err := enforcer.CreateNote(ctx, p, "rejected", "content")
	require.ErrorIs(t, err, store.ErrQuotaExceeded)

	_, err = st.UpgradeTenantPlan(ctx, p.TenantSlug)
	require.NoError(t, err)

	// The principal is resolved fresh per request; simulate the next
	// request observing the upgraded plan.
	p.TenantPlan = model.PlanPro
	_, err = enforcer.CreateNote(ctx, p, "fourth", "content")
	require.NoError(t, err)

	count, err := st.CountNotesByTenant(ctx, p.TenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
