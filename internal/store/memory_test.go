package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-service/internal/model"
)

func TestMemStoreTenantLookups(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	tenant := &model.Tenant{Name: "Acme", Slug: "acme"}
	require.NoError(t, st.CreateTenant(ctx, tenant))
	assert.Equal(t, model.PlanFree, tenant.Plan)

	byID, err := st.FindTenantByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", byID.Slug)

	bySlug, err := st.FindTenantBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, bySlug.ID)

	_, err = st.FindTenantByID(ctx, 999)
	assert.ErrorIs(t, err, ErrTenantNotFound)
	_, err = st.FindTenantBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestMemStoreNoteScopeConflation(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	acme := &model.Tenant{Name: "Acme", Slug: "acme"}
	require.NoError(t, st.CreateTenant(ctx, acme))
	globex := &model.Tenant{Name: "Globex", Slug: "globex"}
	require.NoError(t, st.CreateTenant(ctx, globex))

	note := &model.Note{Title: "t", Content: "c", TenantID: acme.ID}
	require.NoError(t, st.CreateNoteWithinQuota(ctx, note, -1))

	// Wrong tenant and missing id are the same error value.
	_, crossErr := st.FindNoteByIDAndTenant(ctx, note.ID, globex.ID)
	_, missingErr := st.FindNoteByIDAndTenant(ctx, 999, globex.ID)
	assert.ErrorIs(t, crossErr, ErrNotFound)
	assert.Equal(t, missingErr, crossErr)
}

func TestMemStoreQuotaLimit(t *testing.T) {
	st := NewMemStore()
	ctx := context.Background()

	tenant := &model.Tenant{Name: "Acme", Slug: "acme"}
	require.NoError(t, st.CreateTenant(ctx, tenant))

	for i := 0; i < 3; i++ {
		note := &model.Note{Title: "t", Content: "c", TenantID: tenant.ID}
		require.NoError(t, st.CreateNoteWithinQuota(ctx, note, 3))
	}

	rejected := &model.Note{Title: "t", Content: "c", TenantID: tenant.ID}
	err := st.CreateNoteWithinQuota(ctx, rejected, 3)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	count, err := st.CountNotesByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMemStoreCreateNoteUnknownTenant(t *testing.T) {
	st := NewMemStore()

	note := &model.Note{Title: "t", Content: "c", TenantID: 42}
	err := st.CreateNoteWithinQuota(context.Background(), note, -1)
	assert.ErrorIs(t, err, ErrTenantNotFound)
}
