package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/ownerctx"
	"github.com/billcraft/billcraft/internal/profile/domain"
	profilerepo "github.com/billcraft/billcraft/internal/profile/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.BusinessProfile{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:  db,
		Log: zap.NewNop(),
		Cfg: config.Config{
			DefaultTaxPercent:   18,
			DefaultBusinessName: "ABC Solutions",
		},
		GenID: node,
		Repo:  profilerepo.Provide(),
	})
}

func ownerCtx(owner string) context.Context {
	return ownerctx.WithOwner(context.Background(), owner)
}

func TestUpsert_CreatesWithDefaults(t *testing.T) {
	svc := newTestService(t)

	profile, err := svc.Upsert(ownerCtx("user_a"), domain.UpsertProfileRequest{})
	require.NoError(t, err)

	assert.NotZero(t, profile.ID)
	assert.Equal(t, "user_a", profile.Owner)
	assert.Equal(t, "ABC Solutions", profile.BusinessName)
	assert.InDelta(t, 18, profile.DefaultTaxPercent, 1e-9)
}

func TestUpsert_ReplacesExistingKeepingIdentity(t *testing.T) {
	svc := newTestService(t)
	ctx := ownerCtx("user_a")

	first, err := svc.Upsert(ctx, domain.UpsertProfileRequest{
		BusinessName: "Acme Traders",
		Email:        "billing@acme.test",
		Gst:          "GST-42",
	})
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, domain.UpsertProfileRequest{
		BusinessName: "Acme Traders Pvt Ltd",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, 0)
	assert.Equal(t, "Acme Traders Pvt Ltd", second.BusinessName)
	// Replacement, not a merge: omitted fields are cleared.
	assert.Empty(t, second.Email)
	assert.Empty(t, second.Gst)

	got, err := svc.GetMine(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "Acme Traders Pvt Ltd", got.BusinessName)
}

func TestUpsert_RejectsNegativeTaxPercent(t *testing.T) {
	svc := newTestService(t)

	tax := -1.0
	_, err := svc.Upsert(ownerCtx("user_a"), domain.UpsertProfileRequest{
		DefaultTaxPercent: &tax,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxPercent)
}

func TestGetMine_AbsentProfile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetMine(ownerCtx("user_a"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetMine_RequiresOwner(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetMine(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoOwner)
}

func TestUpdate_PatchesOnlyProvidedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := ownerCtx("user_a")

	created, err := svc.Upsert(ctx, domain.UpsertProfileRequest{
		BusinessName: "Acme Traders",
		Email:        "billing@acme.test",
		Phone:        "+91 99999 00000",
	})
	require.NoError(t, err)

	email := "accounts@acme.test"
	got, err := svc.Update(ctx, created.ID.String(), domain.ProfilePatch{Email: &email})
	require.NoError(t, err)

	assert.Equal(t, "accounts@acme.test", got.Email)
	assert.Equal(t, "Acme Traders", got.BusinessName)
	assert.Equal(t, "+91 99999 00000", got.Phone)
}

func TestUpdate_ForeignProfileLooksMissing(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Upsert(ownerCtx("user_a"), domain.UpsertProfileRequest{
		BusinessName: "Acme Traders",
	})
	require.NoError(t, err)

	name := "Hijacked"
	_, err = svc.Update(ownerCtx("user_b"), created.ID.String(), domain.ProfilePatch{BusinessName: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetMine(ownerCtx("user_a"))
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", got.BusinessName)
}

func TestUpdate_MalformedIDLooksMissing(t *testing.T) {
	svc := newTestService(t)

	name := "Acme"
	_, err := svc.Update(ownerCtx("user_a"), "not-an-id", domain.ProfilePatch{BusinessName: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
