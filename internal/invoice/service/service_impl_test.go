package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/invoice/domain"
	invoicerepo "github.com/billcraft/billcraft/internal/invoice/repository"
	"github.com/billcraft/billcraft/internal/ownerctx"
	profiledomain "github.com/billcraft/billcraft/internal/profile/domain"
	profilerepo "github.com/billcraft/billcraft/internal/profile/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-\d{6}-\d{6}$`)

func testConfig() config.Config {
	return config.Config{
		DefaultCurrency:     "INR",
		DefaultTaxPercent:   18,
		DefaultBusinessName: "ABC Solutions",
	}
}

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}, &profiledomain.BusinessProfile{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Cfg:      testConfig(),
		GenID:    node,
		Repo:     invoicerepo.Provide(),
		Profiles: profilerepo.Provide(),
	})
	return svc, db, node
}

func ownerCtx(owner string) context.Context {
	return ownerctx.WithOwner(context.Background(), owner)
}

func createRequest() domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		IssueDate:        "2026-08-01",
		FromBusinessName: "Acme Traders",
		Client:           domain.ClientInfo{Name: "Globex"},
		Items: []domain.LineItem{
			{ID: "1", Description: "Consulting", Quantity: 2, UnitPrice: 100},
		},
	}
}

func TestCreate_ComputesTotalsAndDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	assert.InDelta(t, 200, inv.Subtotal, 1e-9)
	assert.InDelta(t, 36, inv.Tax, 1e-9)
	assert.InDelta(t, 236, inv.Total, 1e-9)
	assert.InDelta(t, 18, inv.TaxPercent, 1e-9)
	assert.Equal(t, "INR", inv.Currency)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Regexp(t, invoiceNumberPattern, inv.InvoiceNumber)
	assert.NotZero(t, inv.ID)
}

func TestCreate_IgnoresClientSuppliedTotals(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createRequest()
	tax := 10.0
	req.TaxPercent = &tax

	inv, err := svc.Create(ownerCtx("user_a"), req)
	require.NoError(t, err)

	assert.InDelta(t, 200, inv.Subtotal, 1e-9)
	assert.InDelta(t, 20, inv.Tax, 1e-9)
	assert.InDelta(t, 220, inv.Total, 1e-9)
}

func TestCreate_RequiresOwner(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), createRequest())
	assert.ErrorIs(t, err, domain.ErrNoOwner)
}

func TestCreate_RequiresIssueDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createRequest()
	req.IssueDate = "  "

	_, err := svc.Create(ownerCtx("user_a"), req)
	assert.ErrorIs(t, err, domain.ErrInvalidIssueDate)
}

func TestCreate_RequiresBusinessContext(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createRequest()
	req.FromBusinessName = ""

	_, err := svc.Create(ownerCtx("user_a"), req)
	assert.ErrorIs(t, err, domain.ErrInvalidBusinessName)
}

func TestCreate_SnapshotsBusinessProfile(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := ownerCtx("user_a")

	profiles := profilerepo.Provide()
	require.NoError(t, profiles.Insert(ctx, db, &profiledomain.BusinessProfile{
		ID:                node.Generate(),
		Owner:             "user_a",
		BusinessName:      "Acme Traders",
		Email:             "billing@acme.test",
		Gst:               "GST-42",
		DefaultTaxPercent: 12,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}))

	req := createRequest()
	req.FromBusinessName = ""
	req.TaxPercent = nil

	inv, err := svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "Acme Traders", inv.FromBusinessName)
	assert.Equal(t, "billing@acme.test", inv.FromEmail)
	assert.Equal(t, "GST-42", inv.FromGst)
	assert.InDelta(t, 12, inv.TaxPercent, 1e-9)

	// Later profile edits must not touch the issued invoice.
	require.NoError(t, db.Model(&profiledomain.BusinessProfile{}).
		Where("owner = ?", "user_a").
		Update("business_name", "Renamed Ltd").Error)

	fetched, err := svc.GetByIdentifier(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", fetched.FromBusinessName)
}

func TestCreate_ExplicitDuplicateNumberConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	req := createRequest()
	req.InvoiceNumber = "INV-2026-0001"

	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateNumber)
}

func TestCreate_SameNumberDifferentOwnersIsAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createRequest()
	req.InvoiceNumber = "INV-2026-0001"

	_, err := svc.Create(ownerCtx("user_a"), req)
	require.NoError(t, err)

	_, err = svc.Create(ownerCtx("user_b"), req)
	assert.NoError(t, err)
}

func TestList_NewestFirstAndOwnerScoped(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctxA := ownerCtx("user_a")

	var ids []snowflake.ID
	for i := 0; i < 3; i++ {
		req := createRequest()
		req.InvoiceNumber = fmt.Sprintf("INV-2026-%04d", i)
		inv, err := svc.Create(ctxA, req)
		require.NoError(t, err)
		ids = append(ids, inv.ID)
	}

	_, err := svc.Create(ownerCtx("user_b"), createRequest())
	require.NoError(t, err)

	list, err := svc.List(ctxA)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Equal(t, ids[0], list[2].ID)

	empty, err := svc.List(ownerCtx("user_c"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetByIdentifier_AcceptsBothForms(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	byID, err := svc.GetByIdentifier(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byID.ID)

	byNumber, err := svc.GetByIdentifier(ctx, inv.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)

	_, err = svc.GetByIdentifier(ctx, "INV-does-not-exist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOwnerScoping_ForeignRecordsLookMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	inv, err := svc.Create(ownerCtx("user_a"), createRequest())
	require.NoError(t, err)

	ctxB := ownerCtx("user_b")
	for _, candidate := range []string{inv.ID.String(), inv.InvoiceNumber} {
		_, err = svc.GetByIdentifier(ctxB, candidate)
		assert.ErrorIs(t, err, domain.ErrNotFound, "get candidate=%s", candidate)

		notes := "hijack"
		_, err = svc.Update(ctxB, candidate, domain.InvoicePatch{Notes: &notes})
		assert.ErrorIs(t, err, domain.ErrNotFound, "update candidate=%s", candidate)

		err = svc.Delete(ctxB, candidate)
		assert.ErrorIs(t, err, domain.ErrNotFound, "delete candidate=%s", candidate)
	}

	// The record itself is untouched.
	got, err := svc.GetByIdentifier(ownerCtx("user_a"), inv.ID.String())
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}

func TestUpdate_PartialNotesKeepsTotals(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	notes := "paid in cash"
	got, err := svc.Update(ctx, inv.InvoiceNumber, domain.InvoicePatch{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "paid in cash", got.Notes)
	assert.InDelta(t, inv.Subtotal, got.Subtotal, 1e-9)
	assert.InDelta(t, inv.Tax, got.Tax, 1e-9)
	assert.InDelta(t, inv.Total, got.Total, 1e-9)
}

func TestUpdate_EmptyPatchLeavesRecordUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	got, err := svc.Update(ctx, inv.ID.String(), domain.InvoicePatch{})
	require.NoError(t, err)

	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, inv.IssueDate, got.IssueDate)
	assert.Equal(t, inv.FromBusinessName, got.FromBusinessName)
	assert.Equal(t, inv.Client, got.Client)
	assert.Equal(t, inv.Items, got.Items)
	assert.Equal(t, inv.Currency, got.Currency)
	assert.Equal(t, inv.Status, got.Status)
	assert.InDelta(t, inv.TaxPercent, got.TaxPercent, 1e-9)
	assert.InDelta(t, inv.Subtotal, got.Subtotal, 1e-9)
	assert.InDelta(t, inv.Tax, got.Tax, 1e-9)
	assert.InDelta(t, inv.Total, got.Total, 1e-9)
	assert.Equal(t, inv.Notes, got.Notes)
	assert.False(t, got.UpdatedAt.Before(inv.UpdatedAt))
}

func TestUpdate_RecomputesTotalsFromItems(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	items := []domain.LineItem{
		{ID: "1", Description: "Consulting", Quantity: 3, UnitPrice: 150},
	}
	got, err := svc.Update(ctx, inv.ID.String(), domain.InvoicePatch{Items: &items})
	require.NoError(t, err)

	assert.InDelta(t, 450, got.Subtotal, 1e-9)
	assert.InDelta(t, 81, got.Tax, 1e-9)
	assert.InDelta(t, 531, got.Total, 1e-9)
}

func TestUpdate_RecomputesTotalsFromTaxPercent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	tax := 0.0
	got, err := svc.Update(ctx, inv.ID.String(), domain.InvoicePatch{TaxPercent: &tax})
	require.NoError(t, err)

	assert.InDelta(t, 200, got.Subtotal, 1e-9)
	assert.Zero(t, got.Tax)
	assert.InDelta(t, 200, got.Total, 1e-9)
}

func TestUpdate_RejectsInvalidStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	status := "archived"
	_, err = svc.Update(ctx, inv.ID.String(), domain.InvoicePatch{Status: &status})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdate_DuplicateNumberConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	first := createRequest()
	first.InvoiceNumber = "INV-2026-0001"
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := createRequest()
	second.InvoiceNumber = "INV-2026-0002"
	inv, err := svc.Create(ctx, second)
	require.NoError(t, err)

	taken := "INV-2026-0001"
	_, err = svc.Update(ctx, inv.ID.String(), domain.InvoicePatch{InvoiceNumber: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateNumber)
}

func TestDelete_IsNotIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := ownerCtx("user_a")

	inv, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, inv.InvoiceNumber))

	_, err = svc.GetByIdentifier(ctx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, inv.InvoiceNumber)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
