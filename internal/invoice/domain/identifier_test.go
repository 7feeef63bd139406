package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
)

func TestResolveIdentifier_StorageIDForm(t *testing.T) {
	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)
	id := node.Generate()

	got := ResolveIdentifier(id.String())

	assert.True(t, got.ByID())
	assert.Equal(t, id, got.ID)
	assert.Empty(t, got.Number)
}

func TestResolveIdentifier_InvoiceNumberForm(t *testing.T) {
	for _, candidate := range []string{
		"INV-123456-000042",
		"2024/0031",
		"draft-7",
	} {
		got := ResolveIdentifier(candidate)
		assert.False(t, got.ByID(), "candidate=%s", candidate)
		assert.Equal(t, candidate, got.Number)
	}
}

// The storage-id form always wins: a purely numeric candidate is never
// retried as an invoice number, even if some record uses that literal
// string as its number.
func TestResolveIdentifier_IDFormTakesPrecedence(t *testing.T) {
	got := ResolveIdentifier("1320739547139276800")

	assert.True(t, got.ByID())
	assert.Empty(t, got.Number)
}

func TestResolveIdentifier_TrimsWhitespace(t *testing.T) {
	got := ResolveIdentifier("  INV-1  ")
	assert.Equal(t, "INV-1", got.Number)
}

func TestResolveIdentifier_NonPositiveIsNotAnID(t *testing.T) {
	for _, candidate := range []string{"0", "-5"} {
		got := ResolveIdentifier(candidate)
		assert.False(t, got.ByID(), "candidate=%s", candidate)
	}
}
