package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Identifier is the result of classifying a client-supplied invoice key.
// Exactly one of ID or Number is set.
type Identifier struct {
	ID     snowflake.ID
	Number string
}

// ByID reports whether the identifier resolved to the storage-id form.
func (i Identifier) ByID() bool { return i.ID != 0 }

// ResolveIdentifier classifies candidate as a storage id when it parses
// as the store's native snowflake format, otherwise as an invoice
// number. The storage-id form takes precedence: a candidate that parses
// as an id is never retried as an invoice number, even when no record
// carries that id.
func ResolveIdentifier(candidate string) Identifier {
	trimmed := strings.TrimSpace(candidate)
	if id, err := snowflake.ParseString(trimmed); err == nil && id > 0 {
		return Identifier{ID: id}
	}
	return Identifier{Number: trimmed}
}
