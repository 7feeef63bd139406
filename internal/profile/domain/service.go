package domain

import (
	"context"
	"errors"
)

type UpsertProfileRequest struct {
	BusinessName string
	Email        string
	Address      string
	Phone        string
	Gst          string

	LogoURL      string
	StampURL     string
	SignatureURL string

	SignatureOwnerName  string
	SignatureOwnerTitle string

	DefaultTaxPercent *float64
}

// ProfilePatch carries a partial update. Nil fields are left untouched.
type ProfilePatch struct {
	BusinessName *string
	Email        *string
	Address      *string
	Phone        *string
	Gst          *string

	LogoURL      *string
	StampURL     *string
	SignatureURL *string

	SignatureOwnerName  *string
	SignatureOwnerTitle *string

	DefaultTaxPercent *float64
}

type Service interface {
	// Upsert creates the owner's profile, or replaces its fields when
	// one already exists. Owners never hold more than one profile.
	Upsert(ctx context.Context, req UpsertProfileRequest) (BusinessProfile, error)
	// GetMine returns the caller's profile. Absence is reported with
	// ErrNotFound; it is a normal outcome, not a failure.
	GetMine(ctx context.Context) (BusinessProfile, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (BusinessProfile, error)
}

var (
	ErrNoOwner           = errors.New("authentication_required")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTaxPercent = errors.New("invalid_tax_percent")
)
