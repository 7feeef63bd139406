// Package domain contains persistence models for business profiles.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BusinessProfile is the issuer identity an owner maintains. At most
// one profile exists per owner; invoices copy its fields at creation
// time instead of referencing it.
type BusinessProfile struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Owner        string       `gorm:"not null;uniqueIndex:ux_business_profiles_owner" json:"owner"`
	BusinessName string       `gorm:"not null" json:"businessName"`
	Email        string       `gorm:"default:''" json:"email"`
	Address      string       `gorm:"default:''" json:"address"`
	Phone        string       `gorm:"default:''" json:"phone"`
	Gst          string       `gorm:"default:''" json:"gst"`

	LogoURL      string `gorm:"default:''" json:"logoUrl"`
	StampURL     string `gorm:"default:''" json:"stampUrl"`
	SignatureURL string `gorm:"default:''" json:"signatureUrl"`

	SignatureOwnerName  string `gorm:"default:''" json:"signatureOwnerName"`
	SignatureOwnerTitle string `gorm:"default:''" json:"signatureOwnerTitle"`

	DefaultTaxPercent float64 `gorm:"not null;default:18" json:"defaultTaxPercent"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (BusinessProfile) TableName() string { return "business_profiles" }
