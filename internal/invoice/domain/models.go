// Package domain contains persistence models for invoices.
package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}

// LineItem is a single line on an invoice. The line amount is always
// derived from quantity and unit price, never stored independently.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"qty"`
	UnitPrice   float64 `json:"unitPrice"`
}

// UnmarshalJSON coerces loosely typed payloads: numeric fields may
// arrive as numbers or numeric strings, anything else counts as 0.
func (it *LineItem) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.ID = coerceString(raw["id"])
	it.Description = coerceString(raw["description"])
	it.Quantity = coerceNumber(raw["qty"])
	it.UnitPrice = coerceNumber(raw["unitPrice"])
	return nil
}

// Amount returns quantity * unitPrice, guarding against NaN and Inf.
func (it LineItem) Amount() float64 {
	amount := it.Quantity * it.UnitPrice
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}

func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func coerceNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	}
	return 0
}

// ClientInfo is the billed party as printed on the invoice.
type ClientInfo struct {
	Name    string `gorm:"column:client_name" json:"name"`
	Email   string `gorm:"column:client_email" json:"email"`
	Address string `gorm:"column:client_address" json:"address"`
	Phone   string `gorm:"column:client_phone" json:"phone"`
}

// Invoice is an owner-scoped invoice record. The from* fields are a
// snapshot of the issuer's business profile taken at creation time;
// later profile edits never change an issued invoice.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Owner         string       `gorm:"not null;index;uniqueIndex:ux_invoices_owner_number" json:"owner"`
	InvoiceNumber string       `gorm:"not null;uniqueIndex:ux_invoices_owner_number" json:"invoiceNumber"`
	IssueDate     string       `gorm:"not null" json:"issueDate"`
	DueDate       string       `gorm:"default:''" json:"dueDate"`

	FromBusinessName string `gorm:"default:''" json:"fromBusinessName"`
	FromEmail        string `gorm:"default:''" json:"fromEmail"`
	FromAddress      string `gorm:"default:''" json:"fromAddress"`
	FromPhone        string `gorm:"default:''" json:"fromPhone"`
	FromGst          string `gorm:"default:''" json:"fromGst"`

	Client ClientInfo `gorm:"embedded" json:"client"`

	Items datatypes.JSONSlice[LineItem] `json:"items"`

	Currency   string        `gorm:"not null;default:'INR'" json:"currency"`
	Status     InvoiceStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	TaxPercent float64       `gorm:"not null;default:18" json:"taxPercent"`

	// Derived on every mutation, never accepted from a client payload.
	Subtotal float64 `gorm:"not null;default:0" json:"subtotal"`
	Tax      float64 `gorm:"not null;default:0" json:"tax"`
	Total    float64 `gorm:"not null;default:0" json:"total"`

	LogoURL      string `gorm:"default:''" json:"logoUrl"`
	StampURL     string `gorm:"default:''" json:"stampUrl"`
	SignatureURL string `gorm:"default:''" json:"signatureUrl"`

	SignatureName  string `gorm:"default:''" json:"signatureName"`
	SignatureTitle string `gorm:"default:''" json:"signatureTitle"`
	Notes          string `gorm:"default:''" json:"notes"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
