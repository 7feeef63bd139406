package totals

import (
	"testing"

	"github.com/billcraft/billcraft/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

func TestCompute_Scenario(t *testing.T) {
	items := []domain.LineItem{
		{ID: "1", Description: "Consulting", Quantity: 2, UnitPrice: 100},
	}

	got := Compute(items, 18)

	assert.InDelta(t, 200, got.Subtotal, 1e-9)
	assert.InDelta(t, 36, got.Tax, 1e-9)
	assert.InDelta(t, 236, got.Total, 1e-9)
}

func TestCompute_EmptyItems(t *testing.T) {
	for _, taxPercent := range []float64{0, 18, 99.5} {
		got := Compute(nil, taxPercent)
		assert.Equal(t, Totals{}, got)
	}
}

func TestCompute_Identities(t *testing.T) {
	cases := []struct {
		name       string
		items      []domain.LineItem
		taxPercent float64
	}{
		{"single line", []domain.LineItem{{Quantity: 3, UnitPrice: 49.99}}, 18},
		{"multiple lines", []domain.LineItem{
			{Quantity: 1, UnitPrice: 250},
			{Quantity: 10, UnitPrice: 12.5},
			{Quantity: 0.5, UnitPrice: 1000},
		}, 12},
		{"zero tax", []domain.LineItem{{Quantity: 7, UnitPrice: 33}}, 0},
		{"fractional tax", []domain.LineItem{{Quantity: 2, UnitPrice: 99.95}}, 5.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.items, tc.taxPercent)
			assert.InDelta(t, got.Subtotal+got.Tax, got.Total, 1e-9)
			assert.InDelta(t, got.Subtotal*tc.taxPercent/100, got.Tax, 1e-9)
		})
	}
}

func TestCompute_NegativeValuesAreNotRejected(t *testing.T) {
	got := Compute([]domain.LineItem{{Quantity: -2, UnitPrice: 100}}, 18)

	assert.InDelta(t, -200, got.Subtotal, 1e-9)
	assert.InDelta(t, got.Subtotal+got.Tax, got.Total, 1e-9)
	assert.False(t, got.Total != got.Total, "total must not be NaN")
}

func TestDecodeItems_Array(t *testing.T) {
	items := DecodeItems([]byte(`[{"id":"a","description":"Widget","qty":2,"unitPrice":100}]`))

	assert.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Description)
	assert.InDelta(t, 2, items[0].Quantity, 1e-9)
	assert.InDelta(t, 100, items[0].UnitPrice, 1e-9)
}

func TestDecodeItems_SerializedString(t *testing.T) {
	items := DecodeItems([]byte(`"[{\"id\":\"a\",\"qty\":1,\"unitPrice\":50}]"`))

	assert.Len(t, items, 1)
	assert.InDelta(t, 50, items[0].UnitPrice, 1e-9)
}

func TestDecodeItems_MalformedDegradesToEmpty(t *testing.T) {
	for _, raw := range []string{
		`"{not json"`,
		`"[{"`,
		`{"qty":1}`,
		`12`,
	} {
		items := DecodeItems([]byte(raw))
		got := Compute(items, 18)
		assert.Equal(t, Totals{}, got, "raw=%s", raw)
	}
}

func TestDecodeItems_NonNumericFieldsCoerceToZero(t *testing.T) {
	items := DecodeItems([]byte(`[{"id":"a","qty":"oops","unitPrice":"12.5"},{"qty":null,"unitPrice":10}]`))

	assert.Len(t, items, 2)
	assert.Zero(t, items[0].Quantity)
	assert.InDelta(t, 12.5, items[0].UnitPrice, 1e-9)
	assert.Zero(t, items[1].Quantity)

	got := Compute(items, 10)
	assert.Equal(t, Totals{}, got, "coerced-to-zero quantities contribute nothing")
}
