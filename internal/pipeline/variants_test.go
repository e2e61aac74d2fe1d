package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadramall/seller-api/internal/models"
)

func attr(name string, t models.AttributeType, values ...string) models.Attribute {
	a := models.Attribute{Name: name, Type: t}
	for _, v := range values {
		a.Values = append(a.Values, models.AttributeValue{AttributeName: name, Value: v})
	}
	return a
}

func TestGenerateCombinationsCartesian(t *testing.T) {
	attrs := []models.Attribute{
		attr("Màu sắc", models.AttributeTypeString, "Đỏ", "Xanh"),
		attr("Kích cỡ", models.AttributeTypeAll, "S", "M", "L"),
	}

	combos := GenerateCombinations(attrs)
	require.Len(t, combos, 6)
	for _, c := range combos {
		require.Len(t, c, 2)
		assert.Equal(t, "Màu sắc", c[0].AttributeName)
		assert.Equal(t, "Kích cỡ", c[1].AttributeName)
	}
}

func TestGenerateCombinationsSkipsEmptyValues(t *testing.T) {
	attrs := []models.Attribute{
		attr("Màu sắc", models.AttributeTypeString, "Đỏ", "", "  "),
		attr("Kích cỡ", models.AttributeTypeAll, "S"),
	}

	combos := GenerateCombinations(attrs)
	require.Len(t, combos, 1)
	assert.Equal(t, "Đỏ", combos[0][0].Value)
}

func TestGenerateCombinationsSkipsEmptyAttributes(t *testing.T) {
	// An attribute with no usable values contributes nothing but does not
	// block the remaining attributes.
	attrs := []models.Attribute{
		attr("Chất liệu", models.AttributeTypeString),
		attr("Kích cỡ", models.AttributeTypeAll, "S", "M"),
	}

	combos := GenerateCombinations(attrs)
	require.Len(t, combos, 2)
	for _, c := range combos {
		require.Len(t, c, 1)
		assert.Equal(t, "Kích cỡ", c[0].AttributeName)
	}
}

func TestGenerateCombinationsAllEmpty(t *testing.T) {
	attrs := []models.Attribute{attr("Màu sắc", models.AttributeTypeString)}
	assert.Nil(t, GenerateCombinations(attrs))
}

func TestCombinationKeyOrderIndependent(t *testing.T) {
	a := []models.AttributeValue{
		{AttributeName: "Màu sắc", Value: "Đỏ"},
		{AttributeName: "Kích cỡ", Value: "M"},
	}
	b := []models.AttributeValue{
		{AttributeName: "Kích cỡ", Value: "M"},
		{AttributeName: "Màu sắc", Value: "Đỏ"},
	}
	assert.Equal(t, CombinationKey(a), CombinationKey(b))
}

func TestReconcilePreservesSurvivingEdits(t *testing.T) {
	attrs := []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	first := Generate(attrs, nil, false)
	require.Len(t, first, 2)

	// Seller edits the S variant.
	first[0].Price = 15000
	first[0].SKU = "TS-S"

	// A new value arrives; regeneration must not wipe the edits.
	attrs[0].Values = append(attrs[0].Values, models.AttributeValue{AttributeName: "Kích cỡ", Value: "L"})
	second := Generate(attrs, first, false)
	require.Len(t, second, 3)

	assert.Equal(t, int64(15000), second[0].Price)
	assert.Equal(t, "TS-S", second[0].SKU)
	assert.True(t, second[2].IsSelected, "new combination starts selected on a new product")
}

func TestReconcileDropsVanishedCombinations(t *testing.T) {
	attrs := []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	variants := Generate(attrs, nil, false)
	require.Len(t, variants, 2)
	variants[1].Price = 20000

	// Remove M; its variant and its edits disappear.
	attrs[0].Values = attrs[0].Values[:1]
	after := Generate(attrs, variants, false)
	require.Len(t, after, 1)
	assert.Equal(t, "S", after[0].Combination[0].Value)
}

func TestReconcileIdempotent(t *testing.T) {
	attrs := []models.Attribute{
		attr("Màu sắc", models.AttributeTypeString, "Đỏ", "Xanh"),
		attr("Kích cỡ", models.AttributeTypeAll, "S", "M"),
	}
	first := Generate(attrs, nil, false)
	second := Generate(attrs, first, false)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}

func TestReconcileEditingDefaultsUnselected(t *testing.T) {
	attrs := []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	variants := Generate(attrs, nil, true)
	require.Len(t, variants, 2)
	for _, v := range variants {
		assert.False(t, v.IsSelected, "new combinations stay unselected while editing")
	}
}

func TestReconcileEditingPromotesPopulatedVariants(t *testing.T) {
	attrs := []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	variants := Generate(attrs, nil, true)
	variants[0].Price = 5000

	after := Generate(attrs, variants, true)
	require.Len(t, after, 2)
	assert.True(t, after[0].IsSelected, "a variant carrying data is promoted to selected")
	assert.False(t, after[1].IsSelected)
}

func TestReconcileEditingNeverClearsSelection(t *testing.T) {
	attrs := []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S")}
	variants := Generate(attrs, nil, true)
	variants[0].IsSelected = true

	after := Generate(attrs, variants, true)
	require.Len(t, after, 1)
	assert.True(t, after[0].IsSelected, "promotion is one-way; selection is never revoked")
}

func TestReconcileFreshVariantPlaceholderIDs(t *testing.T) {
	attrs := []models.Attribute{attr("Kích cỡ", models.AttributeTypeAll, "S", "M")}
	variants := Generate(attrs, nil, false)
	require.Len(t, variants, 2)

	seen := map[int64]bool{}
	for _, v := range variants {
		assert.Negative(t, v.ID, "fresh variants carry placeholder ids, never row ids")
		assert.False(t, seen[v.ID], "placeholder ids must stay distinct")
		seen[v.ID] = true
	}
}

func TestGenerateNoAttributes(t *testing.T) {
	assert.Nil(t, Generate(nil, nil, false))
}

func TestValidateAttributeValue(t *testing.T) {
	assert.Equal(t, MsgValueEmpty, ValidateAttributeValue("  ", models.AttributeTypeAll))
	assert.Equal(t, MsgValueNotString, ValidateAttributeValue("123", models.AttributeTypeString))
	assert.Equal(t, MsgValueNotString, ValidateAttributeValue("1.5", models.AttributeTypeString))
	assert.Equal(t, "", ValidateAttributeValue("Đỏ", models.AttributeTypeString))
	assert.Equal(t, MsgValueNotNumber, ValidateAttributeValue("abc", models.AttributeTypeNumber))
	assert.Equal(t, "", ValidateAttributeValue("-1.25", models.AttributeTypeNumber))
	assert.Equal(t, "", ValidateAttributeValue("anything 123", models.AttributeTypeAll))
}

func TestValidateVariant(t *testing.T) {
	v := &models.Variant{IsSelected: true, Price: -1, Stock: -2}
	errs := ValidateVariant(v)
	assert.Equal(t, MsgPriceNegative, errs["price"])
	assert.Equal(t, MsgStockNegative, errs["stock"])

	// Unselected variants are never validated.
	v.IsSelected = false
	assert.Empty(t, ValidateVariant(v))
}
