package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadramall/seller-api/internal/models"
)

func detail(name, value, typesValue string) models.VariantDetailRow {
	return models.VariantDetailRow{AttributeName: name, AttributeValue: value, TypesValue: typesValue}
}

func TestDeriveAttributes(t *testing.T) {
	variants := []VariantEdit{
		{ProductDetails: []models.VariantDetailRow{
			detail("Màu sắc", "Đỏ", "STRING"),
			detail("Kích cỡ", "S", "ALL"),
		}},
		{ProductDetails: []models.VariantDetailRow{
			detail("Màu sắc", "Đỏ", "STRING"),
			detail("Kích cỡ", "M", "ALL"),
		}},
		{ProductDetails: []models.VariantDetailRow{
			detail("Màu sắc", "Xanh", "STRING"),
			detail("Kích cỡ", "S", "ALL"),
		}},
	}

	attrs := DeriveAttributes(variants)
	require.Len(t, attrs, 2)

	assert.Equal(t, "Màu sắc", attrs[0].Name)
	assert.Equal(t, models.AttributeTypeString, attrs[0].Type)
	require.Len(t, attrs[0].Values, 2)
	assert.Equal(t, "Đỏ", attrs[0].Values[0].Value)
	assert.Equal(t, "Xanh", attrs[0].Values[1].Value)

	assert.Equal(t, "Kích cỡ", attrs[1].Name)
	require.Len(t, attrs[1].Values, 2)
	assert.Equal(t, "S", attrs[1].Values[0].Value)
	assert.Equal(t, "M", attrs[1].Values[1].Value)
}

func TestDeriveAttributesEmpty(t *testing.T) {
	assert.Empty(t, DeriveAttributes(nil))
	assert.Empty(t, DeriveAttributes([]VariantEdit{{}}))
}
