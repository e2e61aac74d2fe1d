package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Áo thun nam", "ao-thun-nam"},
		{"Điện thoại  Samsung", "dien-thoai-samsung"},
		{"Nồi cơm điện 1.8L (chính hãng)", "noi-com-dien-18l-chinh-hang"},
		{"  Giày -- Sneaker  ", "giay-sneaker"},
		{"ABC", "abc"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.name), "input %q", tc.name)
	}
}

func TestDefaultSKUs(t *testing.T) {
	id := int64(42)
	assert.Equal(t, "P42-V1", DefaultVariantSKU(&id, 0))
	assert.Equal(t, "PNEW-V3", DefaultVariantSKU(nil, 2))
	assert.Equal(t, "P42-DEFAULT", DefaultSingleSKU(&id))
	assert.Equal(t, "PNEW-DEFAULT", DefaultSingleSKU(nil))
}
