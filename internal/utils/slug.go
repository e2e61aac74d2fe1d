package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugRepeats = regexp.MustCompile(`-+`)

	foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify derives a URL slug from a product name: fold diacritics to ASCII
// (product names are mostly Vietnamese), lowercase, strip everything but
// letters/digits/spaces/hyphens, collapse whitespace and repeated hyphens.
func Slugify(name string) string {
	s, _, err := transform.String(foldDiacritics, name)
	if err != nil {
		s = name
	}
	// đ/Đ do not decompose; map them explicitly.
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugRepeats.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// skuProductRef renders the product part of a generated SKU.
func skuProductRef(productID *int64) string {
	if productID != nil && *productID > 0 {
		return fmt.Sprintf("%d", *productID)
	}
	return "NEW"
}

// DefaultVariantSKU generates the fallback SKU for the index-th selected
// variant when the seller left the SKU blank.
func DefaultVariantSKU(productID *int64, index int) string {
	return fmt.Sprintf("P%s-V%d", skuProductRef(productID), index+1)
}

// DefaultSingleSKU generates the fallback SKU for the implicit variant of a
// product without attributes.
func DefaultSingleSKU(productID *int64) string {
	return fmt.Sprintf("P%s-DEFAULT", skuProductRef(productID))
}
