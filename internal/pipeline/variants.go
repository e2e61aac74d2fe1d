package pipeline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/quadramall/seller-api/internal/models"
)

var (
	pureDigits  = regexp.MustCompile(`^\d+$`)
	pureNumeric = regexp.MustCompile(`^[\d.]+$`)
	numberValue = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// Attribute value validation messages, evaluated continuously in the console
// and again server-side.
const (
	MsgValueEmpty     = "Giá trị không được để trống"
	MsgValueNotString = "Giá trị phải là chuỗi ký tự, không phải số"
	MsgValueNotNumber = "Giá trị phải là một số hợp lệ"
	MsgPriceNegative  = "Giá phải lớn hơn hoặc bằng 0"
	MsgStockNegative  = "Số lượng tồn kho phải lớn hơn hoặc bằng 0"
)

// ValidateAttributeValue checks one attribute value against its declared
// type. STRING values must not be purely numeric, NUMBER values must parse
// as a number, ALL has no shape constraint. Empty is always invalid.
// Returns "" when the value is acceptable.
func ValidateAttributeValue(value string, t models.AttributeType) string {
	if strings.TrimSpace(value) == "" {
		return MsgValueEmpty
	}
	switch t {
	case models.AttributeTypeString:
		if pureDigits.MatchString(value) || pureNumeric.MatchString(value) {
			return MsgValueNotString
		}
	case models.AttributeTypeNumber:
		if !numberValue.MatchString(strings.TrimSpace(value)) {
			return MsgValueNotNumber
		}
	}
	return ""
}

// ValidateVariant checks price/stock bounds for a variant. Only selected
// variants are validated; an unselected variant's defaults are acceptable
// because it will not be submitted.
func ValidateVariant(v *models.Variant) map[string]string {
	errs := map[string]string{}
	if v.IsSelected {
		if v.Price < 0 {
			errs["price"] = MsgPriceNegative
		}
		if v.Stock < 0 {
			errs["stock"] = MsgStockNegative
		}
	}
	return errs
}

// CombinationKey returns the canonical identity of a combination: sorted
// name:value pairs joined by "|". Order-independent so two combinations with
// the same assignments always collide regardless of attribute insertion order.
func CombinationKey(combo []models.AttributeValue) string {
	pairs := make([]string, len(combo))
	for i, av := range combo {
		pairs[i] = fmt.Sprintf("%s:%s", av.AttributeName, av.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

// GenerateCombinations builds the cartesian product of the attributes'
// non-empty values. Attributes with no populated values contribute nothing
// and are skipped entirely; they do not block combinations forming from the
// remaining attributes.
func GenerateCombinations(attrs []models.Attribute) [][]models.AttributeValue {
	var valid []models.Attribute
	for _, a := range attrs {
		for _, v := range a.Values {
			if strings.TrimSpace(v.Value) != "" {
				valid = append(valid, a)
				break
			}
		}
	}
	if len(valid) == 0 {
		return nil
	}

	var combos [][]models.AttributeValue
	var walk func(idx int, current []models.AttributeValue)
	walk = func(idx int, current []models.AttributeValue) {
		if idx == len(valid) {
			combo := make([]models.AttributeValue, len(current))
			copy(combo, current)
			combos = append(combos, combo)
			return
		}
		for _, v := range valid[idx].Values {
			if strings.TrimSpace(v.Value) == "" {
				continue
			}
			walk(idx+1, append(current, models.AttributeValue{
				AttributeName: valid[idx].Name,
				Value:         v.Value,
			}))
		}
	}
	walk(0, nil)
	return combos
}

// Reconcile merges freshly generated combinations with the previous variant
// set. Surviving combinations keep their variant record untouched, new
// combinations get a fresh variant (selected for new products, unselected
// when editing), and combinations that are no longer producible are dropped
// along with any edits made to them. When editing, variants that already
// carry data are promoted to selected so a populated variant is never
// silently dropped from the update; an explicit selection is never cleared.
func Reconcile(previous []*models.Variant, combos [][]models.AttributeValue, editing bool) []*models.Variant {
	generated := make(map[string][]models.AttributeValue, len(combos))
	order := make([]string, 0, len(combos))
	for _, c := range combos {
		key := CombinationKey(c)
		if _, ok := generated[key]; !ok {
			generated[key] = c
			order = append(order, key)
		}
	}

	existing := make(map[string]*models.Variant, len(previous))
	var result []*models.Variant
	for _, v := range previous {
		key := CombinationKey(v.Combination)
		if _, keep := generated[key]; !keep {
			continue
		}
		if _, dup := existing[key]; dup {
			continue
		}
		existing[key] = v
		result = append(result, v)
	}

	// Fresh variants get negative placeholder ids: unique enough for the
	// console to key on, and never mistakable for a persisted row id.
	nextID := int64(-1)
	for _, key := range order {
		if _, ok := existing[key]; ok {
			continue
		}
		result = append(result, &models.Variant{
			ID:          nextID,
			Combination: generated[key],
			Price:       0,
			Stock:       0,
			SKU:         "",
			Image:       nil,
			IsActive:    true,
			IsSelected:  !editing,
		})
		nextID--
	}

	if editing {
		for _, v := range result {
			if v.HasData() {
				v.IsSelected = true
			}
		}
	}
	return result
}

// Generate derives the variant set for the given attributes, reconciling
// against the previous set. An empty attribute list yields no variants.
func Generate(attrs []models.Attribute, previous []*models.Variant, editing bool) []*models.Variant {
	if len(attrs) == 0 {
		return nil
	}
	return Reconcile(previous, GenerateCombinations(attrs), editing)
}
