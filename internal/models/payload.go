package models

// ProductPayload is the fully assembled persistence payload. Every asset it
// references must carry a durable URL; the orchestrator guarantees this
// before handing it to the persister.
type ProductPayload struct {
	ID             int64                  `json:"id"`
	SellerID       int64                  `json:"-"`
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description"`
	ThumbnailURL   string                 `json:"thumbnailUrl"`
	VideoURL       string                 `json:"videoUrl"`
	StoreID        int64                  `json:"storeId"`
	ItemTypeID     int64                  `json:"itemTypeId"`
	Variants       []VariantPayload       `json:"variants"`
	AddonGroups    []AddonGroupPayload    `json:"addonGroups"`
	Specifications []SpecificationPayload `json:"specifications"`
	Images         []ImagePayload         `json:"images"`
}

// VariantPayload is one variant in the persistence payload.
type VariantPayload struct {
	ID             *int64          `json:"id,omitempty"`
	SKU            string          `json:"sku"`
	Price          int64           `json:"price"`
	StockQuantity  int             `json:"stockQuantity"`
	ImageURL       string          `json:"imageUrl"`
	IsActive       bool            `json:"isActive"`
	ProductDetails []ProductDetail `json:"productDetails"`
}

// ProductDetail wraps one attribute value assignment.
type ProductDetail struct {
	AttributeValue AttributeValuePayload `json:"attributeValue"`
}

// AttributeValuePayload carries the attribute name, value, and value type.
type AttributeValuePayload struct {
	AttributeName string `json:"attributeName"`
	Value         string `json:"value"`
	TypesValue    string `json:"typesValue"`
}

// AddonGroupPayload is one addon group in the persistence payload.
type AddonGroupPayload struct {
	ID        *int64         `json:"id,omitempty"`
	Name      string         `json:"name"`
	MaxChoice int            `json:"maxChoice"`
	Addons    []AddonPayload `json:"addons"`
}

// AddonPayload is one addon in the persistence payload.
type AddonPayload struct {
	ID          *int64 `json:"id,omitempty"`
	Name        string `json:"name"`
	PriceAdjust int64  `json:"priceAdjust"`
	Active      bool   `json:"active"`
}

// SpecificationPayload is one specification row in the persistence payload.
type SpecificationPayload struct {
	ID                *int64 `json:"id,omitempty"`
	SpecificationName string `json:"specificationName"`
	Value             string `json:"value"`
}

// ImagePayload is one gallery image in the persistence payload.
type ImagePayload struct {
	ID       *int64 `json:"id"`
	ImageURL string `json:"imageUrl"`
}
