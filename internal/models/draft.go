package models

// AttributeType enumerates the value shapes an attribute may take.
type AttributeType string

const (
	AttributeTypeString AttributeType = "STRING"
	AttributeTypeNumber AttributeType = "NUMBER"
	AttributeTypeAll    AttributeType = "ALL"
)

// AssetReference points at one image or video belonging to a draft. Before
// submission it carries the staged bytes plus the client-side preview URL;
// after upload (or when hydrated from an existing product) it carries only
// the durable remote URL.
type AssetReference struct {
	ID          *int64 `json:"id"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	RemoteURL   string `json:"url,omitempty"`
	ContentType string `json:"contentType,omitempty"`

	// Staged bytes, present only between intake and upload. Exclusively
	// owned by the submission; released exactly once by the orchestrator.
	Data     []byte `json:"-"`
	released bool
}

// Pending reports whether the reference still carries a local file that must
// be uploaded before the draft can be persisted.
func (a *AssetReference) Pending() bool {
	return a != nil && !a.released && len(a.Data) > 0
}

// Release drops the staged bytes and invalidates the preview URL. Safe to
// call once per reference; subsequent calls are no-ops so teardown after a
// partial submission cannot double-release.
func (a *AssetReference) Release() {
	if a == nil || a.released {
		return
	}
	a.Data = nil
	a.PreviewURL = ""
	a.released = true
}

// AttributeValue is one value of one named attribute.
type AttributeValue struct {
	AttributeName string `json:"attributeName"`
	Value         string `json:"value"`
}

// Attribute is a seller-defined product attribute with its candidate values.
type Attribute struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Type   AttributeType    `json:"typesValue"`
	Values []AttributeValue `json:"values"`
}

// Variant is one sellable combination of attribute values. Variants are
// derived from attributes; user edits on price/stock/sku/image survive
// regeneration for combinations that still exist.
type Variant struct {
	ID          int64            `json:"id"`
	Combination []AttributeValue `json:"combination"`
	Price       int64            `json:"price"`
	Stock       int              `json:"stock"`
	SKU         string           `json:"sku"`
	Image       *AssetReference  `json:"image,omitempty"`
	AltText     string           `json:"altText"`
	IsActive    bool             `json:"isActive"`
	IsSelected  bool             `json:"isSelected"`
}

// HasData reports whether a variant carries anything beyond the defaults a
// fresh variant is created with. Used when editing to re-select variants that
// were populated before the edit session began.
func (v *Variant) HasData() bool {
	return v.Price > 0 || v.Stock > 0 || v.SKU != "" || v.AltText != "" || v.Image != nil
}

// Specification is one name/value technical detail row.
type Specification struct {
	ID    *int64 `json:"id,omitempty"`
	Name  string `json:"specificationName"`
	Value string `json:"value"`
}

// Addon is one optional extra within an addon group.
type Addon struct {
	ID          *int64 `json:"id,omitempty"`
	Name        string `json:"name"`
	PriceAdjust int64  `json:"priceAdjust"`
	Active      bool   `json:"active"`
}

// AddonGroup bundles addons with a selection limit.
type AddonGroup struct {
	ID        *int64  `json:"id,omitempty"`
	Name      string  `json:"name"`
	MaxChoice int     `json:"maxChoice"`
	Addons    []Addon `json:"addons"`
}

// ItemType is the category the product is filed under.
type ItemType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DefaultValues holds the price/stock used for the implicit single variant
// when the draft defines no attributes.
type DefaultValues struct {
	Price int64 `json:"price"`
	Stock int   `json:"stock"`
}

// ProductDraft is the transient, submission-owned form state. It exists from
// intake until the pipeline reaches a terminal state; staged asset bytes are
// released as they are uploaded and on teardown.
type ProductDraft struct {
	ProductID        *int64            `json:"id,omitempty"`
	SellerID         int64             `json:"-"`
	StoreID          int64             `json:"storeId"`
	Name             string            `json:"name"`
	ItemType         *ItemType         `json:"itemType"`
	Description      string            `json:"description"`
	Thumbnail        *AssetReference   `json:"thumbnail"`
	Images           []*AssetReference `json:"images"`
	Video            *AssetReference   `json:"video,omitempty"`
	Specifications   []Specification   `json:"specifications"`
	Attributes       []Attribute       `json:"attributes"`
	Variants         []*Variant        `json:"variants"`
	AddonGroups      []AddonGroup      `json:"addonGroups"`
	DescriptionFiles []*AssetReference `json:"-"`
	Defaults         DefaultValues     `json:"defaultValues"`
}

// Editing reports whether the draft updates an existing product.
func (d *ProductDraft) Editing() bool {
	return d.ProductID != nil && *d.ProductID > 0
}

// ReleaseAll releases every staged asset still held by the draft. Called on
// teardown so an aborted submission does not leak staged bytes.
func (d *ProductDraft) ReleaseAll() {
	d.Thumbnail.Release()
	for _, img := range d.Images {
		img.Release()
	}
	d.Video.Release()
	for _, v := range d.Variants {
		v.Image.Release()
	}
	for _, f := range d.DescriptionFiles {
		f.Release()
	}
}
