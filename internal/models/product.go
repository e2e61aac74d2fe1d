package models

import "time"

// Product is a persisted catalog product.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID           int64     `db:"id" json:"id"`
	StoreID      int64     `db:"store_id" json:"storeId"`
	ItemTypeID   int64     `db:"item_type_id" json:"itemTypeId"`
	ItemTypeName string    `db:"item_type_name" json:"itemTypeName"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnailUrl"`
	VideoURL     string    `db:"video_url" json:"videoUrl,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// ProductImage is one gallery image row.
type ProductImage struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"-"`
	ImageURL  string `db:"image_url" json:"url"`
	Position  int    `db:"position" json:"-"`
}

// ProductVariantRow is one persisted sellable variant.
type ProductVariantRow struct {
	ID            int64  `db:"id" json:"id"`
	ProductID     int64  `db:"product_id" json:"-"`
	SKU           string `db:"sku" json:"sku"`
	Price         int64  `db:"price" json:"price"`
	StockQuantity int    `db:"stock_quantity" json:"stockQuantity"`
	ImageURL      string `db:"image_url" json:"imageUrl,omitempty"`
	IsActive      bool   `db:"is_active" json:"isActive"`
}

// VariantDetailRow is one attribute name/value assignment of a variant.
type VariantDetailRow struct {
	ID             int64  `db:"id" json:"attributeValueId"`
	VariantID      int64  `db:"variant_id" json:"-"`
	AttributeName  string `db:"attribute_name" json:"attributeName"`
	AttributeValue string `db:"attribute_value" json:"value"`
	TypesValue     string `db:"types_value" json:"typesValue"`
}
