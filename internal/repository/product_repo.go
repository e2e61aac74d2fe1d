package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/quadramall/seller-api/internal/models"
	"github.com/quadramall/seller-api/internal/utils"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint hits.
const pgUniqueViolation = "23505"

// ProductRepository handles data access for products and their child rows.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(id int64) (*models.Product, error) {
	const q = `
	    SELECT p.id, p.store_id, p.item_type_id, it.name AS item_type_name,
	           p.name, p.slug, p.description, p.thumbnail_url,
	           COALESCE(p.video_url, '') AS video_url,
	           p.is_active, p.created_at, p.updated_at
	    FROM products p
	    JOIN item_types it ON it.id = p.item_type_id
	    WHERE p.id = $1 LIMIT 1`
	var product models.Product
	if err := r.db.Get(&product, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetStoreID returns the store a product belongs to.
func (r *ProductRepository) GetStoreID(productID int64) (int64, error) {
	const q = `SELECT store_id FROM products WHERE id = $1 LIMIT 1`
	var storeID int64
	if err := r.db.Get(&storeID, q, productID); err != nil {
		if err == sql.ErrNoRows {
			return 0, utils.ErrProductNotFound
		}
		return 0, err
	}
	return storeID, nil
}

// Create inserts a product with all of its child rows in one transaction.
func (r *ProductRepository) Create(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
	    INSERT INTO products (store_id, item_type_id, name, slug, description, thumbnail_url, video_url, is_active)
	    VALUES ($1, $2, $3, $4, $5, $6, $7, true)
	    RETURNING id, created_at, updated_at`
	var productID int64
	var createdAt, updatedAt sql.NullTime
	err = tx.QueryRowxContext(ctx, q,
		payload.StoreID, payload.ItemTypeID, payload.Name, payload.Slug,
		payload.Description, payload.ThumbnailURL, nullIfEmpty(payload.VideoURL),
	).Scan(&productID, &createdAt, &updatedAt)
	if err != nil {
		return nil, classifyWriteError(err)
	}

	if err := insertChildren(ctx, tx, productID, payload); err != nil {
		return nil, classifyWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(productID)
}

// Update rewrites a product and all of its child rows in one transaction.
// Child rows are replaced wholesale; the payload is the complete new state.
func (r *ProductRepository) Update(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
	    UPDATE products
	    SET item_type_id = $2, name = $3, slug = $4, description = $5,
	        thumbnail_url = $6, video_url = $7, updated_at = NOW()
	    WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		payload.ID, payload.ItemTypeID, payload.Name, payload.Slug,
		payload.Description, payload.ThumbnailURL, nullIfEmpty(payload.VideoURL),
	)
	if err != nil {
		return nil, classifyWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, utils.ErrProductNotFound
	}

	for _, del := range []string{
		`DELETE FROM variant_details WHERE variant_id IN (SELECT id FROM product_variants WHERE product_id = $1)`,
		`DELETE FROM product_variants WHERE product_id = $1`,
		`DELETE FROM product_images WHERE product_id = $1`,
		`DELETE FROM specifications WHERE product_id = $1`,
		`DELETE FROM addons WHERE addon_group_id IN (SELECT id FROM addon_groups WHERE product_id = $1)`,
		`DELETE FROM addon_groups WHERE product_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, del, payload.ID); err != nil {
			return nil, err
		}
	}

	if err := insertChildren(ctx, tx, payload.ID, payload); err != nil {
		return nil, classifyWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(payload.ID)
}

// insertChildren inserts variants, details, images, specifications, and
// addon groups for a product.
func insertChildren(ctx context.Context, tx *sqlx.Tx, productID int64, payload *models.ProductPayload) error {
	const qVariant = `
	    INSERT INTO product_variants (product_id, sku, price, stock_quantity, image_url, is_active)
	    VALUES ($1, $2, $3, $4, $5, $6)
	    RETURNING id`
	const qDetail = `
	    INSERT INTO variant_details (variant_id, attribute_name, attribute_value, types_value)
	    VALUES ($1, $2, $3, $4)`
	for _, v := range payload.Variants {
		var variantID int64
		if err := tx.QueryRowxContext(ctx, qVariant,
			productID, v.SKU, v.Price, v.StockQuantity, nullIfEmpty(v.ImageURL), v.IsActive,
		).Scan(&variantID); err != nil {
			return err
		}
		for _, d := range v.ProductDetails {
			if _, err := tx.ExecContext(ctx, qDetail,
				variantID, d.AttributeValue.AttributeName, d.AttributeValue.Value, d.AttributeValue.TypesValue,
			); err != nil {
				return err
			}
		}
	}

	const qImage = `INSERT INTO product_images (product_id, image_url, position) VALUES ($1, $2, $3)`
	for i, img := range payload.Images {
		if _, err := tx.ExecContext(ctx, qImage, productID, img.ImageURL, i); err != nil {
			return err
		}
	}

	const qSpec = `INSERT INTO specifications (product_id, specification_name, value, position) VALUES ($1, $2, $3, $4)`
	for i, s := range payload.Specifications {
		if _, err := tx.ExecContext(ctx, qSpec, productID, s.SpecificationName, s.Value, i); err != nil {
			return err
		}
	}

	const qGroup = `INSERT INTO addon_groups (product_id, name, max_choice) VALUES ($1, $2, $3) RETURNING id`
	const qAddon = `INSERT INTO addons (addon_group_id, name, price_adjust, active) VALUES ($1, $2, $3, $4)`
	for _, g := range payload.AddonGroups {
		var groupID int64
		if err := tx.QueryRowxContext(ctx, qGroup, productID, g.Name, g.MaxChoice).Scan(&groupID); err != nil {
			return err
		}
		for _, a := range g.Addons {
			if _, err := tx.ExecContext(ctx, qAddon, groupID, a.Name, a.PriceAdjust, a.Active); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetImages returns a product's gallery images in display order.
func (r *ProductRepository) GetImages(productID int64) ([]models.ProductImage, error) {
	const q = `SELECT id, product_id, image_url, position FROM product_images WHERE product_id = $1 ORDER BY position ASC`
	var images []models.ProductImage
	if err := r.db.Select(&images, q, productID); err != nil {
		return nil, err
	}
	return images, nil
}

// GetVariants returns a product's variants.
func (r *ProductRepository) GetVariants(productID int64) ([]models.ProductVariantRow, error) {
	const q = `
	    SELECT id, product_id, sku, price, stock_quantity, COALESCE(image_url, '') AS image_url, is_active
	    FROM product_variants WHERE product_id = $1 ORDER BY id ASC`
	var variants []models.ProductVariantRow
	if err := r.db.Select(&variants, q, productID); err != nil {
		return nil, err
	}
	return variants, nil
}

// GetVariantDetails returns the attribute assignments of a variant.
func (r *ProductRepository) GetVariantDetails(variantID int64) ([]models.VariantDetailRow, error) {
	const q = `
	    SELECT id, variant_id, attribute_name, attribute_value, types_value
	    FROM variant_details WHERE variant_id = $1 ORDER BY id ASC`
	var details []models.VariantDetailRow
	if err := r.db.Select(&details, q, variantID); err != nil {
		return nil, err
	}
	return details, nil
}

// GetSpecifications returns a product's specification rows in order.
func (r *ProductRepository) GetSpecifications(productID int64) ([]models.Specification, error) {
	const q = `SELECT id, specification_name, value FROM specifications WHERE product_id = $1 ORDER BY position ASC`
	rows, err := r.db.Queryx(q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []models.Specification
	for rows.Next() {
		var id int64
		var name, value string
		if err := rows.Scan(&id, &name, &value); err != nil {
			return nil, err
		}
		specID := id
		specs = append(specs, models.Specification{ID: &specID, Name: name, Value: value})
	}
	return specs, rows.Err()
}

// GetAddonGroups returns a product's addon groups with their addons.
func (r *ProductRepository) GetAddonGroups(productID int64) ([]models.AddonGroup, error) {
	const qGroups = `SELECT id, name, max_choice FROM addon_groups WHERE product_id = $1 ORDER BY id ASC`
	rows, err := r.db.Queryx(qGroups, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.AddonGroup
	for rows.Next() {
		var id int64
		var name string
		var maxChoice int
		if err := rows.Scan(&id, &name, &maxChoice); err != nil {
			return nil, err
		}
		groupID := id
		groups = append(groups, models.AddonGroup{ID: &groupID, Name: name, MaxChoice: maxChoice})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qAddons = `SELECT id, name, price_adjust, active FROM addons WHERE addon_group_id = $1 ORDER BY id ASC`
	for i := range groups {
		addonRows, err := r.db.Queryx(qAddons, *groups[i].ID)
		if err != nil {
			return nil, err
		}
		for addonRows.Next() {
			var id int64
			var name string
			var priceAdjust int64
			var active bool
			if err := addonRows.Scan(&id, &name, &priceAdjust, &active); err != nil {
				addonRows.Close()
				return nil, err
			}
			addonID := id
			groups[i].Addons = append(groups[i].Addons, models.Addon{
				ID: &addonID, Name: name, PriceAdjust: priceAdjust, Active: active,
			})
		}
		addonRows.Close()
		if err := addonRows.Err(); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// classifyWriteError maps database write failures to application errors.
// A unique violation on the slug index means a concurrent edit landed first.
func classifyWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return utils.ErrSlugConflict
	}
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
