package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/quadramall/seller-api/internal/models"
	"github.com/quadramall/seller-api/internal/pipeline"
	"github.com/quadramall/seller-api/internal/repository"
	"github.com/quadramall/seller-api/internal/utils"
)

// CatalogService persists assembled product payloads and serves products for
// edit hydration. It implements pipeline.Persister; repository errors are
// classified into the pipeline's persistence taxonomy.
type CatalogService struct {
	productRepo *repository.ProductRepository
	sellerRepo  *repository.SellerRepository
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(productRepo *repository.ProductRepository, sellerRepo *repository.SellerRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo, sellerRepo: sellerRepo}
}

// Save creates or updates the product described by the payload. Ownership is
// checked against the payload's seller: saving into someone else's store is
// forbidden, and a slug collision from a concurrent edit is a conflict.
func (s *CatalogService) Save(ctx context.Context, payload *models.ProductPayload) (*models.Product, error) {
	owner, err := s.sellerRepo.GetStoreOwner(payload.StoreID)
	if err != nil {
		return nil, &pipeline.PersistenceError{Status: 400, Message: "cửa hàng không tồn tại"}
	}
	if owner != payload.SellerID {
		return nil, &pipeline.PersistenceError{Status: 403}
	}

	if payload.ID > 0 {
		storeID, err := s.productRepo.GetStoreID(payload.ID)
		if err != nil {
			return nil, classifyPersistError(err)
		}
		if storeID != payload.StoreID {
			return nil, &pipeline.PersistenceError{Status: 403}
		}
		product, err := s.productRepo.Update(ctx, payload)
		if err != nil {
			return nil, classifyPersistError(err)
		}
		log.Info().Int64("product_id", product.ID).Msg("Product updated")
		return product, nil
	}

	product, err := s.productRepo.Create(ctx, payload)
	if err != nil {
		return nil, classifyPersistError(err)
	}
	log.Info().Int64("product_id", product.ID).Msg("Product created")
	return product, nil
}

// classifyPersistError maps repository errors onto persistence statuses the
// orchestrator knows how to surface.
func classifyPersistError(err error) error {
	switch {
	case errors.Is(err, utils.ErrSlugConflict):
		return &pipeline.PersistenceError{Status: 409}
	case errors.Is(err, utils.ErrProductNotFound):
		return &pipeline.PersistenceError{Status: 400, Message: "sản phẩm không tồn tại"}
	default:
		return err
	}
}

// VariantEdit is one persisted variant with its attribute assignments.
type VariantEdit struct {
	models.ProductVariantRow
	ProductDetails []models.VariantDetailRow `json:"productDetails"`
}

// ProductEdit is the hydration DTO for the edit form: the persisted product
// with every child collection the draft needs to rebuild itself.
type ProductEdit struct {
	models.Product
	Images         []models.ProductImage  `json:"images"`
	Variants       []VariantEdit          `json:"variants"`
	Specifications []models.Specification `json:"specifications"`
	AddonGroups    []models.AddonGroup    `json:"addonGroups"`
	Attributes     []models.Attribute     `json:"attributes"`
}

// GetProductForEdit loads a product with all child rows and reconstructs the
// attribute definitions from the variant combinations.
func (s *CatalogService) GetProductForEdit(sellerID, productID int64) (*ProductEdit, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	owner, err := s.sellerRepo.GetStoreOwner(product.StoreID)
	if err != nil {
		return nil, err
	}
	if owner != sellerID {
		return nil, utils.ErrNotStoreOwner
	}

	edit := &ProductEdit{Product: *product}

	if edit.Images, err = s.productRepo.GetImages(productID); err != nil {
		return nil, err
	}
	if edit.Specifications, err = s.productRepo.GetSpecifications(productID); err != nil {
		return nil, err
	}
	if edit.AddonGroups, err = s.productRepo.GetAddonGroups(productID); err != nil {
		return nil, err
	}

	rows, err := s.productRepo.GetVariants(productID)
	if err != nil {
		return nil, err
	}
	edit.Variants = make([]VariantEdit, 0, len(rows))
	for _, row := range rows {
		details, err := s.productRepo.GetVariantDetails(row.ID)
		if err != nil {
			return nil, err
		}
		edit.Variants = append(edit.Variants, VariantEdit{ProductVariantRow: row, ProductDetails: details})
	}

	edit.Attributes = DeriveAttributes(edit.Variants)
	return edit, nil
}

// DeriveAttributes rebuilds the attribute definitions from persisted variant
// combinations: one attribute per distinct name, with its distinct values in
// first-seen order.
func DeriveAttributes(variants []VariantEdit) []models.Attribute {
	byName := map[string]*models.Attribute{}
	var order []string
	var nextID int64 = 1

	for _, v := range variants {
		for _, d := range v.ProductDetails {
			attr, ok := byName[d.AttributeName]
			if !ok {
				attr = &models.Attribute{
					ID:   nextID,
					Name: d.AttributeName,
					Type: models.AttributeType(d.TypesValue),
				}
				nextID++
				byName[d.AttributeName] = attr
				order = append(order, d.AttributeName)
			}
			seen := false
			for _, val := range attr.Values {
				if val.Value == d.AttributeValue {
					seen = true
					break
				}
			}
			if !seen {
				attr.Values = append(attr.Values, models.AttributeValue{
					AttributeName: d.AttributeName,
					Value:         d.AttributeValue,
				})
			}
		}
	}

	out := make([]models.Attribute, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}
