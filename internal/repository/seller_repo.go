package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/quadramall/seller-api/internal/models"
)

// SellerRepository handles data access for seller accounts and their stores.
type SellerRepository struct {
	db *sqlx.DB
}

// NewSellerRepository creates a new SellerRepository.
func NewSellerRepository(db *sqlx.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

// GetByEmail returns a seller by email.
func (r *SellerRepository) GetByEmail(email string) (*models.Seller, error) {
	const q = `SELECT * FROM sellers WHERE email = $1 LIMIT 1`
	var seller models.Seller
	if err := r.db.Get(&seller, q, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &seller, nil
}

// GetByID returns a seller by id.
func (r *SellerRepository) GetByID(id int64) (*models.Seller, error) {
	const q = `SELECT * FROM sellers WHERE id = $1 LIMIT 1`
	var seller models.Seller
	if err := r.db.Get(&seller, q, id); err != nil {
		return nil, err
	}
	return &seller, nil
}

// GetStores returns the stores owned by a seller.
func (r *SellerRepository) GetStores(sellerID int64) ([]models.Store, error) {
	const q = `SELECT id, seller_id, name FROM stores WHERE seller_id = $1 ORDER BY id ASC`
	var stores []models.Store
	if err := r.db.Select(&stores, q, sellerID); err != nil {
		return nil, err
	}
	return stores, nil
}

// GetStoreOwner returns the seller id owning a store.
func (r *SellerRepository) GetStoreOwner(storeID int64) (int64, error) {
	const q = `SELECT seller_id FROM stores WHERE id = $1 LIMIT 1`
	var sellerID int64
	if err := r.db.Get(&sellerID, q, storeID); err != nil {
		return 0, err
	}
	return sellerID, nil
}

// Create inserts a new seller account.
func (r *SellerRepository) Create(seller *models.Seller) error {
	const q = `INSERT INTO sellers (email, password_hash, name, is_active)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q, seller.Email, seller.PasswordHash, seller.Name, seller.IsActive).
		Scan(&seller.ID, &seller.CreatedAt, &seller.UpdatedAt)
}
