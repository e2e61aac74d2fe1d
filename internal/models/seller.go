package models

import "time"

// Seller is a merchant account able to submit products.
type Seller struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// Store is one storefront owned by a seller.
type Store struct {
	ID       int64  `db:"id" json:"id"`
	SellerID int64  `db:"seller_id" json:"sellerId"`
	Name     string `db:"name" json:"name"`
}
