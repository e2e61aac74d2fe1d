package service

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/quadramall/seller-api/internal/models"
	"github.com/quadramall/seller-api/internal/repository"
	"github.com/quadramall/seller-api/internal/utils"
)

// AuthService handles seller authentication.
type AuthService struct {
	sellerRepo *repository.SellerRepository
}

// NewAuthService constructs an AuthService.
func NewAuthService(sellerRepo *repository.SellerRepository) *AuthService {
	return &AuthService{sellerRepo: sellerRepo}
}

// LoginResult carries the issued token with the authenticated seller and
// the stores the token grants access to.
type LoginResult struct {
	Token  string         `json:"token"`
	Seller *models.Seller `json:"seller"`
	Stores []models.Store `json:"stores"`
}

// Login authenticates a seller by email and password and issues a JWT scoped
// to the seller's stores.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	seller, err := s.sellerRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrInvalidCreds
		}
		return nil, err
	}

	if !seller.IsActive {
		return nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte(password)); err != nil {
		return nil, utils.ErrInvalidCreds
	}

	stores, err := s.sellerRepo.GetStores(seller.ID)
	if err != nil {
		return nil, err
	}
	storeIDs := make([]int64, 0, len(stores))
	for _, st := range stores {
		storeIDs = append(storeIDs, st.ID)
	}

	token, err := utils.GenerateJWT(seller.ID, seller.Email, storeIDs)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("seller_id", seller.ID).Msg("Seller logged in")
	return &LoginResult{Token: token, Seller: seller, Stores: stores}, nil
}
