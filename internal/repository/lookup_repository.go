package repository

import (
	"context"
	"fmt"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// addressRepository implements AddressRepository using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// GetByID retrieves an address owned by the user.
func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID, userID string) (*model.Address, error) {
	query := `
		SELECT id, user_id, line1, city
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`

	var a model.Address
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&a.ID, &a.UserID, &a.Line1, &a.City)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("address_id", id.String()).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return &a, nil
}

// shippingMethodRepository implements ShippingMethodRepository using PostgreSQL.
type shippingMethodRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShippingMethodRepository creates a new PostgreSQL-backed shipping method repository.
func NewShippingMethodRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShippingMethodRepository {
	return &shippingMethodRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shipping_method").Logger(),
	}
}

// GetByID retrieves a shipping method.
func (r *shippingMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error) {
	query := `
		SELECT id, name, cost
		FROM shipping_methods
		WHERE id = $1
	`

	var m model.ShippingMethod
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Cost)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("shipping_method_id", id.String()).Msg("shipping method not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("shipping_method_id", id.String()).Msg("failed to query shipping method")
		return nil, fmt.Errorf("failed to query shipping method: %w", err)
	}

	return &m, nil
}
