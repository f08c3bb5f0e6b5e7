package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
)

// Repository persists customers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a customer repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindExact returns the customer matching every field exactly, or nil.
func (r *Repository) FindExact(ctx context.Context, name, phone, address string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("name = ? AND phone = ? AND address = ?", name, phone, address).
		Order("created_at ASC").
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByID loads a customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Insert adds customer unless a row with the same name, phone and address
// already exists. inserted is false when another writer got there first.
func (r *Repository) Insert(ctx context.Context, customer *models.Customer) (inserted bool, err error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "phone"}, {Name: "address"}},
			DoNothing: true,
		}).
		Create(customer)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
