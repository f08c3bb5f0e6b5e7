package customers

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/feedmill-backend/pkg/errors"
)

const maxPhoneLen = 10

// CheckInput identifies a customer at the counter.
type CheckInput struct {
	Name    string
	Phone   string
	Address string
}

// CustomerDTO is the customer payload returned to clients.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckResult reports the resolved customer and whether it was just created.
type CheckResult struct {
	Customer CustomerDTO `json:"customer"`
	Created  bool        `json:"created"`
}

// Service resolves customers for order taking.
type Service interface {
	CreateOrGet(ctx context.Context, input CheckInput) (*CheckResult, error)
}

type service struct {
	repo *Repository
}

// NewService constructs the customer service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

// CreateOrGet returns the customer with exactly these details, creating it
// when none exists.
func (s *service) CreateOrGet(ctx context.Context, input CheckInput) (*CheckResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateCheck(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindExact(ctx, input.Name, input.Phone, input.Address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}
	if existing != nil {
		return &CheckResult{Customer: toDTO(existing)}, nil
	}

	now := time.Now().UTC()
	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inserted, err := s.repo.Insert(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	if inserted {
		return &CheckResult{Customer: toDTO(customer), Created: true}, nil
	}

	// A concurrent check created the same customer between lookup and insert.
	existing, err = s.repo.FindExact(ctx, input.Name, input.Phone, input.Address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer")
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer changed while being created")
	}
	return &CheckResult{Customer: toDTO(existing)}, nil
}

func validateCheck(input CheckInput) error {
	switch {
	case input.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case input.Address == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	case input.Phone == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	case utf8.RuneCountInString(input.Phone) > maxPhoneLen:
		return pkgerrors.New(pkgerrors.CodeValidation, "phone must be at most 10 characters")
	}
	return nil
}

func toDTO(c *models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}
