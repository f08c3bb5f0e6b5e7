package admins

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
)

// Repository exposes admin user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admin repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail retrieves the admin matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID loads an admin by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpdateLastLogin refreshes the admin's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// Upsert creates the admin or, when the email already exists, refreshes its
// name, phone, password hash and active flag. It reports whether a row was
// created.
func (r *Repository) Upsert(ctx context.Context, admin *models.AdminUser) (bool, error) {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	existing, err := r.FindByEmail(ctx, admin.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	now := time.Now().UTC()
	if existing == nil {
		if admin.ID == uuid.Nil {
			admin.ID = uuid.New()
		}
		admin.CreatedAt = now
		admin.UpdatedAt = now
		return true, r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(admin).Error
	}

	admin.ID = existing.ID
	return false, r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"name":          admin.Name,
			"phone":         admin.Phone,
			"password_hash": admin.PasswordHash,
			"role":          admin.Role,
			"is_active":     admin.IsActive,
			"updated_at":    now,
		}).Error
}
