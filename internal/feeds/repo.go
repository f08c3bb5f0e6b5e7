package feeds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
)

// Repository persists the feed product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a feed product row.
func (r *Repository) Create(ctx context.Context, feed *models.FeedProduct) (*models.FeedProduct, error) {
	if feed.ID == uuid.Nil {
		feed.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Stock").Create(feed).Error; err != nil {
		return nil, err
	}
	return feed, nil
}

// FindByID loads a feed product together with its stock row, if any.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FeedProduct, error) {
	var feed models.FeedProduct
	if err := r.db.WithContext(ctx).Preload("Stock").First(&feed, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &feed, nil
}

// UpdateUnitSize changes only the unit size and reports how many rows matched.
func (r *Repository) UpdateUnitSize(ctx context.Context, id uuid.UUID, unitSize int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FeedProduct{}).
		Where("id = ?", id).
		Update("unit_size", unitSize)
	return res.RowsAffected, res.Error
}

// List returns every feed product, oldest first, with stock rows preloaded.
func (r *Repository) List(ctx context.Context) ([]models.FeedProduct, error) {
	var feeds []models.FeedProduct
	if err := r.db.WithContext(ctx).
		Preload("Stock").
		Order("created_at ASC").
		Order("id ASC").
		Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}

// FindFeedProducts resolves the given ids. Unknown ids are simply absent from
// the result.
func (r *Repository) FindFeedProducts(ctx context.Context, ids []uuid.UUID) ([]models.FeedProduct, error) {
	if len(ids) == 0 {
		return []models.FeedProduct{}, nil
	}
	var feeds []models.FeedProduct
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&feeds).Error; err != nil {
		return nil, err
	}
	return feeds, nil
}
