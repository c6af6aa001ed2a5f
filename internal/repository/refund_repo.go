package repository

import (
	"time"

	"tikiti/internal/models"

	"gorm.io/gorm"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ref *models.Refund) error {
	return r.db.Create(ref).Error
}

func (r *RefundRepository) GetByID(id uint) (*models.Refund, error) {
	var ref models.Refund
	if err := r.db.First(&ref, id).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *RefundRepository) GetByProviderAndID(provider string, id uint) (*models.Refund, error) {
	var ref models.Refund
	if err := r.db.Where("provider = ? AND id = ?", provider, id).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *RefundRepository) Update(ref *models.Refund) error {
	return r.db.Save(ref).Error
}

// ListInStateSince returns refunds of a provider in the given state created
// after since.
func (r *RefundRepository) ListInStateSince(provider, state string, since time.Time) ([]models.Refund, error) {
	var out []models.Refund
	err := r.db.Where("provider = ? AND state = ? AND created_at > ?", provider, state, since).Find(&out).Error
	return out, err
}
