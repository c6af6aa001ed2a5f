package repository

import (
	"time"

	"tikiti/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByProviderAndID looks up a payment only if it belongs to the given
// provider, so callbacks cannot touch other providers' records.
func (r *PaymentRepository) GetByProviderAndID(provider string, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("provider = ? AND id = ?", provider, id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

// ListInStateSince returns payments of a provider in the given state created
// after since.
func (r *PaymentRepository) ListInStateSince(provider, state string, since time.Time) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.Where("provider = ? AND state = ? AND created_at > ?", provider, state, since).Find(&out).Error
	return out, err
}
