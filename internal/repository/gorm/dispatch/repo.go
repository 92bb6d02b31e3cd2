package dispatchgorm

import (
	"context"

	"github.com/oggyb/wa-dispatch/internal/db"
	"github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of dispatch.Repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dispatch repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Save inserts one outcome. Records are never updated afterwards.
func (r *Repository) Save(ctx context.Context, o *dispatch.Outcome) error {
	return r.db.WithContext(ctx).Create(fromDomain(o)).Error
}

// List returns a page of outcomes, newest first, and the total count.
func (r *Repository) List(ctx context.Context, page, limit int) ([]*dispatch.Outcome, int64, error) {
	var models []DispatchModel
	var total int64

	if err := r.db.WithContext(ctx).Model(&DispatchModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return toDomainMany(models), total, nil
}

// compile-time interface check
var _ dispatch.Repository = (*Repository)(nil)
