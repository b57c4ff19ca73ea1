package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/shared"
)

// saveWithLock updates an aggregate guarded by its version column.
// Domain mutators have already incremented Version, so the stored row
// must still carry Version-1; otherwise the aggregate was modified
// concurrently and the caller must retry with fresh state.
func saveWithLock(ctx context.Context, db *gorm.DB, entity interface{}, root *shared.BaseAggregateRoot) error {
	root.UpdatedAt = time.Now()

	result := db.WithContext(ctx).
		Model(entity).
		Where("id = ? AND version = ?", root.ID, root.Version-1).
		Select("*").
		Updates(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// nextDocumentNumber issues the next sequential document number for the
// current month, e.g. INV-202608-00042
func nextDocumentNumber(ctx context.Context, db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	yearMonth := time.Now().Format("200601")
	pattern := fmt.Sprintf("%s-%s-%%", prefix, yearMonth)

	var count int64
	if err := db.WithContext(ctx).
		Model(model).
		Where(column+" LIKE ?", pattern).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, yearMonth, count+1), nil
}
