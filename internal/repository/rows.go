package repository

import (
	"gorm.io/gorm"
)

// checkUpdated maps an update that touched no rows to gorm.ErrRecordNotFound only when
// the row is really missing. MySQL reports changed rows, so an update that writes the
// values already stored affects zero rows.
func checkUpdated(db *gorm.DB, result *gorm.DB, model interface{}, id uint) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
