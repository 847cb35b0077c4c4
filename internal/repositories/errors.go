package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether a repository call missed its row
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
