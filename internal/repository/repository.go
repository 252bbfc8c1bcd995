package repository

import (
	"errors"

	"gorm.io/gorm"
	sqlite "modernc.org/sqlite"
)

// ErrNotFound is returned by every implementation when a row does not exist
// or belongs to another dealership. Aliased to gorm's sentinel so the gorm
// implementations can return lookup errors unchanged.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate is returned when a unique column would be violated, such as
// creating a second identity with the same email.
var ErrDuplicate = gorm.ErrDuplicatedKey

// translateError maps driver constraint errors onto the package sentinels.
// Postgres errors arrive already translated by gorm (TranslateError), but
// gorm's sqlite translator only understands the cgo driver, so the modernc
// extended result codes are mapped here.
func translateError(err error) error {
	if err == nil || errors.Is(err, ErrDuplicate) {
		return err
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case 1555, 2067: // SQLITE_CONSTRAINT_PRIMARYKEY, SQLITE_CONSTRAINT_UNIQUE
			return ErrDuplicate
		}
	}
	return err
}
