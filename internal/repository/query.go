package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscape is appended to every LIKE so user input cannot inject wildcards.
// '!' behaves the same on PostgreSQL, MySQL and SQLite.
const likeEscape = " ESCAPE '!'"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern turns free text into a %contains% pattern.
func likePattern(q string) string {
	return "%" + likeReplacer.Replace(q) + "%"
}

// updateByID locks the row, applies the column map and reloads it into dest.
func updateByID(ctx context.Context, db *gorm.DB, dest any, id int64, cols map[string]any) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(dest).Error; err != nil {
			return err
		}
		if err := tx.Model(dest).Where("id = ?", id).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Take(dest).Error
	})
}

func exists(ctx context.Context, db *gorm.DB, model any, id int64) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
