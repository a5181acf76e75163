package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx executes fn inside one GORM transaction: committed when fn returns
// nil, rolled back otherwise. fn must do all its reads and writes through tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
