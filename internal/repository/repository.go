// Package repository holds the GORM-backed data access layer. Services depend
// on the interfaces declared here, never on *gorm.DB directly, so they can be
// unit tested with in-memory stubs.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// conn returns tx when the caller is inside a transaction, or the base
// connection otherwise. Repositories accept a nil tx for standalone writes.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
