package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a catalog entry. Stock is decremented only through the
// conditional update in ProductoRepository.DescontarStockTx.
type Producto struct {
	ID        uint            `gorm:"primaryKey"`
	Nombre    string          `gorm:"type:varchar(150);uniqueIndex;not null"`
	Categoria string          `gorm:"type:varchar(100);not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Producto) TableName() string { return "productos" }
