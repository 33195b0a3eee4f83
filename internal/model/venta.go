package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venta is an immutable purchase record. Total always equals the sum of the
// detalle subtotals; RecalcularTotal is the only writer of that field.
type Venta struct {
	ID         uint            `gorm:"primaryKey"`
	Fecha      time.Time       `gorm:"not null;index"`
	ClienteID  uint            `gorm:"not null;index"`
	Cliente    *Cliente        `gorm:"foreignKey:ClienteID"`
	MetodoPago string          `gorm:"type:varchar(50);not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Detalles   []DetalleVenta  `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

func (Venta) TableName() string { return "ventas" }

// RecalcularTotal sets Total to Σ cantidad × precio_unitario.
func (v *Venta) RecalcularTotal() {
	total := decimal.Zero
	for i := range v.Detalles {
		total = total.Add(v.Detalles[i].Subtotal())
	}
	v.Total = total
}

// DetalleVenta is one line of a sale. PrecioUnitario is the product price at
// the moment of purchase; the subtotal is derived, never stored.
type DetalleVenta struct {
	ID             uint            `gorm:"primaryKey"`
	VentaID        uint            `gorm:"not null;index"`
	ProductoID     uint            `gorm:"not null;index"`
	Producto       *Producto       `gorm:"foreignKey:ProductoID"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }

func (d DetalleVenta) Subtotal() decimal.Decimal {
	return d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad)))
}
