package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter ──────────────────────────────────────────────────────────────────

// VentaFilter narrows sale listings. Only Fecha is bound from the query
// string; ClienteID is set by the service for customers and Desde/Hasta are
// derived from Fecha.
type VentaFilter struct {
	Fecha     string     `form:"fecha"` // yyyy-MM-dd; empty = all
	ClienteID *uint      `form:"-"`
	Desde     *time.Time `form:"-"`
	Hasta     *time.Time `form:"-"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DetalleVentaRequest struct {
	ProductoID uint `json:"productoId" validate:"required"`
	Cantidad   int  `json:"cantidad"   validate:"required,min=1"`
}

// CrearVentaRequest carries no prices: they are taken from the catalog.
type CrearVentaRequest struct {
	MetodoPago string                `json:"metodoPago" validate:"required,min=1,max=50"`
	Detalles   []DetalleVentaRequest `json:"detalles"   validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ID             uint            `json:"id"`
	VentaID        uint            `json:"ventaId"`
	ProductoID     uint            `json:"productoId"`
	ProductoNombre string          `json:"productoNombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precioUnitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            uint                   `json:"id"`
	Fecha         string                 `json:"fecha"`
	ClienteID     uint                   `json:"clienteId"`
	ClienteNombre string                 `json:"clienteNombre"`
	MetodoPago    string                 `json:"metodoPago"`
	Total         decimal.Decimal        `json:"total"`
	Detalles      []DetalleVentaResponse `json:"detalles"`
}
