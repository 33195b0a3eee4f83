package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductoRequest is used for both create and update: PUT overwrites every field.
type ProductoRequest struct {
	Nombre    string          `json:"nombre"    validate:"required,max=150"`
	Categoria string          `json:"categoria" validate:"required,max=100"`
	Precio    decimal.Decimal `json:"precio"    validate:"min=0,max=9999999.99"`
	Stock     int             `json:"stock"     validate:"min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Categoria string `form:"categoria"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID        uint            `json:"id"`
	Nombre    string          `json:"nombre"`
	Categoria string          `json:"categoria"`
	Precio    decimal.Decimal `json:"precio"`
	Stock     int             `json:"stock"`
}

// ImportResponse is returned by the spreadsheet import.
type ImportResponse struct {
	Cantidad int    `json:"cantidad"`
	Mensaje  string `json:"mensaje"`
}
