package dto

import "github.com/shopspring/decimal"

type ChatRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type PuntoHistorial struct {
	Fecha string          `json:"fecha"` // yyyy-MM-dd
	Total decimal.Decimal `json:"total"`
}

// DashboardResponse backs the admin landing page.
type DashboardResponse struct {
	VentasHoy int64            `json:"ventasHoy"`
	TotalHoy  decimal.Decimal  `json:"totalHoy"`
	Insight   string           `json:"insight"`
	Clientes  int64            `json:"clientes"`
	Productos int64            `json:"productos"`
	Historial []PuntoHistorial `json:"historial"`
}
