package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Nombre    string `json:"nombre"    validate:"required,max=200"`
	Documento string `json:"documento" validate:"required,max=50"`
	Telefono  string `json:"telefono"  validate:"required,max=50"`
	Email     string `json:"email"     validate:"required,email,max=200"`
	Password  string `json:"password"  validate:"required,min=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type LoginResponse struct {
	Token      string          `json:"token"`
	Expiration string          `json:"expiration"` // RFC 3339, UTC
	User       UsuarioResponse `json:"user"`
}

type MensajeResponse struct {
	Mensaje string `json:"mensaje"`
}
