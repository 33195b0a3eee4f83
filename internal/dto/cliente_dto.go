package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ClienteRequest struct {
	Nombre    string `json:"nombre"    validate:"required,max=200"`
	Documento string `json:"documento" validate:"required,max=50"`
	Telefono  string `json:"telefono"  validate:"required,max=50"`
	Email     string `json:"email"     validate:"required,email,max=200"`
}

// VincularUsuarioRequest links a client to an existing account or to a new
// one created from Email and Password.
type VincularUsuarioRequest struct {
	UsuarioExistenteID *uint  `json:"existingUserId"`
	Email              string `json:"email"    validate:"omitempty,email"`
	Password           string `json:"password" validate:"omitempty,min=6"`
	Username           string `json:"username"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID        uint   `json:"id"`
	Nombre    string `json:"nombre"`
	Documento string `json:"documento"`
	Telefono  string `json:"telefono"`
	Email     string `json:"email"`
	UsuarioID *uint  `json:"usuarioId,omitempty"`
}

type VinculoResponse struct {
	Codigo    int    `json:"codigo"`
	Mensaje   string `json:"mensaje"`
	ClienteID uint   `json:"clienteId"`
	UsuarioID uint   `json:"usuarioId"`
}

// PerfilAdminResponse is what GET /clientes/me returns for administrators.
type PerfilAdminResponse struct {
	Mensaje   string `json:"mensaje"`
	UsuarioID uint   `json:"usuarioId"`
	Rol       string `json:"rol"`
}
