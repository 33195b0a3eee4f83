package model

import (
	"strings"
	"time"
)

// Canonical role identifiers. Tokens and sessions only ever carry one of these.
const (
	RolAdministrador = "Administrador"
	RolCliente       = "Cliente"
)

// Usuario is the identity account used to log in. It is the only entity that
// stores credential material.
// Rol: "Administrador" | "Cliente"
type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(200);not null"`
	Email        string `gorm:"type:varchar(200);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

// NormalizarRol maps the legacy role spellings found in older accounts and
// tokens onto the canonical identifiers. Unknown roles are returned unchanged.
func NormalizarRol(rol string) string {
	switch strings.ToLower(strings.TrimSpace(rol)) {
	case "administrador", "admin", "administrator":
		return RolAdministrador
	case "cliente", "usuario", "customer":
		return RolCliente
	default:
		return rol
	}
}
