package model

import "time"

// Cliente is the buyer record. It is distinct from the Usuario that logs in;
// the link is optional and is cleared when the account is deleted.
type Cliente struct {
	ID        uint     `gorm:"primaryKey"`
	Nombre    string   `gorm:"type:varchar(200);not null"`
	Documento string   `gorm:"type:varchar(50);not null"`
	Telefono  string   `gorm:"type:varchar(50);not null"`
	Email     string   `gorm:"type:varchar(200);not null;index"`
	UsuarioID *uint    `gorm:"uniqueIndex"`
	Usuario   *Usuario `gorm:"foreignKey:UsuarioID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
