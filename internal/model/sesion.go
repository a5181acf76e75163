package model

import (
	"time"

	"github.com/google/uuid"
)

// Sesion is a parallel negotiation thread inside a Catalogo.
// A sesion that owns versions can no longer be deleted.
type Sesion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CatalogoID uuid.UUID `gorm:"type:uuid;not null;index"`
	Etiqueta   string    `gorm:"not null;default:'default'"`
	IsActive   bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
}

func (Sesion) TableName() string { return "sesiones" }
