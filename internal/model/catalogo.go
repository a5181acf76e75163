package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de catalogo. CERRADA and CANCELADA are terminal.
const (
	CatalogoEnProceso = "EN_PROCESO"
	CatalogoCerrada   = "CERRADA"
	CatalogoCancelada = "CANCELADA"
)

// Catalogo is the single negotiation for a (cliente, producto) pair.
// FinalVersionID, when set, must point to a Version of this same catalogo.
type Catalogo struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClienteID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_catalogo_cliente_producto"`
	ProductoID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_catalogo_cliente_producto;index"`
	FinalVersionID *uuid.UUID `gorm:"type:uuid"`
	Estado         string     `gorm:"type:varchar(20);not null;default:'EN_PROCESO'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Cliente  *Cliente  `gorm:"foreignKey:ClienteID"`
	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Catalogo) TableName() string { return "catalogos" }

// Editable reports whether the catalogo still accepts sessions, versions and transitions.
func (c *Catalogo) Editable() bool { return c.Estado == CatalogoEnProceso }
