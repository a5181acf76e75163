package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de version.
//
//	BORRADOR -> ENVIADA -> CONTRAOFERTA
//	ENVIADA | CONTRAOFERTA -> RECHAZADA | APROBADA
const (
	VersionBorrador     = "BORRADOR"
	VersionEnviada      = "ENVIADA"
	VersionContraoferta = "CONTRAOFERTA"
	VersionAprobada     = "APROBADA"
	VersionRechazada    = "RECHAZADA"
)

// Version is a numbered pricing snapshot inside a Sesion. Rows are never
// deleted; once APROBADA or RECHAZADA they are never modified either.
//
// Invariants kept by the service layer (and backed by partial unique indexes):
//   - at most one IsCurrent per sesion
//   - at most one IsFinal per catalogo
//   - IsFinal implies Estado == APROBADA
type Version struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SesionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_version_por_sesion,priority:1"`
	CatalogoID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null"`
	VersionNum int       `gorm:"not null;uniqueIndex:uq_version_por_sesion,priority:2"`
	Estado     string    `gorm:"type:varchar(20);not null;default:'BORRADOR'"`
	IsCurrent  bool      `gorm:"not null;default:false"`
	IsFinal    bool      `gorm:"not null;default:false"`

	// Snapshot
	UM            string           `gorm:"column:um;type:varchar(10);not null"`
	DocXBultoCaja *decimal.Decimal `gorm:"type:decimal(10,2)"`
	DocXPaq       decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	PrecioEXW     decimal.Decimal  `gorm:"column:precio_exw;type:decimal(12,4);not null"`
	PorcDesc      *decimal.Decimal `gorm:"type:decimal(5,4)"` // 0.15 = 15%
	CantBultos    decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	PesoGr        *decimal.Decimal `gorm:"type:decimal(10,2)"`
	LargoCm       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	AnchoCm       *decimal.Decimal `gorm:"type:decimal(10,2)"`
	AltoCm        *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Familia       *string
	FotoKey       *string
	Observaciones *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Version) TableName() string { return "versiones" }
