package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unidades de medida. Each one fixes how many units a "doc" field represents
// (see pricing.FactorUM).
const (
	UMDocena = "DOC"
	UMUnidad = "UNID"
	UMCiento = "CIENTO"
)

// Producto is the master pricing template. Its fields are copied into every
// Version at creation time and never read back afterwards.
type Producto struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre        string          `gorm:"not null;index"`
	UM            string          `gorm:"column:um;type:varchar(10);not null"`
	DocXBultoCaja decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DocXPaq       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioEXW     decimal.Decimal `gorm:"column:precio_exw;type:decimal(12,4);not null"`
	Familia       string          `gorm:"not null"`
	ImagenKey     *string
	CreatedAt     time.Time
}

func (Producto) TableName() string { return "productos" }
