package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de documento de identidad aceptados.
var TiposDoc = []string{"DNI", "RUC", "CE", "PASAPORTE", "OTRO"}

// Clasificaciones de riesgo comercial.
var ClasificacionesRiesgo = []string{"BAJO", "MEDIO", "ALTO"}

// Cliente is master data: referenced by Catalogo, never owned by it.
// (TipoDoc, NumDoc) is unique.
type Cliente struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	TipoDoc             string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_cliente_doc"`
	NumDoc              string    `gorm:"type:varchar(80);not null;uniqueIndex:uq_cliente_doc"`
	Nombre              string    `gorm:"not null;index"`
	Descripcion         *string
	Pais                *string
	Ciudad              *string
	Zona                *string
	Direccion           *string
	ClasificacionRiesgo string `gorm:"type:varchar(10);not null;default:'MEDIO'"`
	CreatedAt           time.Time
}

func (Cliente) TableName() string { return "clientes" }
