package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row its UUID on the application side so the same models
// work against Postgres and the SQLite test database.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Cliente) BeforeCreate(*gorm.DB) error  { assignID(&c.ID); return nil }
func (p *Producto) BeforeCreate(*gorm.DB) error { assignID(&p.ID); return nil }
func (c *Catalogo) BeforeCreate(*gorm.DB) error { assignID(&c.ID); return nil }
func (s *Sesion) BeforeCreate(*gorm.DB) error   { assignID(&s.ID); return nil }
func (v *Version) BeforeCreate(*gorm.DB) error  { assignID(&v.ID); return nil }
