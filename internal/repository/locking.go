package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Bloqueo selects the row lock taken by the Lock* repository methods.
//
// Every transaction acquires locks in the same order: catalogo, then sesion,
// then version. Operations that only need the catalogo to stay EN_PROCESO
// take it shared; aprobar and cancelar take it exclusive, so they wait for
// every in-flight writer of the catalogo and block new ones.
type Bloqueo int

const (
	Compartido Bloqueo = iota
	Exclusivo
)

// lock adds SELECT ... FOR SHARE / FOR UPDATE. The SQLite dialect drops the
// clause; there the single-connection pool serializes transactions instead.
func lock(tx *gorm.DB, b Bloqueo) *gorm.DB {
	strength := "UPDATE"
	if b == Compartido {
		strength = "SHARE"
	}
	return tx.Clauses(clause.Locking{Strength: strength})
}
