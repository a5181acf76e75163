// Package testutil builds the in-memory database the service and repository
// tests run against.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// partialIndexes mirror the Postgres migration backstops.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_sesion_current ON versiones (sesion_id) WHERE is_current`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_catalogo_final ON versiones (catalogo_id) WHERE is_final`,
}

// NewDB opens a fresh SQLite database private to t, migrated with the
// application models. The pool holds a single connection, so concurrent
// transactions run one after another, which is the same guarantee the row
// locks give on Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Cliente{},
		&model.Producto{},
		&model.Catalogo{},
		&model.Sesion{},
		&model.Version{},
	))
	for _, stmt := range partialIndexes {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// SeedCliente inserts a client with a unique document number.
func SeedCliente(t testing.TB, db *gorm.DB, nombre string) *model.Cliente {
	t.Helper()
	c := &model.Cliente{
		TipoDoc:             "RUC",
		NumDoc:              fmt.Sprintf("20%09d", dbSeq.Add(1)),
		Nombre:              nombre,
		ClasificacionRiesgo: "MEDIO",
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// SeedProducto inserts a DOC product priced at 12.34 with 10 doc per package.
func SeedProducto(t testing.TB, db *gorm.DB, nombre string) *model.Producto {
	t.Helper()
	img := "productos/" + strings.ToLower(strings.ReplaceAll(nombre, " ", "-")) + ".jpg"
	p := &model.Producto{
		Nombre:        nombre,
		UM:            model.UMDocena,
		DocXBultoCaja: decimal.NewFromInt(40),
		DocXPaq:       decimal.NewFromInt(10),
		PrecioEXW:     decimal.RequireFromString("12.34"),
		Familia:       "BALDES",
		ImagenKey:     &img,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
