// cmd/seed/main.go: Crea/actualiza clientes y productos de demo.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/config"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func ptr(s string) *string { return &s }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLockTimeoutMS)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	ctx := context.Background()

	clientes := []model.Cliente{
		{TipoDoc: "RUC", NumDoc: "20100047218", Nombre: "Distribuidora Lima Norte SAC", Pais: ptr("PE"), Ciudad: ptr("Lima"), ClasificacionRiesgo: "BAJO"},
		{TipoDoc: "RUC", NumDoc: "20601234561", Nombre: "Plásticos del Sur EIRL", Pais: ptr("PE"), Ciudad: ptr("Arequipa"), ClasificacionRiesgo: "MEDIO"},
	}
	for _, c := range clientes {
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tipo_doc"}, {Name: "num_doc"}},
			DoUpdates: clause.AssignmentColumns([]string{"nombre", "pais", "ciudad", "clasificacion_riesgo"}),
		}).Create(&c).Error
		if err != nil {
			log.Fatalf("cliente %s: %v", c.NumDoc, err)
		}
	}

	productos := []model.Producto{
		{Nombre: "Balde 20L con tapa", UM: model.UMDocena, DocXBultoCaja: decimal.NewFromInt(4), DocXPaq: decimal.NewFromInt(2), PrecioEXW: decimal.RequireFromString("38.50"), Familia: "BALDES", ImagenKey: ptr("productos/balde-20l.jpg")},
		{Nombre: "Tina 60L", UM: model.UMUnidad, DocXBultoCaja: decimal.NewFromInt(10), DocXPaq: decimal.NewFromInt(10), PrecioEXW: decimal.RequireFromString("9.90"), Familia: "TINAS"},
		{Nombre: "Vaso 7oz", UM: model.UMCiento, DocXBultoCaja: decimal.NewFromInt(20), DocXPaq: decimal.NewFromInt(10), PrecioEXW: decimal.RequireFromString("6.20"), Familia: "DESCARTABLES"},
	}
	creados := 0
	for _, p := range productos {
		var n int64
		if err := db.WithContext(ctx).Model(&model.Producto{}).Where("nombre = ?", p.Nombre).Count(&n).Error; err != nil {
			log.Fatalf("producto %s: %v", p.Nombre, err)
		}
		if n > 0 {
			continue
		}
		if err := db.WithContext(ctx).Create(&p).Error; err != nil {
			log.Fatalf("producto %s: %v", p.Nombre, err)
		}
		creados++
	}

	fmt.Printf("✅ %d clientes upsert, %d productos nuevos\n", len(clientes), creados)
}
