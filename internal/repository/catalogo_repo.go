package repository

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository defines the data access contract for catalogos.
// Methods ending in Tx must be called with the transaction handle.
type CatalogoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Catalogo, error)
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Catalogo, int64, error)

	CreateTx(tx *gorm.DB, c *model.Catalogo) error
	ExistsPairTx(tx *gorm.DB, clienteID, productoID uuid.UUID) (bool, error)
	// LockByIDTx reads the row under the given lock. It is always the first
	// lock a transaction takes.
	LockByIDTx(tx *gorm.DB, id uuid.UUID, b Bloqueo) (*model.Catalogo, error)
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	// CerrarTx sets the final pointer and moves the catalogo to CERRADA.
	CerrarTx(tx *gorm.DB, id, finalVersionID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) DB() *gorm.DB { return r.db }

func (r *catalogoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Catalogo, error) {
	var c model.Catalogo
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Producto").
		Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *catalogoRepo) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Catalogo, int64, error) {
	var catalogos []model.Catalogo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Catalogo{})
	if filter.ClienteID != "" {
		q = q.Where("catalogos.cliente_id = ?", filter.ClienteID)
	}
	if filter.ProductoID != "" {
		q = q.Where("catalogos.producto_id = ?", filter.ProductoID)
	}
	if filter.Estado != "" {
		q = q.Where("catalogos.estado = ?", strings.ToUpper(filter.Estado))
	}
	switch filter.WithFinal {
	case "true":
		q = q.Where("catalogos.final_version_id IS NOT NULL")
	case "false":
		q = q.Where("catalogos.final_version_id IS NULL")
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Joins("JOIN clientes ON clientes.id = catalogos.cliente_id").
			Joins("JOIN productos ON productos.id = catalogos.producto_id").
			Where("LOWER(clientes.nombre) LIKE ? OR LOWER(productos.nombre) LIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := filter.Paginacion.Normalizar()
	err := q.Preload("Cliente").Preload("Producto").
		Order("catalogos.created_at DESC").
		Limit(p.PerPage).Offset(p.Offset()).
		Find(&catalogos).Error
	return catalogos, total, err
}

func (r *catalogoRepo) CreateTx(tx *gorm.DB, c *model.Catalogo) error {
	return tx.Omit("Cliente", "Producto").Create(c).Error
}

func (r *catalogoRepo) ExistsPairTx(tx *gorm.DB, clienteID, productoID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.Catalogo{}).
		Where("cliente_id = ? AND producto_id = ?", clienteID, productoID).
		Count(&n).Error
	return n > 0, err
}

func (r *catalogoRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID, b Bloqueo) (*model.Catalogo, error) {
	var c model.Catalogo
	err := lock(tx, b).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *catalogoRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Catalogo{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *catalogoRepo) CerrarTx(tx *gorm.DB, id, finalVersionID uuid.UUID) error {
	return tx.Model(&model.Catalogo{}).Where("id = ?", id).Updates(map[string]any{
		"final_version_id": finalVersionID,
		"estado":           model.CatalogoCerrada,
	}).Error
}
