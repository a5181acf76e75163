package repository

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository is the master-data store for products.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)

	// FindByIDTx reads the product inside the version-creation transaction so
	// the snapshot is taken from a consistent view.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(nombre) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.Familia != "" {
		q = q.Where("familia = ?", filter.Familia)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := filter.Paginacion.Normalizar()
	err := q.Order("nombre ASC").Limit(p.PerPage).Offset(p.Offset()).Find(&productos).Error
	return productos, total, err
}
