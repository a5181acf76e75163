package repository

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClienteRepository is the master-data store for clients.
type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)

	// ExistsTx is used while creating a catalogo inside its transaction.
	ExistsTx(tx *gorm.DB, id uuid.UUID) (bool, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var clientes []model.Cliente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Cliente{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(nombre) LIKE ? OR LOWER(num_doc) LIKE ?", like, like)
	}
	if filter.Pais != "" {
		q = q.Where("pais = ?", filter.Pais)
	}
	if filter.Ciudad != "" {
		q = q.Where("ciudad = ?", filter.Ciudad)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := filter.Paginacion.Normalizar()
	err := q.Order("nombre ASC").Limit(p.PerPage).Offset(p.Offset()).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) ExistsTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.Cliente{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
