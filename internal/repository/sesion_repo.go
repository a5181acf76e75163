package repository

import (
	"context"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SesionRepository defines the data access contract for sesiones.
type SesionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sesion, error)
	ListByCatalogo(ctx context.Context, catalogoID uuid.UUID, filter dto.SesionFilter) ([]model.Sesion, int64, error)

	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error)
	CreateTx(tx *gorm.DB, s *model.Sesion) error
	// LockByIDTx must run after the owning catalogo is locked.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error)
	UpdateTx(tx *gorm.DB, id uuid.UUID, campos map[string]any) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type sesionRepo struct{ db *gorm.DB }

func NewSesionRepository(db *gorm.DB) SesionRepository { return &sesionRepo{db: db} }

func (r *sesionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sesion, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *sesionRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error) {
	var s model.Sesion
	err := tx.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *sesionRepo) ListByCatalogo(ctx context.Context, catalogoID uuid.UUID, filter dto.SesionFilter) ([]model.Sesion, int64, error) {
	var sesiones []model.Sesion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sesion{}).Where("catalogo_id = ?", catalogoID)
	switch filter.IsActive {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := filter.Paginacion.Normalizar()
	err := q.Order("created_at ASC").Limit(p.PerPage).Offset(p.Offset()).Find(&sesiones).Error
	return sesiones, total, err
}

func (r *sesionRepo) CreateTx(tx *gorm.DB, s *model.Sesion) error {
	return tx.Create(s).Error
}

func (r *sesionRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error) {
	var s model.Sesion
	err := lock(tx, Exclusivo).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *sesionRepo) UpdateTx(tx *gorm.DB, id uuid.UUID, campos map[string]any) error {
	return tx.Model(&model.Sesion{}).Where("id = ?", id).Updates(campos).Error
}

func (r *sesionRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.Sesion{}).Error
}
