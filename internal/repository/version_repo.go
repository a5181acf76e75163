package repository

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VersionRepository defines the data access contract for versiones.
// Rows are never deleted.
type VersionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Version, error)
	ListBySesion(ctx context.Context, sesionID uuid.UUID, filter dto.VersionFilter) ([]model.Version, int64, error)
	// FindCurrentBySesiones returns the current version of each given sesion, keyed by sesion id.
	FindCurrentBySesiones(ctx context.Context, sesionIDs []uuid.UUID) (map[uuid.UUID]model.Version, error)
	FindFinalByCatalogo(ctx context.Context, catalogoID uuid.UUID) (*model.Version, error)

	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Version, error)
	// LockByIDTx must run after the owning catalogo (and sesion, if needed) are locked.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Version, error)
	MaxVersionNumTx(tx *gorm.DB, sesionID uuid.UUID) (int, error)
	CountBySesionTx(tx *gorm.DB, sesionID uuid.UUID) (int64, error)
	CountFinalByCatalogoTx(tx *gorm.DB, catalogoID uuid.UUID) (int64, error)
	CreateTx(tx *gorm.DB, v *model.Version) error
	SaveSnapshotTx(tx *gorm.DB, v *model.Version) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	// ClearCurrentTx turns is_current off on every version of the sesion.
	ClearCurrentTx(tx *gorm.DB, sesionID uuid.UUID) error
	// MarkCurrentTx sets is_current on one version.
	MarkCurrentTx(tx *gorm.DB, id uuid.UUID) error
	// MarkFinalTx moves the version to APROBADA and sets is_final and is_current together.
	MarkFinalTx(tx *gorm.DB, id uuid.UUID) error
}

type versionRepo struct{ db *gorm.DB }

func NewVersionRepository(db *gorm.DB) VersionRepository { return &versionRepo{db: db} }

func (r *versionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Version, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *versionRepo) ListBySesion(ctx context.Context, sesionID uuid.UUID, filter dto.VersionFilter) ([]model.Version, int64, error) {
	var versiones []model.Version
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Version{}).Where("sesion_id = ?", sesionID)
	if filter.Estado != "" {
		q = q.Where("estado = ?", strings.ToUpper(filter.Estado))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := filter.Paginacion.Normalizar()
	err := q.Order("version_num ASC").Limit(p.PerPage).Offset(p.Offset()).Find(&versiones).Error
	return versiones, total, err
}

func (r *versionRepo) FindCurrentBySesiones(ctx context.Context, sesionIDs []uuid.UUID) (map[uuid.UUID]model.Version, error) {
	out := make(map[uuid.UUID]model.Version, len(sesionIDs))
	if len(sesionIDs) == 0 {
		return out, nil
	}
	var versiones []model.Version
	err := r.db.WithContext(ctx).
		Where("sesion_id IN ? AND is_current = ?", sesionIDs, true).
		Find(&versiones).Error
	if err != nil {
		return nil, err
	}
	for _, v := range versiones {
		out[v.SesionID] = v
	}
	return out, nil
}

func (r *versionRepo) FindFinalByCatalogo(ctx context.Context, catalogoID uuid.UUID) (*model.Version, error) {
	var v model.Version
	err := r.db.WithContext(ctx).
		Where("catalogo_id = ? AND is_final = ?", catalogoID, true).
		First(&v).Error
	return &v, err
}

func (r *versionRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Version, error) {
	var v model.Version
	err := tx.Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *versionRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Version, error) {
	var v model.Version
	err := lock(tx, Exclusivo).Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *versionRepo) MaxVersionNumTx(tx *gorm.DB, sesionID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&model.Version{}).
		Where("sesion_id = ?", sesionID).
		Select("COALESCE(MAX(version_num), 0)").
		Scan(&max).Error
	return max, err
}

func (r *versionRepo) CountBySesionTx(tx *gorm.DB, sesionID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Version{}).Where("sesion_id = ?", sesionID).Count(&n).Error
	return n, err
}

func (r *versionRepo) CountFinalByCatalogoTx(tx *gorm.DB, catalogoID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Version{}).
		Where("catalogo_id = ? AND is_final = ?", catalogoID, true).
		Count(&n).Error
	return n, err
}

func (r *versionRepo) CreateTx(tx *gorm.DB, v *model.Version) error {
	return tx.Create(v).Error
}

// snapshotColumns are the only columns SaveSnapshotTx writes.
var snapshotColumns = []string{
	"um", "doc_x_bulto_caja", "doc_x_paq", "precio_exw", "porc_desc", "cant_bultos",
	"peso_gr", "largo_cm", "ancho_cm", "alto_cm", "familia", "foto_key", "observaciones",
	"updated_at",
}

func (r *versionRepo) SaveSnapshotTx(tx *gorm.DB, v *model.Version) error {
	return tx.Model(v).Select(snapshotColumns).Updates(v).Error
}

func (r *versionRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Version{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *versionRepo) ClearCurrentTx(tx *gorm.DB, sesionID uuid.UUID) error {
	return tx.Model(&model.Version{}).
		Where("sesion_id = ? AND is_current = ?", sesionID, true).
		Update("is_current", false).Error
}

func (r *versionRepo) MarkCurrentTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Version{}).Where("id = ?", id).Update("is_current", true).Error
}

func (r *versionRepo) MarkFinalTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Version{}).Where("id = ?", id).Updates(map[string]any{
		"estado":     model.VersionAprobada,
		"is_final":   true,
		"is_current": true,
	}).Error
}
