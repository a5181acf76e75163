package service

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SesionService manages the parallel negotiation threads of a catalogo.
type SesionService interface {
	Crear(ctx context.Context, actor Actor, catalogoID uuid.UUID, req dto.CrearSesionRequest) (*dto.SesionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID, withCurrent bool) (*dto.SesionResponse, error)
	ListarPorCatalogo(ctx context.Context, catalogoID uuid.UUID, filter dto.SesionFilter) (*dto.ListResponse[dto.SesionResponse], error)
	Editar(ctx context.Context, actor Actor, id uuid.UUID, patch dto.SesionPatch) (*dto.SesionResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
}

type sesionService struct {
	repo         repository.SesionRepository
	catalogoRepo repository.CatalogoRepository
	versionRepo  repository.VersionRepository
}

func NewSesionService(
	repo repository.SesionRepository,
	catalogoRepo repository.CatalogoRepository,
	versionRepo repository.VersionRepository,
) SesionService {
	return &sesionService{repo: repo, catalogoRepo: catalogoRepo, versionRepo: versionRepo}
}

var errCatalogoNoEditable = apierror.Conflict("catálogo no editable (estado != EN_PROCESO)")

func (s *sesionService) Crear(ctx context.Context, actor Actor, catalogoID uuid.UUID, req dto.CrearSesionRequest) (*dto.SesionResponse, error) {
	etiqueta := strings.TrimSpace(req.Etiqueta)
	if etiqueta == "" {
		etiqueta = "escenario"
	}

	var sesion model.Sesion
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		c, err := s.catalogoRepo.LockByIDTx(tx, catalogoID, repository.Compartido)
		if err != nil {
			return err
		}
		if !c.Editable() {
			return errCatalogoNoEditable
		}
		sesion = model.Sesion{CatalogoID: c.ID, Etiqueta: etiqueta, IsActive: true}
		return s.repo.CreateTx(tx, &sesion)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}

	log.Info().
		Str("catalogo_id", catalogoID.String()).
		Str("sesion_id", sesion.ID.String()).
		Str("actor", actor.Subject).
		Msg("sesion creada")
	resp := sesionToResponse(&sesion)
	return &resp, nil
}

func (s *sesionService) Obtener(ctx context.Context, id uuid.UUID, withCurrent bool) (*dto.SesionResponse, error) {
	sesion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.TranslateError(err, "sesión")
	}
	resp := sesionToResponse(sesion)
	if withCurrent {
		current, err := s.versionRepo.FindCurrentBySesiones(ctx, []uuid.UUID{id})
		if err != nil {
			return nil, repository.TranslateError(err, "versión")
		}
		if v, ok := current[id]; ok {
			vr := versionToResponse(&v)
			resp.Current = &vr
		}
	}
	return &resp, nil
}

func (s *sesionService) ListarPorCatalogo(ctx context.Context, catalogoID uuid.UUID, filter dto.SesionFilter) (*dto.ListResponse[dto.SesionResponse], error) {
	if _, err := s.catalogoRepo.FindByID(ctx, catalogoID); err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}
	sesiones, total, err := s.repo.ListByCatalogo(ctx, catalogoID, filter)
	if err != nil {
		return nil, repository.TranslateError(err, "sesión")
	}

	var current map[uuid.UUID]model.Version
	if filter.WithCurrent && len(sesiones) > 0 {
		ids := make([]uuid.UUID, len(sesiones))
		for i := range sesiones {
			ids[i] = sesiones[i].ID
		}
		if current, err = s.versionRepo.FindCurrentBySesiones(ctx, ids); err != nil {
			return nil, repository.TranslateError(err, "versión")
		}
	}

	p := filter.Paginacion.Normalizar()
	out := &dto.ListResponse[dto.SesionResponse]{
		Data:    make([]dto.SesionResponse, 0, len(sesiones)),
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	for i := range sesiones {
		r := sesionToResponse(&sesiones[i])
		if v, ok := current[sesiones[i].ID]; ok {
			vr := versionToResponse(&v)
			r.Current = &vr
		}
		out.Data = append(out.Data, r)
	}
	return out, nil
}

// lockSesion takes the catalogo lock (shared) and then the sesion lock, in
// that order. The sesion is first read unlocked only to learn its catalogo,
// which never changes.
func (s *sesionService) lockSesion(tx *gorm.DB, id uuid.UUID) (*model.Catalogo, *model.Sesion, error) {
	probe, err := s.repo.FindByIDTx(tx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.catalogoRepo.LockByIDTx(tx, probe.CatalogoID, repository.Compartido)
	if err != nil {
		return nil, nil, err
	}
	sesion, err := s.repo.LockByIDTx(tx, id)
	if err != nil {
		return nil, nil, err
	}
	return c, sesion, nil
}

func (s *sesionService) Editar(ctx context.Context, actor Actor, id uuid.UUID, patch dto.SesionPatch) (*dto.SesionResponse, error) {
	var sesion *model.Sesion
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		c, locked, err := s.lockSesion(tx, id)
		if err != nil {
			return err
		}
		if !c.Editable() {
			return apierror.Conflict("catálogo cerrado: solo lectura")
		}

		campos := map[string]any{}
		if patch.Etiqueta != nil {
			campos["etiqueta"] = *patch.Etiqueta
			locked.Etiqueta = *patch.Etiqueta
		}
		if patch.IsActive != nil {
			campos["is_active"] = *patch.IsActive
			locked.IsActive = *patch.IsActive
		}
		sesion = locked
		if len(campos) == 0 {
			return nil
		}
		return s.repo.UpdateTx(tx, id, campos)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "sesión")
	}

	log.Info().Str("sesion_id", id.String()).Str("actor", actor.Subject).Msg("sesion editada")
	resp := sesionToResponse(sesion)
	return &resp, nil
}

// Eliminar removes a sesion that owns no versions. The count runs under the
// sesion lock, which every version insert of the sesion also takes, so no
// version can appear between the check and the delete.
func (s *sesionService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		if _, _, err := s.lockSesion(tx, id); err != nil {
			return err
		}
		n, err := s.versionRepo.CountBySesionTx(tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apierror.Conflict("no se puede borrar: la sesión tiene versiones")
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return repository.TranslateError(err, "sesión")
	}
	log.Info().Str("sesion_id", id.String()).Str("actor", actor.Subject).Msg("sesion eliminada")
	return nil
}
