package service

import (
	"context"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/negociacion"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/pricing"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/repository"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// VersionService is the version store plus the negotiation state machine.
//
// Every mutation runs in one transaction that locks rows in the order
// catalogo -> sesion -> version. The catalogo lock is shared for ordinary
// writes and exclusive for aprobar, so an approval waits for in-flight
// writers of its catalogo and new writers then observe CERRADA.
type VersionService interface {
	Crear(ctx context.Context, actor Actor, sesionID uuid.UUID, overrides dto.VersionPatch) (*dto.VersionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VersionResponse, error)
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID, filter dto.VersionFilter) (*dto.ListResponse[dto.VersionResponse], error)
	Editar(ctx context.Context, actor Actor, id uuid.UUID, patch dto.VersionPatch) (*dto.VersionResponse, error)
	Transicionar(ctx context.Context, actor Actor, id uuid.UUID, accion negociacion.Accion) (*dto.VersionResponse, error)
	ForzarCurrent(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VersionResponse, error)
}

// OfertaNotifier is satisfied by *worker.Dispatcher.
type OfertaNotifier interface {
	EnqueueOfertaFinal(ctx context.Context, payload worker.OfertaFinalPayload) error
}

type versionService struct {
	repo         repository.VersionRepository
	sesionRepo   repository.SesionRepository
	catalogoRepo repository.CatalogoRepository
	productoRepo repository.ProductoRepository
	notifier     OfertaNotifier
}

// NewVersionService wires the version store. notifier may be nil.
func NewVersionService(
	repo repository.VersionRepository,
	sesionRepo repository.SesionRepository,
	catalogoRepo repository.CatalogoRepository,
	productoRepo repository.ProductoRepository,
	notifier OfertaNotifier,
) VersionService {
	return &versionService{
		repo:         repo,
		sesionRepo:   sesionRepo,
		catalogoRepo: catalogoRepo,
		productoRepo: productoRepo,
		notifier:     notifier,
	}
}

var (
	errYaTieneFinal      = apierror.Conflict("el catálogo ya tiene una versión final")
	errNoAdmiteVersiones = apierror.Conflict("catálogo no admite nuevas versiones")
	errSoloLectura       = apierror.Conflict("catálogo cerrado: solo lectura")
)

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *versionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VersionResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}
	resp := versionToResponse(v)
	return &resp, nil
}

func (s *versionService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID, filter dto.VersionFilter) (*dto.ListResponse[dto.VersionResponse], error) {
	if _, err := s.sesionRepo.FindByID(ctx, sesionID); err != nil {
		return nil, repository.TranslateError(err, "sesión")
	}
	versiones, total, err := s.repo.ListBySesion(ctx, sesionID, filter)
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}
	p := filter.Paginacion.Normalizar()
	out := &dto.ListResponse[dto.VersionResponse]{
		Data:    make([]dto.VersionResponse, 0, len(versiones)),
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	for i := range versiones {
		out.Data = append(out.Data, versionToResponse(&versiones[i]))
	}
	return out, nil
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// In one transaction:
//   1. lock catalogo (shared): must be EN_PROCESO without final
//   2. lock sesion: serializes numbering and the current flip per sesion
//   3. snapshot the producto, apply overrides, validate
//   4. clear the previous current and insert version_num = max+1 as current

func (s *versionService) Crear(ctx context.Context, actor Actor, sesionID uuid.UUID, overrides dto.VersionPatch) (*dto.VersionResponse, error) {
	var v model.Version
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		probe, err := s.sesionRepo.FindByIDTx(tx, sesionID)
		if err != nil {
			return repository.TranslateError(err, "sesión")
		}
		c, err := s.catalogoRepo.LockByIDTx(tx, probe.CatalogoID, repository.Compartido)
		if err != nil {
			return repository.TranslateError(err, "catálogo")
		}
		if c.FinalVersionID != nil {
			return errYaTieneFinal
		}
		if !c.Editable() {
			return errNoAdmiteVersiones
		}
		sesion, err := s.sesionRepo.LockByIDTx(tx, sesionID)
		if err != nil {
			return repository.TranslateError(err, "sesión")
		}

		p, err := s.productoRepo.FindByIDTx(tx, c.ProductoID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.Validation("producto no existe")
			}
			return err
		}
		ultimo, err := s.repo.MaxVersionNumTx(tx, sesion.ID)
		if err != nil {
			return err
		}

		v = snapshotDesdeProducto(p)
		overrides.Aplicar(&v)
		if err := validarSnapshot(&v); err != nil {
			return err
		}
		v.SesionID = sesion.ID
		v.CatalogoID = c.ID
		v.ProductoID = c.ProductoID
		v.VersionNum = ultimo + 1
		v.Estado = model.VersionBorrador
		v.IsFinal = false
		v.IsCurrent = true

		if err := s.repo.ClearCurrentTx(tx, sesion.ID); err != nil {
			return err
		}
		return s.repo.CreateTx(tx, &v)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}

	log.Info().
		Str("version_id", v.ID.String()).
		Str("sesion_id", sesionID.String()).
		Int("version_num", v.VersionNum).
		Str("actor", actor.Subject).
		Msg("version creada")
	return s.Obtener(ctx, v.ID)
}

// snapshotDesdeProducto copies the producto defaults into a new version.
func snapshotDesdeProducto(p *model.Producto) model.Version {
	docXBulto := p.DocXBultoCaja
	familia := p.Familia
	v := model.Version{
		UM:            p.UM,
		DocXBultoCaja: &docXBulto,
		DocXPaq:       p.DocXPaq,
		PrecioEXW:     p.PrecioEXW,
		Familia:       &familia,
	}
	if p.ImagenKey != nil {
		key := *p.ImagenKey
		v.FotoKey = &key
	}
	return v
}

func validarSnapshot(v *model.Version) error {
	if !pricing.UMValida(v.UM) {
		return apierror.Validationf("um inválida: %q (DOC|UNID|CIENTO)", v.UM)
	}
	if v.PrecioEXW.IsNegative() || v.DocXPaq.IsNegative() || v.CantBultos.IsNegative() {
		return apierror.Validation("precio y cantidades no pueden ser negativos")
	}
	return nil
}

// ── Editar ────────────────────────────────────────────────────────────────────

func (s *versionService) Editar(ctx context.Context, actor Actor, id uuid.UUID, patch dto.VersionPatch) (*dto.VersionResponse, error) {
	if patch.Vacio() {
		return nil, apierror.Validation("nada que actualizar")
	}

	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		_, v, err := s.lockVersion(tx, id, repository.Compartido, false)
		if err != nil {
			return err
		}
		if !negociacion.EsEditable(v.Estado) {
			return apierror.Conflict("versión no editable en estado " + v.Estado)
		}
		patch.Aplicar(v)
		if err := validarSnapshot(v); err != nil {
			return err
		}
		return s.repo.SaveSnapshotTx(tx, v)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}

	log.Info().Str("version_id", id.String()).Str("actor", actor.Subject).Msg("version editada")
	return s.Obtener(ctx, id)
}

// lockVersion locks catalogo, optionally sesion, then the version, and
// requires the catalogo to be EN_PROCESO. On a state Conflict the locked
// rows are still returned so callers can refine the message.
func (s *versionService) lockVersion(tx *gorm.DB, id uuid.UUID, b repository.Bloqueo, conSesion bool) (*model.Catalogo, *model.Version, error) {
	probe, err := s.repo.FindByIDTx(tx, id)
	if err != nil {
		return nil, nil, repository.TranslateError(err, "versión")
	}
	c, err := s.catalogoRepo.LockByIDTx(tx, probe.CatalogoID, b)
	if err != nil {
		return nil, nil, repository.TranslateError(err, "catálogo")
	}
	if conSesion {
		if _, err := s.sesionRepo.LockByIDTx(tx, probe.SesionID); err != nil {
			return nil, nil, repository.TranslateError(err, "sesión")
		}
	}
	v, err := s.repo.LockByIDTx(tx, id)
	if err != nil {
		return nil, nil, repository.TranslateError(err, "versión")
	}
	switch c.Estado {
	case model.CatalogoEnProceso:
		return c, v, nil
	case model.CatalogoCerrada:
		return c, v, errSoloLectura
	default:
		return c, v, errCatalogoNoEditable
	}
}

// ── Transiciones ──────────────────────────────────────────────────────────────

func (s *versionService) Transicionar(ctx context.Context, actor Actor, id uuid.UUID, accion negociacion.Accion) (*dto.VersionResponse, error) {
	if accion == negociacion.Aprobar {
		return s.aprobar(ctx, actor, id)
	}

	var anterior, nuevo string
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		_, v, err := s.lockVersion(tx, id, repository.Compartido, false)
		if err != nil {
			return err
		}
		anterior = v.Estado
		if nuevo, err = negociacion.Transicion(v.Estado, accion); err != nil {
			return err
		}
		return s.repo.UpdateEstadoTx(tx, id, nuevo)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}

	log.Info().
		Str("version_id", id.String()).
		Str("accion", string(accion)).
		Str("desde", anterior).
		Str("estado", nuevo).
		Str("actor", actor.Subject).
		Msg("version transicionada")
	return s.Obtener(ctx, id)
}

// aprobar applies, atomically: version APROBADA + is_final + is_current,
// is_current off on every sibling of the sesion, catalogo final pointer and
// catalogo CERRADA. The catalogo is locked exclusively first, so of two
// concurrent approvals in one catalogo the second sees CERRADA and fails.
func (s *versionService) aprobar(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VersionResponse, error) {
	var v *model.Version
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		c, locked, err := s.lockVersion(tx, id, repository.Exclusivo, true)
		if err != nil {
			if c != nil && c.FinalVersionID != nil {
				return errYaTieneFinal
			}
			return err
		}
		v = locked
		if _, err := negociacion.Transicion(v.Estado, negociacion.Aprobar); err != nil {
			return err
		}
		n, err := s.repo.CountFinalByCatalogoTx(tx, c.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return errYaTieneFinal
		}

		if err := s.repo.ClearCurrentTx(tx, v.SesionID); err != nil {
			return err
		}
		if err := s.repo.MarkFinalTx(tx, v.ID); err != nil {
			return err
		}
		return s.catalogoRepo.CerrarTx(tx, c.ID, v.ID)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}

	log.Info().
		Str("version_id", id.String()).
		Str("catalogo_id", v.CatalogoID.String()).
		Str("estado", model.VersionAprobada).
		Str("actor", actor.Subject).
		Msg("version aprobada, catalogo cerrado")

	// After commit: a lost notification never undoes an approval.
	if s.notifier != nil {
		payload := worker.OfertaFinalPayload{
			CatalogoID: v.CatalogoID.String(),
			VersionID:  v.ID.String(),
			ToEmail:    actor.Email,
		}
		if err := s.notifier.EnqueueOfertaFinal(ctx, payload); err != nil {
			log.Error().Err(err).Str("catalogo_id", payload.CatalogoID).Msg("no se pudo encolar la oferta final")
		}
	}
	return s.Obtener(ctx, id)
}

// ── ForzarCurrent ─────────────────────────────────────────────────────────────
// Same current flip as aprobar, without touching estado or final. Allowed on
// any non-final version, RECHAZADA included.

func (s *versionService) ForzarCurrent(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VersionResponse, error) {
	err := runTx(ctx, s.catalogoRepo.DB(), func(tx *gorm.DB) error {
		_, v, err := s.lockVersion(tx, id, repository.Compartido, true)
		if v != nil && v.IsFinal {
			return apierror.Conflict("no se puede marcar current una versión final")
		}
		if err != nil {
			return err
		}
		if v.IsCurrent {
			return nil
		}
		if err := s.repo.ClearCurrentTx(tx, v.SesionID); err != nil {
			return err
		}
		return s.repo.MarkCurrentTx(tx, v.ID)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "versión")
	}

	log.Info().Str("version_id", id.String()).Str("actor", actor.Subject).Msg("version marcada current")
	return s.Obtener(ctx, id)
}
