package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CatalogoService owns catalogo-level gating: creation with its initial
// sesion, manual cancellation and the read model of the final offer.
// CERRADA is never set here; only aprobar reaches it.
type CatalogoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearCatalogoRequest) (*dto.CrearCatalogoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CatalogoResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.CatalogoResponse], error)
	EditarEstado(ctx context.Context, actor Actor, id uuid.UUID, req dto.EditarCatalogoRequest) (*dto.CatalogoResponse, error)
	ObtenerFinal(ctx context.Context, id uuid.UUID) (*dto.OfertaFinalResponse, error)
	OfertaPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type catalogoService struct {
	repo         repository.CatalogoRepository
	sesionRepo   repository.SesionRepository
	versionRepo  repository.VersionRepository
	clienteRepo  repository.ClienteRepository
	productoRepo repository.ProductoRepository
	cache        OfertaCache
}

// NewCatalogoService wires the catalogo controller. cache may be nil.
func NewCatalogoService(
	repo repository.CatalogoRepository,
	sesionRepo repository.SesionRepository,
	versionRepo repository.VersionRepository,
	clienteRepo repository.ClienteRepository,
	productoRepo repository.ProductoRepository,
	cache OfertaCache,
) CatalogoService {
	return &catalogoService{
		repo:         repo,
		sesionRepo:   sesionRepo,
		versionRepo:  versionRepo,
		clienteRepo:  clienteRepo,
		productoRepo: productoRepo,
		cache:        cache,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// One transaction: check cliente and producto exist, check the pair is free,
// insert the catalogo EN_PROCESO and its initial sesion. A concurrent create
// of the same pair loses on the unique index and surfaces as Conflict.

func (s *catalogoService) Crear(ctx context.Context, actor Actor, req dto.CrearCatalogoRequest) (*dto.CrearCatalogoResponse, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, apierror.Validation("cliente_id inválido")
	}
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("producto_id inválido")
	}
	etiqueta := strings.TrimSpace(req.Etiqueta)
	if etiqueta == "" {
		etiqueta = "default"
	}

	var c model.Catalogo
	var sesion model.Sesion
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.clienteRepo.ExistsTx(tx, clienteID)
		if err != nil {
			return err
		}
		if !ok {
			return apierror.Validation("cliente no existe")
		}
		if _, err := s.productoRepo.FindByIDTx(tx, productoID); err != nil {
			if repository.IsNotFound(err) {
				return apierror.Validation("producto no existe")
			}
			return err
		}

		dup, err := s.repo.ExistsPairTx(tx, clienteID, productoID)
		if err != nil {
			return err
		}
		if dup {
			return errCatalogoDuplicado
		}

		c = model.Catalogo{ClienteID: clienteID, ProductoID: productoID, Estado: model.CatalogoEnProceso}
		if err := s.repo.CreateTx(tx, &c); err != nil {
			if apierror.Is(repository.TranslateError(err, "catálogo"), apierror.KindConflict) {
				return errCatalogoDuplicado
			}
			return err
		}
		sesion = model.Sesion{CatalogoID: c.ID, Etiqueta: etiqueta, IsActive: true}
		return s.sesionRepo.CreateTx(tx, &sesion)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}

	log.Info().
		Str("catalogo_id", c.ID.String()).
		Str("cliente_id", clienteID.String()).
		Str("producto_id", productoID.String()).
		Str("actor", actor.Subject).
		Msg("catalogo creado")

	full, err := s.repo.FindByID(ctx, c.ID)
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}
	return &dto.CrearCatalogoResponse{
		CatalogoResponse: catalogoToResponse(full),
		SesionInicial:    sesionToResponse(&sesion),
	}, nil
}

var errCatalogoDuplicado = apierror.Conflict("ya existe catálogo para cliente+producto")

func (s *catalogoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CatalogoResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}
	resp := catalogoToResponse(c)
	return &resp, nil
}

func (s *catalogoService) Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.CatalogoResponse], error) {
	if filter.Estado != "" && !estadoCatalogoValido(strings.ToUpper(filter.Estado)) {
		return nil, apierror.Validation("estado inválido")
	}
	for _, raw := range []string{filter.ClienteID, filter.ProductoID} {
		if raw == "" {
			continue
		}
		if _, err := uuid.Parse(raw); err != nil {
			return nil, apierror.Validationf("id inválido: %q", raw)
		}
	}

	catalogos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}
	p := filter.Paginacion.Normalizar()
	out := &dto.ListResponse[dto.CatalogoResponse]{
		Data:    make([]dto.CatalogoResponse, 0, len(catalogos)),
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	for i := range catalogos {
		out.Data = append(out.Data, catalogoToResponse(&catalogos[i]))
	}
	return out, nil
}

// ── EditarEstado ──────────────────────────────────────────────────────────────
// CANCELADA is the only target. Checked under the exclusive catalogo lock so
// it cannot interleave with an aprobar of one of its versions.

func (s *catalogoService) EditarEstado(ctx context.Context, actor Actor, id uuid.UUID, req dto.EditarCatalogoRequest) (*dto.CatalogoResponse, error) {
	nuevo := strings.ToUpper(strings.TrimSpace(req.Estado))
	if !estadoCatalogoValido(nuevo) {
		return nil, apierror.Validation("estado inválido")
	}

	var anterior string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.LockByIDTx(tx, id, repository.Exclusivo)
		if err != nil {
			return err
		}
		anterior = c.Estado

		switch {
		case c.Estado == model.CatalogoCerrada:
			return apierror.Conflict("catálogo cerrado: solo lectura")
		case nuevo == model.CatalogoCerrada:
			return apierror.Conflict("estado CERRADA se asigna al aprobar una versión")
		case nuevo == model.CatalogoEnProceso:
			return apierror.Conflict("solo se admite el estado CANCELADA")
		case c.FinalVersionID != nil:
			return apierror.Conflict("no se puede cancelar: ya tiene versión final")
		case c.Estado == model.CatalogoCancelada:
			return nil
		}
		return s.repo.UpdateEstadoTx(tx, id, nuevo)
	})
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}

	if anterior != nuevo {
		log.Info().
			Str("catalogo_id", id.String()).
			Str("estado", nuevo).
			Str("actor", actor.Subject).
			Msg("catalogo cancelado")
	}
	return s.Obtener(ctx, id)
}

func estadoCatalogoValido(e string) bool {
	switch e {
	case model.CatalogoEnProceso, model.CatalogoCerrada, model.CatalogoCancelada:
		return true
	}
	return false
}

// ── Oferta final ──────────────────────────────────────────────────────────────

// ObtenerFinal returns the approved version of a catalogo with its pricing.
// Read-through cache; the database is always the fallback.
func (s *catalogoService) ObtenerFinal(ctx context.Context, id uuid.UUID) (*dto.OfertaFinalResponse, error) {
	if s.cache != nil {
		if o, ok := s.cache.Get(ctx, id); ok {
			return o, nil
		}
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.TranslateError(err, "catálogo")
	}
	if c.FinalVersionID == nil {
		return nil, apierror.NotFound("catálogo sin versión final")
	}
	v, err := s.versionRepo.FindByID(ctx, *c.FinalVersionID)
	if err != nil {
		return nil, repository.TranslateError(err, "versión final")
	}
	if v.CatalogoID != c.ID || !v.IsFinal {
		// Backed by the composite FK on Postgres; never expected to trigger.
		return nil, fmt.Errorf("catalogo %s: final_version_id %s inconsistente", c.ID, v.ID)
	}

	o := &dto.OfertaFinalResponse{
		Catalogo: catalogoToResponse(c),
		Version:  versionToResponse(v),
	}
	if s.cache != nil {
		s.cache.Set(ctx, id, o)
	}
	return o, nil
}

// OfertaPDF renders the final offer. Returns the PDF bytes and a file name.
func (s *catalogoService) OfertaPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	o, err := s.ObtenerFinal(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := infra.RenderOfertaPDF(o)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("oferta_%s_v%d.pdf", id, o.Version.VersionNum), nil
}
