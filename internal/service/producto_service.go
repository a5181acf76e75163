package service

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/pricing"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductoService is the minimal master-data store for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.ProductoResponse], error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	um := strings.ToUpper(strings.TrimSpace(req.UM))
	if !pricing.UMValida(um) {
		return nil, apierror.Validationf("um inválida: %q (DOC|UNID|CIENTO)", req.UM)
	}
	if req.PrecioEXW.IsNegative() || req.DocXPaq.IsNegative() || req.DocXBultoCaja.IsNegative() {
		return nil, apierror.Validation("precio y cantidades no pueden ser negativos")
	}
	for campo, d := range map[string]decimal.Decimal{
		"doc_x_bulto_caja": req.DocXBultoCaja,
		"doc_x_paq":        req.DocXPaq,
		"precio_exw":       req.PrecioEXW,
	} {
		if err := dto.CabeEnColumna(campo, d); err != nil {
			return nil, err
		}
	}
	p := &model.Producto{
		Nombre:        strings.TrimSpace(req.Nombre),
		UM:            um,
		DocXBultoCaja: req.DocXBultoCaja,
		DocXPaq:       req.DocXPaq,
		PrecioEXW:     req.PrecioEXW,
		Familia:       strings.TrimSpace(req.Familia),
		ImagenKey:     req.ImagenKey,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, repository.TranslateError(err, "producto")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.TranslateError(err, "producto")
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.ProductoResponse], error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repository.TranslateError(err, "producto")
	}
	p := filter.Paginacion.Normalizar()
	out := &dto.ListResponse[dto.ProductoResponse]{
		Data:    make([]dto.ProductoResponse, 0, len(productos)),
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	for i := range productos {
		out.Data = append(out.Data, productoToResponse(&productos[i]))
	}
	return out, nil
}
