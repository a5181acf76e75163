package service

import (
	"context"
	"strings"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/model"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/repository"

	"github.com/google/uuid"
)

// ClienteService is the minimal master-data store for clients.
type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ListResponse[dto.ClienteResponse], error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	riesgo := req.ClasificacionRiesgo
	if riesgo == "" {
		riesgo = "MEDIO"
	}
	c := &model.Cliente{
		TipoDoc:             req.TipoDoc,
		NumDoc:              strings.TrimSpace(req.NumDoc),
		Nombre:              strings.TrimSpace(req.Nombre),
		Descripcion:         req.Descripcion,
		Pais:                req.Pais,
		Ciudad:              req.Ciudad,
		Zona:                req.Zona,
		Direccion:           req.Direccion,
		ClasificacionRiesgo: riesgo,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		err = repository.TranslateError(err, "cliente")
		if apierror.Is(err, apierror.KindConflict) {
			return nil, apierror.Conflict("ya existe un cliente con ese documento")
		}
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repository.TranslateError(err, "cliente")
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ListResponse[dto.ClienteResponse], error) {
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repository.TranslateError(err, "cliente")
	}
	p := filter.Paginacion.Normalizar()
	out := &dto.ListResponse[dto.ClienteResponse]{
		Data:    make([]dto.ClienteResponse, 0, len(clientes)),
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
	for i := range clientes {
		out.Data = append(out.Data, clienteToResponse(&clientes[i]))
	}
	return out, nil
}
