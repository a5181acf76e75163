package handler

import (
	"net/http"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogosHandler struct{ svc service.CatalogoService }

func NewCatalogosHandler(svc service.CatalogoService) *CatalogosHandler {
	return &CatalogosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear catálogo
// @Description  Abre la negociación de un producto con un cliente y crea su sesión inicial. Un solo catálogo por par cliente+producto.
// @Tags         catalogos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CrearCatalogoRequest true "Cliente, producto y etiqueta de la sesión inicial"
// @Success      201  {object} dto.CrearCatalogoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/catalogos [post]
func (h *CatalogosHandler) Crear(c *gin.Context) {
	var req dto.CrearCatalogoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar catálogos
// @Tags         catalogos
// @Produce      json
// @Security     BearerAuth
// @Param        cliente_id  query    string false "UUID del cliente"
// @Param        producto_id query    string false "UUID del producto"
// @Param        estado      query    string false "EN_PROCESO | CERRADA | CANCELADA"
// @Param        with_final  query    string false "true | false"
// @Param        search      query    string false "Nombre de cliente o producto"
// @Param        page        query    int    false "Página"
// @Param        per_page    query    int    false "Tamaño de página"
// @Success      200  {object} dto.ListResponse[dto.CatalogoResponse]
// @Failure      400  {object} apierror.APIError
// @Router       /v1/catalogos [get]
func (h *CatalogosHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Editar godoc
// @Summary      Cancelar catálogo
// @Description  Solo se admite estado=CANCELADA, y solo mientras el catálogo no tenga versión final.
// @Tags         catalogos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                    true "UUID del catálogo"
// @Param        body body     dto.EditarCatalogoRequest true "Nuevo estado"
// @Success      200  {object} dto.CatalogoResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/catalogos/{id} [patch]
func (h *CatalogosHandler) Editar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EditarCatalogoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditarEstado(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerFinal godoc
// @Summary      Oferta final
// @Tags         catalogos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID del catálogo"
// @Success      200 {object} dto.OfertaFinalResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/catalogos/{id}/final [get]
func (h *CatalogosHandler) ObtenerFinal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerFinal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      PDF de la oferta final
// @Tags         catalogos
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path     string true "UUID del catálogo"
// @Success      200 {file}   binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/catalogos/{id}/final/pdf [get]
func (h *CatalogosHandler) DescargarPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	data, nombre, err := h.svc.OfertaPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
