package handler

import (
	"net/http"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

type SesionesHandler struct{ svc service.SesionService }

func NewSesionesHandler(svc service.SesionService) *SesionesHandler {
	return &SesionesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear sesión
// @Description  Abre un escenario de negociación paralelo dentro de un catálogo EN_PROCESO.
// @Tags         sesiones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true  "UUID del catálogo"
// @Param        body body     dto.CrearSesionRequest false "Etiqueta"
// @Success      201  {object} dto.SesionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/catalogos/{id}/sesiones [post]
func (h *SesionesHandler) Crear(c *gin.Context) {
	catalogoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearSesionRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c), catalogoID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPorCatalogo godoc
// @Summary      Listar sesiones de un catálogo
// @Tags         sesiones
// @Produce      json
// @Security     BearerAuth
// @Param        id           path     string true  "UUID del catálogo"
// @Param        is_active    query    string false "true | false"
// @Param        with_current query    bool   false "Incluir la versión current"
// @Success      200  {object} dto.ListResponse[dto.SesionResponse]
// @Failure      404  {object} apierror.APIError
// @Router       /v1/catalogos/{id}/sesiones [get]
func (h *SesionesHandler) ListarPorCatalogo(c *gin.Context) {
	catalogoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var filter dto.SesionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarPorCatalogo(c.Request.Context(), catalogoID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SesionesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	withCurrent := c.Query("with_current") == "true"
	resp, err := h.svc.Obtener(c.Request.Context(), id, withCurrent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Editar godoc
// @Summary      Editar sesión
// @Description  Solo etiqueta e is_active. Cualquier otro campo es rechazado.
// @Tags         sesiones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la sesión"
// @Success      200  {object} dto.SesionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sesiones/{id} [patch]
func (h *SesionesHandler) Editar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	patch, err := dto.ParseSesionPatch(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Editar(c.Request.Context(), actor(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar sesión
// @Description  Solo sesiones sin versiones.
// @Tags         sesiones
// @Security     BearerAuth
// @Param        id  path string true "UUID de la sesión"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/sesiones/{id} [delete]
func (h *SesionesHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
