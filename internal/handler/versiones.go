package handler

import (
	"net/http"
	"path"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/negociacion"
	"github.com/estebanSulcaInfante/envaperu-catalog/internal/service"

	"github.com/gin-gonic/gin"
)

type VersionesHandler struct{ svc service.VersionService }

func NewVersionesHandler(svc service.VersionService) *VersionesHandler {
	return &VersionesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear versión
// @Description  Copia la plantilla del producto, aplica los overrides del body y deja la versión como BORRADOR current de su sesión.
// @Tags         versiones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la sesión"
// @Success      201  {object} dto.VersionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sesiones/{id}/versiones [post]
func (h *VersionesHandler) Crear(c *gin.Context) {
	sesionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	overrides, err := dto.ParseVersionPatch(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c), sesionID, overrides)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarPorSesion godoc
// @Summary      Historial de versiones de una sesión
// @Tags         versiones
// @Produce      json
// @Security     BearerAuth
// @Param        id     path     string true  "UUID de la sesión"
// @Param        estado query    string false "Estado de la versión"
// @Success      200  {object} dto.ListResponse[dto.VersionResponse]
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sesiones/{id}/versiones [get]
func (h *VersionesHandler) ListarPorSesion(c *gin.Context) {
	sesionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var filter dto.VersionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarPorSesion(c.Request.Context(), sesionID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VersionesHandler) Obtener(c *gin.Context) {
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
// @Summary      Editar versión
// @Description  Parche sobre los campos del snapshot. Solo versiones BORRADOR, ENVIADA o CONTRAOFERTA de un catálogo EN_PROCESO.
// @Tags         versiones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la versión"
// @Success      200  {object} dto.VersionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/versiones/{id} [patch]
func (h *VersionesHandler) Editar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	patch, err := dto.ParseVersionPatch(raw)
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

// Transicionar godoc
// @Summary      Transición de estado
// @Description  enviar: BORRADOR→ENVIADA. contraoferta: ENVIADA→CONTRAOFERTA. rechazar: ENVIADA/CONTRAOFERTA→RECHAZADA. aprobar: ENVIADA/CONTRAOFERTA→APROBADA, marca la versión final y cierra el catálogo.
// @Tags         versiones
// @Produce      json
// @Security     BearerAuth
// @Param        id     path     string true "UUID de la versión"
// @Param        accion path     string true "enviar | contraoferta | rechazar | aprobar"
// @Success      200  {object} dto.VersionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/versiones/{id}/{accion} [post]
func (h *VersionesHandler) Transicionar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	// Each action is mounted as its own static route; the last segment names it.
	accion, err := negociacion.ParseAccion(path.Base(c.FullPath()))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), actor(c), id, accion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ForzarCurrent godoc
// @Summary      Marcar versión como current
// @Description  No cambia el estado. Una versión final no puede marcarse.
// @Tags         versiones
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID de la versión"
// @Success      200 {object} dto.VersionResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/versiones/{id}/current [post]
func (h *VersionesHandler) ForzarCurrent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ForzarCurrent(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
