package handler

import (
	"net/http"

	"firmeza/internal/apierror"
	"firmeza/internal/dto"
	"firmeza/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar un pedido
// @Description  Descuenta stock de forma atómica y envía un correo de confirmación.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVentaRequest true "Detalle del pedido"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/ventas [post]
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	uid, _ := caller(c)

	resp, err := h.svc.CrearVenta(c.Request.Context(), uid, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar ventas
// @Description  Administradores ven todas las ventas; clientes solo las propias.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "Día en formato yyyy-MM-dd"
// @Success      200  {array}  dto.VentaResponse
// @Router       /api/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.BadRequest(err.Error()))
		return
	}
	uid, rol := caller(c)
	resp, err := h.svc.ListarVentas(c.Request.Context(), uid, rol, filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	uid, rol := caller(c)
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), id, uid, rol)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Modificar always answers 405: sales are immutable once created.
func (h *VentasHandler) Modificar(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, apierror.ForStatus(http.StatusMethodNotAllowed, "Las ventas no se pueden modificar."))
}

// Eliminar godoc
// @Summary      Eliminar venta
// @Tags         ventas
// @Security     BearerAuth
// @Param        id   path     int true "ID de la venta"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /api/ventas/{id} [delete]
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.EliminarVenta(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Detalles de venta ─────────────────────────────────────────────────────────

func (h *VentasHandler) ListarDetalles(c *gin.Context) {
	resp, err := h.svc.ListarDetalles(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerDetalle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	uid, rol := caller(c)
	resp, err := h.svc.ObtenerDetalle(c.Request.Context(), id, uid, rol)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
