package handler

import (
	"net/http"

	"firmeza/internal/dto"
	"firmeza/internal/model"
	"firmeza/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

func (h *ClientesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.ClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Actualizar(c.Request.Context(), id, req); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ClientesHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Perfil godoc
// @Summary      Perfil del cliente autenticado
// @Description  Para administradores devuelve un aviso en lugar de un perfil.
// @Tags         clientes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.ClienteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/clientes/me [get]
func (h *ClientesHandler) Perfil(c *gin.Context) {
	uid, rol := caller(c)
	if rol == model.RolAdministrador {
		c.JSON(http.StatusOK, dto.PerfilAdminResponse{
			Mensaje:   "Eres administrador. No tienes perfil de cliente.",
			UsuarioID: uid,
			Rol:       rol,
		})
		return
	}
	resp, err := h.svc.Perfil(c.Request.Context(), uid)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) ActualizarPerfil(c *gin.Context) {
	var req dto.ClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	uid, _ := caller(c)
	if err := h.svc.ActualizarPerfil(c.Request.Context(), uid, req); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ClientesHandler) EliminarPerfil(c *gin.Context) {
	uid, _ := caller(c)
	if err := h.svc.EliminarPerfil(c.Request.Context(), uid); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VincularUsuario godoc
// @Summary      Vincular cliente con una cuenta de usuario
// @Description  Usa existingUserId, o crea una cuenta Cliente con email y password.
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                        true "ID del cliente"
// @Param        body body     dto.VincularUsuarioRequest true "Cuenta a vincular"
// @Success      200  {object} dto.VinculoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /api/clientes/{id}/link-user [post]
func (h *ClientesHandler) VincularUsuario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.VincularUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VincularUsuario(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
