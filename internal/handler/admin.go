package handler

import (
	"errors"
	"fmt"
	"net/http"

	"firmeza/internal/apierror"
	"firmeza/internal/dto"
	"firmeza/internal/middleware"
	"firmeza/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AdminHandler serves the admin panel endpoints that have no /api
// counterpart: session login, dashboard, chat, import and PDF export.
type AdminHandler struct {
	auth      service.AuthService
	sesiones  *middleware.SessionManager
	dashboard service.DashboardService
	importer  service.ImportService
	reportes  service.ReporteService
}

func NewAdminHandler(
	auth service.AuthService,
	sesiones *middleware.SessionManager,
	dashboard service.DashboardService,
	importer service.ImportService,
	reportes service.ReporteService,
) *AdminHandler {
	return &AdminHandler{auth: auth, sesiones: sesiones, dashboard: dashboard, importer: importer, reportes: reportes}
}

// Login godoc
// @Summary Login del panel de administración
// @Description Solo cuentas Administrador. Establece la cookie de sesión.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.UsuarioResponse
// @Failure 401 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user, err := h.auth.AdminLogin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAccesoDenegado) {
			c.JSON(http.StatusForbidden, apierror.ForStatus(http.StatusForbidden, "Solo los administradores pueden acceder al panel."))
			return
		}
		responderError(c, err)
		return
	}
	if err := h.sesiones.Create(c, user.ID); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.sesiones.Clear(c); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	resp, err := h.dashboard.Resumen(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if !bindAndValidate(c, &req) {
		return
	}
	c.JSON(http.StatusOK, dto.ChatResponse{Answer: h.dashboard.Chat(c.Request.Context(), req.Question)})
}

// ImportarProductos godoc
// @Summary Importar productos desde Excel o CSV
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param archivo formData file true "Archivo .xlsx o .csv (nombre, categoria, precio, stock)"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} apierror.APIError
// @Router /admin/productos/importar [post]
func (h *AdminHandler) ImportarProductos(c *gin.Context) {
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.BadRequest("Debe seleccionar un archivo."))
		return
	}
	f, err := fh.Open()
	if err != nil {
		responderError(c, fmt.Errorf("abrir archivo subido: %w", err))
		return
	}
	defer f.Close()

	resp, err := h.importer.Importar(c.Request.Context(), fh.Filename, f)
	if err != nil {
		responderError(c, err)
		return
	}
	log.Info().Uint("admin_id", middleware.AdminID(c)).Str("archivo", fh.Filename).Int("cantidad", resp.Cantidad).Msg("import de productos")
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) PDFVentas(c *gin.Context) {
	pdf, nombre, err := h.reportes.PDFTodas(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	enviarPDF(c, pdf, nombre)
}

func (h *AdminHandler) PDFVentasDia(c *gin.Context) {
	pdf, nombre, err := h.reportes.PDFDia(c.Request.Context(), c.Query("fecha"))
	if err != nil {
		responderError(c, err)
		return
	}
	enviarPDF(c, pdf, nombre)
}

func enviarPDF(c *gin.Context, pdf []byte, nombre string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nombre))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
