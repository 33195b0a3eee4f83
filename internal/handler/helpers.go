package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"firmeza/internal/apierror"
	"firmeza/internal/middleware"
	"firmeza/internal/model"
	"firmeza/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, "JSON inválido", err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.BadRequest(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// fieldPath drops the struct name from the namespace: "detalles[0].cantidad".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// parseID reads the :id path parameter. Writes 400 and returns false when it
// is not a positive integer.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.BadRequest("ID inválido."))
		return 0, false
	}
	return uint(id), true
}

// responderError translates service errors into the API envelope. Anything
// unexpected is attached to the context for ErrorHandler to log and hide.
func responderError(c *gin.Context, err error) {
	var regla *service.ReglaError
	if errors.As(err, &regla) {
		c.JSON(http.StatusBadRequest, apierror.New(http.StatusBadRequest, regla.Mensaje, ""))
		return
	}

	detalle := ""
	var de *service.DetalleError
	if errors.As(err, &de) {
		detalle = de.Detalle
	}
	switch {
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.ForStatus(http.StatusNotFound, detalle))
	case errors.Is(err, service.ErrAccesoDenegado):
		c.JSON(http.StatusForbidden, apierror.ForStatus(http.StatusForbidden, detalle))
	case errors.Is(err, service.ErrCredenciales):
		c.JSON(http.StatusUnauthorized, apierror.New(http.StatusUnauthorized, "Credenciales inválidas.", ""))
	default:
		_ = c.Error(err)
	}
}

// caller identifies the requester on both surfaces: JWT claims on /api,
// the session's admin id on /admin.
func caller(c *gin.Context) (uint, string) {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UserID, claims.Rol
	}
	if id := middleware.AdminID(c); id != 0 {
		return id, model.RolAdministrador
	}
	return 0, ""
}
