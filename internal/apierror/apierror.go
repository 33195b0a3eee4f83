// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "net/http"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Codigo  int    `json:"codigo"`
	Mensaje string `json:"mensaje"`
	Detalle string `json:"detalle,omitempty"`
}

func New(codigo int, mensaje, detalle string) *APIError {
	return &APIError{Codigo: codigo, Mensaje: mensaje, Detalle: detalle}
}

// BadRequest is the envelope for input and business-rule errors.
func BadRequest(detalle string) *APIError {
	return New(http.StatusBadRequest, "Solicitud inválida.", detalle)
}

// ForStatus returns the standard body for 401, 403 and 404 responses. A
// non-empty detalle replaces the default one.
func ForStatus(status int, detalle string) *APIError {
	var e *APIError
	switch status {
	case http.StatusUnauthorized:
		e = New(status, "No autenticado.", "Falta el token o es inválido.")
	case http.StatusForbidden:
		e = New(status, "Acceso denegado.", "El usuario no tiene permisos suficientes.")
	case http.StatusNotFound:
		e = New(status, "Recurso no encontrado.", "La ruta o el recurso no existe.")
	case http.StatusMethodNotAllowed:
		e = New(status, "Método no permitido.", "")
	default:
		e = New(status, http.StatusText(status), "")
	}
	if detalle != "" {
		e.Detalle = detalle
	}
	return e
}

// Internal is the 500 body. detalle is only filled in development.
func Internal(detalle string) *APIError {
	return New(http.StatusInternalServerError, "Ocurrió un error interno.", detalle)
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Codigo  int               `json:"codigo"`
	Mensaje string            `json:"mensaje"`
	Errores map[string]string `json:"errores"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Codigo: http.StatusBadRequest, Mensaje: "Error de validación", Errores: fields}
}
