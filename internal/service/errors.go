package service

import (
	"errors"
	"fmt"

	"firmeza/internal/infra"

	"gorm.io/gorm"
)

// Sentinel errors translated to HTTP statuses by the handlers.
var (
	ErrNoEncontrado   = errors.New("recurso no encontrado")
	ErrAccesoDenegado = errors.New("acceso denegado")
	ErrCredenciales   = errors.New("Credenciales inválidas.")
)

var (
	errClienteNoEncontrado = conDetalle(ErrNoEncontrado, "Cliente no encontrado.")
	errUsuarioNoEncontrado = conDetalle(ErrNoEncontrado, "Usuario no encontrado.")
	errVentaAjena          = conDetalle(ErrAccesoDenegado, "No puedes acceder a una venta que no te pertenece.")
)

// ReglaError is a business-rule violation. Its message is shown to the
// caller verbatim with status 400.
type ReglaError struct {
	Mensaje string
}

func (e *ReglaError) Error() string { return e.Mensaje }

func regla(format string, args ...interface{}) error {
	return &ReglaError{Mensaje: fmt.Sprintf(format, args...)}
}

// DetalleError attaches a user-facing detail to one of the sentinels above.
type DetalleError struct {
	base    error
	Detalle string
}

func (e *DetalleError) Error() string { return e.base.Error() + ": " + e.Detalle }
func (e *DetalleError) Unwrap() error { return e.base }

func conDetalle(base error, detalle string) error {
	return &DetalleError{base: base, Detalle: detalle}
}

// notFound maps gorm.ErrRecordNotFound to ErrNoEncontrado and passes every
// other error through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	return err
}

// duplicado turns a unique-constraint failure into a ReglaError carrying msg.
func duplicado(err error, msg string) error {
	if infra.IsUniqueViolation(err) {
		return &ReglaError{Mensaje: msg}
	}
	return err
}
