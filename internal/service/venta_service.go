package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"firmeza/internal/dto"
	"firmeza/internal/infra"
	"firmeza/internal/model"
	"firmeza/internal/repository"
	"firmeza/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const fechaLayout = "2006-01-02"

type VentaService interface {
	CrearVenta(ctx context.Context, usuarioID uint, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
	// ListarVentas returns every sale to administrators and only the
	// caller's own sales to customers.
	ListarVentas(ctx context.Context, usuarioID uint, rol string, filter dto.VentaFilter) ([]dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id, usuarioID uint, rol string) (*dto.VentaResponse, error)
	EliminarVenta(ctx context.Context, id uint) error

	ListarDetalles(ctx context.Context) ([]dto.DetalleVentaResponse, error)
	ObtenerDetalle(ctx context.Context, id, usuarioID uint, rol string) (*dto.DetalleVentaResponse, error)
}

// EmailQueue is satisfied by *worker.Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
	queue        EmailQueue         // nil: no Redis
	mailer       worker.EmailSender // used when the queue is absent or fails
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	queue EmailQueue,
	mailer worker.EmailSender,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		queue:        queue,
		mailer:       mailer,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CrearVenta ────────────────────────────────────────────────────────────────
//   1. Resolve the caller's cliente
//   2. Load every product and check stock (repeated ids are summed)
//   3. BEGIN TX: conditional stock decrement per product, insert venta+detalles
//   4. COMMIT
//   5. (async) confirmation email, best-effort

func (s *ventaService) CrearVenta(ctx context.Context, usuarioID uint, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	cliente, err := s.clienteRepo.FindByUsuarioID(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, regla("Cliente no válido o no vinculado con usuario.")
		}
		return nil, err
	}

	productos := make(map[uint]*model.Producto)
	pedido := make(map[uint]int)
	var orden []uint // first-seen order of product ids

	for _, d := range req.Detalles {
		p, ok := productos[d.ProductoID]
		if !ok {
			p, err = s.productoRepo.FindByID(ctx, d.ProductoID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, regla("Producto con id %d no existe.", d.ProductoID)
				}
				return nil, err
			}
			productos[d.ProductoID] = p
			orden = append(orden, d.ProductoID)
		}
		pedido[d.ProductoID] += d.Cantidad
		if pedido[d.ProductoID] > p.Stock {
			return nil, sinStock(p)
		}
	}

	venta := model.Venta{
		Fecha:      time.Now().UTC(),
		ClienteID:  cliente.ID,
		MetodoPago: strings.TrimSpace(req.MetodoPago),
	}
	for _, d := range req.Detalles {
		venta.Detalles = append(venta.Detalles, model.DetalleVenta{
			ProductoID:     d.ProductoID,
			Cantidad:       d.Cantidad,
			PrecioUnitario: productos[d.ProductoID].Precio,
		})
	}
	venta.RecalcularTotal()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, id := range orden {
			ok, err := s.productoRepo.DescontarStockTx(tx, id, pedido[id])
			if err != nil {
				return fmt.Errorf("descontando stock del producto %d: %w", id, err)
			}
			if !ok {
				// stock changed since the pre-flight read
				return sinStock(productos[id])
			}
		}
		return s.repo.Create(ctx, tx, &venta)
	})
	if txErr != nil {
		return nil, txErr
	}

	venta.Cliente = cliente
	for i := range venta.Detalles {
		venta.Detalles[i].Producto = productos[venta.Detalles[i].ProductoID]
	}

	log.Info().Uint("venta_id", venta.ID).Uint("cliente_id", cliente.ID).Str("total", venta.Total.StringFixed(2)).Msg("venta registrada")
	s.notificarCompra(ctx, &venta)

	return ventaToResponse(&venta), nil
}

func sinStock(p *model.Producto) error {
	return regla("No hay suficiente stock para el producto %s. Stock actual: %d", p.Nombre, p.Stock)
}

// notificarCompra enqueues the confirmation email, or sends it inline when no
// queue is configured. Failures are logged and never reach the caller.
func (s *ventaService) notificarCompra(ctx context.Context, v *model.Venta) {
	if v.Cliente == nil || v.Cliente.Email == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: v.Cliente.Email,
		Subject: fmt.Sprintf("Confirmación de Compra #%d", v.ID),
		HTML:    confirmacionHTML(v),
	}
	if s.queue != nil {
		err := s.queue.EnqueueEmail(ctx, payload)
		if err == nil {
			return
		}
		log.Warn().Err(err).Uint("venta_id", v.ID).Msg("email queue unavailable, sending inline")
	}
	if s.mailer == nil {
		return
	}
	err := s.mailer.SendHTML(payload.ToEmail, payload.Subject, payload.HTML)
	switch {
	case errors.Is(err, infra.ErrMailerDisabled):
		log.Debug().Uint("venta_id", v.ID).Msg("smtp not configured, confirmation email skipped")
	case err != nil:
		log.Error().Err(err).Uint("venta_id", v.ID).Str("to", payload.ToEmail).Msg("confirmation email failed")
	}
}

func confirmacionHTML(v *model.Venta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>¡Gracias por tu compra, %s!</h1>", html.EscapeString(v.Cliente.Nombre))
	fmt.Fprintf(&b, "<p>Tu pedido #%d ha sido confirmado.</p><ul>", v.ID)
	for _, d := range v.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		fmt.Fprintf(&b, "<li>%s x %d - %s</li>", html.EscapeString(nombre), d.Cantidad, d.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "</ul><p><strong>Total: %s</strong></p>", v.Total.StringFixed(2))
	return b.String()
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ListarVentas(ctx context.Context, usuarioID uint, rol string, filter dto.VentaFilter) ([]dto.VentaResponse, error) {
	if filter.Fecha != "" {
		desde, err := time.Parse(fechaLayout, filter.Fecha)
		if err != nil {
			return nil, regla("Fecha inválida. Use el formato yyyy-MM-dd.")
		}
		hasta := desde.AddDate(0, 0, 1)
		filter.Desde, filter.Hasta = &desde, &hasta
	}
	if model.NormalizarRol(rol) != model.RolAdministrador {
		cliente, err := s.clienteRepo.FindByUsuarioID(ctx, usuarioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errClienteNoEncontrado
			}
			return nil, err
		}
		filter.ClienteID = &cliente.ID
	}

	ventas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		resp = append(resp, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id, usuarioID uint, rol string) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.verificarDueno(ctx, v.ClienteID, usuarioID, rol); err != nil {
		return nil, err
	}
	return ventaToResponse(v), nil
}

// verificarDueno allows administrators, and customers whose cliente owns the sale.
func (s *ventaService) verificarDueno(ctx context.Context, clienteID, usuarioID uint, rol string) error {
	if model.NormalizarRol(rol) == model.RolAdministrador {
		return nil
	}
	cliente, err := s.clienteRepo.FindByUsuarioID(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errVentaAjena
		}
		return err
	}
	if cliente.ID != clienteID {
		return errVentaAjena
	}
	return nil
}

func (s *ventaService) EliminarVenta(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	log.Info().Uint("venta_id", id).Msg("venta eliminada")
	return nil
}

func (s *ventaService) ListarDetalles(ctx context.Context) ([]dto.DetalleVentaResponse, error) {
	detalles, err := s.repo.ListDetalles(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DetalleVentaResponse, 0, len(detalles))
	for _, d := range detalles {
		resp = append(resp, detalleToResponse(d))
	}
	return resp, nil
}

func (s *ventaService) ObtenerDetalle(ctx context.Context, id, usuarioID uint, rol string) (*dto.DetalleVentaResponse, error) {
	d, err := s.repo.FindDetalleByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if model.NormalizarRol(rol) != model.RolAdministrador {
		v, err := s.repo.FindByID(ctx, d.VentaID)
		if err != nil {
			return nil, notFound(err)
		}
		if err := s.verificarDueno(ctx, v.ClienteID, usuarioID, rol); err != nil {
			return nil, err
		}
	}
	resp := detalleToResponse(*d)
	return &resp, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		detalles = append(detalles, detalleToResponse(d))
	}
	clienteNombre := ""
	if v.Cliente != nil {
		clienteNombre = v.Cliente.Nombre
	}
	return &dto.VentaResponse{
		ID:            v.ID,
		Fecha:         v.Fecha.UTC().Format(time.RFC3339),
		ClienteID:     v.ClienteID,
		ClienteNombre: clienteNombre,
		MetodoPago:    v.MetodoPago,
		Total:         v.Total,
		Detalles:      detalles,
	}
}

func detalleToResponse(d model.DetalleVenta) dto.DetalleVentaResponse {
	nombre := ""
	if d.Producto != nil {
		nombre = d.Producto.Nombre
	}
	return dto.DetalleVentaResponse{
		ID:             d.ID,
		VentaID:        d.VentaID,
		ProductoID:     d.ProductoID,
		ProductoNombre: nombre,
		Cantidad:       d.Cantidad,
		PrecioUnitario: d.PrecioUnitario,
		Subtotal:       d.Subtotal(),
	}
}
