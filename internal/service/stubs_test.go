package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"firmeza/internal/dto"
	"firmeza/internal/model"
	"firmeza/internal/repository"
	"firmeza/internal/service"
	"firmeza/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() returns nil so services run their
// transactional closures directly with a nil tx.

type stubProductoRepo struct {
	productos map[uint]*model.Producto
	nextID    uint
	enUso     map[uint]bool
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uint]*model.Producto), enUso: make(map[uint]bool)}
}

func (r *stubProductoRepo) seed(nombre string, precio string, stock int) *model.Producto {
	r.nextID++
	p := &model.Producto{ID: r.nextID, Nombre: nombre, Categoria: "General", Precio: decimal.RequireFromString(precio), Stock: stock}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uint) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if f.Categoria != "" && p.Categoria != f.Categoria {
			continue
		}
		if f.Nombre != "" && !strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(f.Nombre)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.productos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.productos)), nil
}

func (r *stubProductoRepo) NombreExists(_ context.Context, nombre string, excludeID uint) (bool, error) {
	for _, p := range r.productos {
		if p.Nombre == nombre && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductoRepo) Nombres(_ context.Context) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, p := range r.productos {
		out[p.Nombre] = true
	}
	return out, nil
}

func (r *stubProductoRepo) EnUso(_ context.Context, id uint) (bool, error) {
	return r.enUso[id], nil
}

func (r *stubProductoRepo) CreateBatchTx(_ *gorm.DB, productos []model.Producto) error {
	for i := range productos {
		if err := r.Create(context.Background(), &productos[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uint, cantidad int) (bool, error) {
	p, ok := r.productos[id]
	if !ok || p.Stock < cantidad {
		return false, nil
	}
	p.Stock -= cantidad
	return true, nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

type stubClienteRepo struct {
	clientes map[uint]*model.Cliente
	nextID   uint
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uint]*model.Cliente)}
}

// seed creates a cliente linked to usuarioID (0 = unlinked).
func (r *stubClienteRepo) seed(nombre, email string, usuarioID uint) *model.Cliente {
	r.nextID++
	c := &model.Cliente{ID: r.nextID, Nombre: nombre, Documento: "123", Telefono: "555", Email: email}
	if usuarioID != 0 {
		uid := usuarioID
		c.UsuarioID = &uid
	}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uint) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByUsuarioID(_ context.Context, usuarioID uint) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.UsuarioID != nil && *c.UsuarioID == usuarioID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.clientes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.clientes, id)
	return nil
}

func (r *stubClienteRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.clientes)), nil
}

func (r *stubClienteRepo) EmailExists(_ context.Context, email string, excludeID uint) (bool, error) {
	for _, c := range r.clientes {
		if strings.EqualFold(c.Email, email) && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubUsuarioRepo struct {
	usuarios map[uint]*model.Usuario
	nextID   uint
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uint]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, _ *gorm.DB, u *model.Usuario) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) DB() *gorm.DB { return nil }

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

type stubVentaRepo struct {
	ventas      map[uint]*model.Venta
	nextID      uint
	nextDetalle uint

	// canned dashboard aggregates
	resumenCount int64
	resumenTotal decimal.Decimal
	porDia       map[string]decimal.Decimal
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uint]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.nextID++
	v.ID = r.nextID
	for i := range v.Detalles {
		r.nextDetalle++
		v.Detalles[i].ID = r.nextDetalle
		v.Detalles[i].VentaID = v.ID
	}
	cp := *v
	cp.Detalles = append([]model.DetalleVenta(nil), v.Detalles...)
	r.ventas[v.ID] = &cp
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uint) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVentaRepo) List(_ context.Context, f dto.VentaFilter) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if f.ClienteID != nil && v.ClienteID != *f.ClienteID {
			continue
		}
		if f.Desde != nil && v.Fecha.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && !v.Fecha.Before(*f.Hasta) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubVentaRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.ventas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.ventas, id)
	return nil
}

func (r *stubVentaRepo) ExistsForCliente(_ context.Context, clienteID uint) (bool, error) {
	for _, v := range r.ventas {
		if v.ClienteID == clienteID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubVentaRepo) FindDetalleByID(_ context.Context, id uint) (*model.DetalleVenta, error) {
	for _, v := range r.ventas {
		for _, d := range v.Detalles {
			if d.ID == id {
				cp := d
				return &cp, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVentaRepo) ListDetalles(_ context.Context) ([]model.DetalleVenta, error) {
	var out []model.DetalleVenta
	for _, v := range r.ventas {
		out = append(out, v.Detalles...)
	}
	return out, nil
}

func (r *stubVentaRepo) Resumen(_ context.Context, _, _ time.Time) (int64, decimal.Decimal, error) {
	return r.resumenCount, r.resumenTotal, nil
}

func (r *stubVentaRepo) TotalesPorDia(_ context.Context, _ time.Time) (map[string]decimal.Decimal, error) {
	if r.porDia == nil {
		return map[string]decimal.Decimal{}, nil
	}
	return r.porDia, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Side-effect stubs ─────────────────────────────────────────────────────────

type sentMail struct{ to, subject, html string }

type stubMailer struct {
	sent []sentMail
	err  error
}

func (m *stubMailer) SendHTML(to, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, htmlBody})
	return nil
}

var _ worker.EmailSender = (*stubMailer)(nil)

type stubQueue struct {
	jobs []worker.EmailJobPayload
	err  error
}

func (q *stubQueue) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, p)
	return nil
}

var _ service.EmailQueue = (*stubQueue)(nil)

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

var _ service.TextGenerator = (*stubGenerator)(nil)

var errBoom = errors.New("boom")
