package service

import (
	"context"
	"strings"

	"firmeza/internal/dto"
	"firmeza/internal/model"
	"firmeza/internal/repository"

	"github.com/shopspring/decimal"
)

const msgProductoDuplicado = "Ya existe un producto con ese nombre."

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	Crear(ctx context.Context, req dto.ProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ProductoRequest) error
	Eliminar(ctx context.Context, id uint) error
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		resp = append(resp, productoToResponse(&productos[i]))
	}
	return resp, nil
}

func (s *productoService) Obtener(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Crear(ctx context.Context, req dto.ProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{}
	if err := aplicarProducto(p, req); err != nil {
		return nil, err
	}
	exists, err := s.repo.NombreExists(ctx, p.Nombre, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, regla(msgProductoDuplicado)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, duplicado(err, msgProductoDuplicado)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uint, req dto.ProductoRequest) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := aplicarProducto(p, req); err != nil {
		return err
	}
	exists, err := s.repo.NombreExists(ctx, p.Nombre, id)
	if err != nil {
		return err
	}
	if exists {
		return regla(msgProductoDuplicado)
	}
	return duplicado(s.repo.Update(ctx, p), msgProductoDuplicado)
}

func (s *productoService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err)
	}
	enUso, err := s.repo.EnUso(ctx, id)
	if err != nil {
		return err
	}
	if enUso {
		return regla("No se puede eliminar el producto porque tiene ventas registradas.")
	}
	return notFound(s.repo.Delete(ctx, id))
}

// aplicarProducto copies req onto p. Prices carry at most two decimals to
// match the decimal(10,2) column.
func aplicarProducto(p *model.Producto, req dto.ProductoRequest) error {
	if !req.Precio.Equal(req.Precio.Round(2)) {
		return regla("El precio admite como máximo 2 decimales.")
	}
	if req.Precio.LessThan(decimal.Zero) {
		return regla("El precio no puede ser negativo.")
	}
	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Categoria = strings.TrimSpace(req.Categoria)
	p.Precio = req.Precio
	p.Stock = req.Stock
	return nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:        p.ID,
		Nombre:    p.Nombre,
		Categoria: p.Categoria,
		Precio:    p.Precio,
		Stock:     p.Stock,
	}
}
