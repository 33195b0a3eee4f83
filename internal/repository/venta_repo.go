package repository

import (
	"context"
	"time"

	"firmeza/internal/dto"
	"firmeza/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uint) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error)
	// Delete removes the sale and its detalles in one transaction.
	Delete(ctx context.Context, id uint) error
	ExistsForCliente(ctx context.Context, clienteID uint) (bool, error)

	// Line items
	FindDetalleByID(ctx context.Context, id uint) (*model.DetalleVenta, error)
	ListDetalles(ctx context.Context) ([]model.DetalleVenta, error)

	// Dashboard aggregates over [desde, hasta)
	Resumen(ctx context.Context, desde, hasta time.Time) (int64, decimal.Decimal, error)
	// TotalesPorDia sums totals per UTC calendar day (yyyy-MM-dd) since desde.
	TotalesPorDia(ctx context.Context, desde time.Time) (map[string]decimal.Decimal, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uint) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Cliente").Preload("Detalles.Producto").
		First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, error) {
	var ventas []model.Venta
	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	if filter.Desde != nil {
		q = q.Where("fecha >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha < ?", *filter.Hasta)
	}
	err := q.Preload("Cliente").Preload("Detalles.Producto").
		Order("fecha DESC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venta_id = ?", id).Delete(&model.DetalleVenta{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Venta{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ventaRepo) ExistsForCliente(ctx context.Context, clienteID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).Where("cliente_id = ?", clienteID).Count(&n).Error
	return n > 0, err
}

func (r *ventaRepo) FindDetalleByID(ctx context.Context, id uint) (*model.DetalleVenta, error) {
	var d model.DetalleVenta
	if err := r.db.WithContext(ctx).Preload("Producto").First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ventaRepo) ListDetalles(ctx context.Context) ([]model.DetalleVenta, error) {
	var detalles []model.DetalleVenta
	err := r.db.WithContext(ctx).Preload("Producto").Order("venta_id DESC, id ASC").Find(&detalles).Error
	return detalles, err
}

// ventaTotal is the projection used by the dashboard aggregates. Totals are
// summed in Go to keep decimal precision independent of the SQL driver.
type ventaTotal struct {
	Fecha time.Time
	Total decimal.Decimal
}

func (r *ventaRepo) Resumen(ctx context.Context, desde, hasta time.Time) (int64, decimal.Decimal, error) {
	var rows []ventaTotal
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("fecha, total").
		Where("fecha >= ? AND fecha < ?", desde, hasta).
		Scan(&rows).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Total)
	}
	return int64(len(rows)), total, nil
}

func (r *ventaRepo) TotalesPorDia(ctx context.Context, desde time.Time) (map[string]decimal.Decimal, error) {
	var rows []ventaTotal
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("fecha, total").
		Where("fecha >= ?", desde).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal)
	for _, row := range rows {
		day := row.Fecha.UTC().Format("2006-01-02")
		out[day] = out[day].Add(row.Total)
	}
	return out, nil
}
