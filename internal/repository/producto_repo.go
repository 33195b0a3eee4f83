package repository

import (
	"context"

	"firmeza/internal/dto"
	"firmeza/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)

	// NombreExists ignores the row with id excludeID (0 = none).
	NombreExists(ctx context.Context, nombre string, excludeID uint) (bool, error)
	// Nombres returns the set of every product name in the catalog.
	Nombres(ctx context.Context) (map[string]bool, error)
	// EnUso reports whether any detalle_venta references the product.
	EnUso(ctx context.Context, id uint) (bool, error)

	// Used inside transactions; callers pass the tx instance
	CreateBatchTx(tx *gorm.DB, productos []model.Producto) error
	// DescontarStockTx subtracts cantidad only when at least that much stock
	// is available. It returns false, without error, when no row qualified.
	DescontarStockTx(tx *gorm.DB, id uint, cantidad int) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	var productos []model.Producto
	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Producto{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Count(&n).Error
	return n, err
}

func (r *productoRepo) NombreExists(ctx context.Context, nombre string, excludeID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("nombre = ?", nombre)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) Nombres(ctx context.Context) (map[string]bool, error) {
	var nombres []string
	if err := r.db.WithContext(ctx).Model(&model.Producto{}).Pluck("nombre", &nombres).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(nombres))
	for _, n := range nombres {
		set[n] = true
	}
	return set, nil
}

func (r *productoRepo) EnUso(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.DetalleVenta{}).Where("producto_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) CreateBatchTx(tx *gorm.DB, productos []model.Producto) error {
	if len(productos) == 0 {
		return nil
	}
	return tx.CreateInBatches(productos, 100).Error
}

func (r *productoRepo) DescontarStockTx(tx *gorm.DB, id uint, cantidad int) (bool, error) {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND stock >= ?", id, cantidad).
		Update("stock", gorm.Expr("stock - ?", cantidad))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
