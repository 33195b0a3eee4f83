package repository

import (
	"context"

	"firmeza/internal/model"

	"gorm.io/gorm"
)

type ClienteRepository interface {
	// Create inserts c; tx may be nil.
	Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
	FindByID(ctx context.Context, id uint) (*model.Cliente, error)
	FindByUsuarioID(ctx context.Context, usuarioID uint) (*model.Cliente, error)
	List(ctx context.Context) ([]model.Cliente, error)
	// Update saves every column of c; tx may be nil.
	Update(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	// EmailExists ignores the row with id excludeID (0 = none).
	EmailExists(ctx context.Context, email string, excludeID uint) (bool, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uint) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) FindByUsuarioID(ctx context.Context, usuarioID uint) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clienteRepo) List(ctx context.Context) ([]model.Cliente, error) {
	var clientes []model.Cliente
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return conn(ctx, r.db, tx).Omit("Usuario").Save(c).Error
}

func (r *clienteRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Cliente{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *clienteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cliente{}).Count(&n).Error
	return n, err
}

func (r *clienteRepo) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}
