package repository_test

import (
	"context"
	"testing"
	"time"

	"firmeza/internal/dto"
	"firmeza/internal/infra"
	"firmeza/internal/model"
	"firmeza/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, infra.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func crearProducto(t *testing.T, repo repository.ProductoRepository, nombre string, stock int) *model.Producto {
	t.Helper()
	p := &model.Producto{Nombre: nombre, Categoria: "General", Precio: decimal.RequireFromString("10.00"), Stock: stock}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func crearCliente(t *testing.T, repo repository.ClienteRepository, email string) *model.Cliente {
	t.Helper()
	c := &model.Cliente{Nombre: "Ana", Documento: "1", Telefono: "2", Email: email}
	require.NoError(t, repo.Create(context.Background(), nil, c))
	return c
}

func crearVenta(t *testing.T, repo repository.VentaRepository, clienteID uint, fecha time.Time, lineas ...model.DetalleVenta) *model.Venta {
	t.Helper()
	v := &model.Venta{Fecha: fecha, ClienteID: clienteID, MetodoPago: "Efectivo", Detalles: lineas}
	v.RecalcularTotal()
	require.NoError(t, repo.Create(context.Background(), nil, v))
	return v
}

func TestDescontarStockTx(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewProductoRepository(db)
	p := crearProducto(t, repo, "Cemento", 5)

	ok, err := repo.DescontarStockTx(db, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DescontarStockTx(db, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "only 2 left")

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestDescontarStockTx_RollbackDejaElStock(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewProductoRepository(db)
	p := crearProducto(t, repo, "Cemento", 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := repo.DescontarStockTx(tx, p.ID, 5)
		require.NoError(t, err)
		require.True(t, ok)
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	got, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestProducto_NombreUnico(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewProductoRepository(db)
	p := crearProducto(t, repo, "Cemento", 1)

	err := repo.Create(context.Background(), &model.Producto{Nombre: "Cemento", Categoria: "X", Precio: decimal.NewFromInt(1)})
	assert.True(t, infra.IsUniqueViolation(err), "got %v", err)

	exists, err := repo.NombreExists(context.Background(), "Cemento", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.NombreExists(context.Background(), "Cemento", p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	nombres, err := repo.Nombres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Cemento": true}, nombres)
}

func TestProducto_ListFiltros(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewProductoRepository(db)
	crearProducto(t, repo, "Cemento gris", 1)
	crearProducto(t, repo, "Arena fina", 1)

	out, err := repo.List(context.Background(), dto.ProductoFilter{Nombre: "CEMENTO"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Cemento gris", out[0].Nombre)

	all, err := repo.List(context.Background(), dto.ProductoFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Arena fina", all[0].Nombre)
}

func TestProducto_CreateBatchTxYEnUso(t *testing.T) {
	db := newTestDB(t)
	productos := repository.NewProductoRepository(db)
	clientes := repository.NewClienteRepository(db)
	ventas := repository.NewVentaRepository(db)

	lote := []model.Producto{
		{Nombre: "A", Categoria: "X", Precio: decimal.NewFromInt(1), Stock: 1},
		{Nombre: "B", Categoria: "X", Precio: decimal.NewFromInt(2), Stock: 2},
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return productos.CreateBatchTx(tx, lote) }))
	n, err := productos.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	c := crearCliente(t, clientes, "ana@example.com")
	crearVenta(t, ventas, c.ID, time.Now().UTC(), model.DetalleVenta{ProductoID: lote[0].ID, Cantidad: 1, PrecioUnitario: lote[0].Precio})

	enUso, err := productos.EnUso(context.Background(), lote[0].ID)
	require.NoError(t, err)
	assert.True(t, enUso)
	enUso, err = productos.EnUso(context.Background(), lote[1].ID)
	require.NoError(t, err)
	assert.False(t, enUso)
}

func TestVenta_CreateYFindByID(t *testing.T) {
	db := newTestDB(t)
	productos := repository.NewProductoRepository(db)
	ventas := repository.NewVentaRepository(db)
	c := crearCliente(t, repository.NewClienteRepository(db), "ana@example.com")
	p := crearProducto(t, productos, "Cemento", 10)

	v := crearVenta(t, ventas, c.ID, time.Now().UTC(),
		model.DetalleVenta{ProductoID: p.ID, Cantidad: 2, PrecioUnitario: p.Precio})

	got, err := ventas.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Cliente)
	assert.Equal(t, "Ana", got.Cliente.Nombre)
	require.Len(t, got.Detalles, 1)
	require.NotNil(t, got.Detalles[0].Producto)
	assert.Equal(t, "Cemento", got.Detalles[0].Producto.Nombre)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(20)), "total %s", got.Total)

	d, err := ventas.FindDetalleByID(context.Background(), got.Detalles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, d.VentaID)
}

func TestVenta_DeleteBorraDetalles(t *testing.T) {
	db := newTestDB(t)
	ventas := repository.NewVentaRepository(db)
	c := crearCliente(t, repository.NewClienteRepository(db), "ana@example.com")
	p := crearProducto(t, repository.NewProductoRepository(db), "Cemento", 10)
	v := crearVenta(t, ventas, c.ID, time.Now().UTC(), model.DetalleVenta{ProductoID: p.ID, Cantidad: 1, PrecioUnitario: p.Precio})

	require.NoError(t, ventas.Delete(context.Background(), v.ID))
	detalles, err := ventas.ListDetalles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, detalles)

	assert.ErrorIs(t, ventas.Delete(context.Background(), v.ID), gorm.ErrRecordNotFound)

	tiene, err := ventas.ExistsForCliente(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, tiene)
}

func TestVenta_ListYAgregados(t *testing.T) {
	db := newTestDB(t)
	ventas := repository.NewVentaRepository(db)
	clientes := repository.NewClienteRepository(db)
	ana := crearCliente(t, clientes, "ana@example.com")
	beto := crearCliente(t, clientes, "beto@example.com")
	p := crearProducto(t, repository.NewProductoRepository(db), "Cemento", 100)

	hoy := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	ayer := hoy.AddDate(0, 0, -1)
	linea := func(n int) model.DetalleVenta {
		return model.DetalleVenta{ProductoID: p.ID, Cantidad: n, PrecioUnitario: p.Precio}
	}
	crearVenta(t, ventas, ana.ID, ayer, linea(1))
	crearVenta(t, ventas, ana.ID, hoy, linea(2))
	crearVenta(t, ventas, beto.ID, hoy.Add(time.Hour), linea(3))

	soloAna, err := ventas.List(context.Background(), dto.VentaFilter{ClienteID: &ana.ID})
	require.NoError(t, err)
	require.Len(t, soloAna, 2)
	assert.True(t, soloAna[0].Fecha.After(soloAna[1].Fecha), "newest first")

	desde := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	hasta := desde.AddDate(0, 0, 1)
	delDia, err := ventas.List(context.Background(), dto.VentaFilter{Desde: &desde, Hasta: &hasta})
	require.NoError(t, err)
	assert.Len(t, delDia, 2)

	n, total, err := ventas.Resumen(context.Background(), desde, hasta)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, total.Equal(decimal.NewFromInt(50)), "total %s", total)

	porDia, err := ventas.TotalesPorDia(context.Background(), desde.AddDate(0, 0, -6))
	require.NoError(t, err)
	assert.True(t, porDia["2026-10-13"].Equal(decimal.NewFromInt(10)))
	assert.True(t, porDia["2026-10-14"].Equal(decimal.NewFromInt(50)))
}

func TestCliente_UsuarioVinculado(t *testing.T) {
	db := newTestDB(t)
	clientes := repository.NewClienteRepository(db)
	usuarios := repository.NewUsuarioRepository(db)

	u := &model.Usuario{Username: "ana", Email: "ana@example.com", PasswordHash: "x", Rol: model.RolCliente, Activo: true}
	require.NoError(t, usuarios.Create(context.Background(), nil, u))
	c := crearCliente(t, clientes, "ana@example.com")
	c.UsuarioID = &u.ID
	require.NoError(t, clientes.Update(context.Background(), nil, c))

	got, err := clientes.FindByUsuarioID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = clientes.FindByUsuarioID(context.Background(), 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := clientes.EmailExists(context.Background(), "ana@example.com", c.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := usuarios.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
}
