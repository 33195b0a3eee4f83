// Command seed creates the demo accounts and a small catalog.
// Usage: go run ./cmd/seed
// Safe to run repeatedly: existing rows are left untouched.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"firmeza/internal/config"
	"firmeza/internal/infra"
	"firmeza/internal/model"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	demoAdminEmail    = "admin@demo.com"
	demoAdminPassword = "Admin123!"
	demoClienteEmail  = "cliente@demo.com"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DatabaseOptions{
		SQLMigrations:  cfg.Migrations,
		MigrationsPath: cfg.MigrationsPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	if cfg.AdminEmail == demoAdminEmail || cfg.AdminPassword == demoAdminPassword {
		log.Warn().Msg("seeding admin with default demo credentials; set ADMIN_EMAIL and ADMIN_PASSWORD")
	}
	if _, err := ensureUsuario(ctx, db, cfg.AdminEmail, cfg.AdminPassword, model.RolAdministrador); err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	cliente, err := ensureUsuario(ctx, db, demoClienteEmail, cfg.DefaultClientePassword, model.RolCliente)
	if err != nil {
		log.Fatal().Err(err).Msg("seed cliente user")
	}
	if err := ensureCliente(ctx, db, cliente); err != nil {
		log.Fatal().Err(err).Msg("seed cliente")
	}
	if err := ensureProductos(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed productos")
	}
	log.Info().Msg("seed completed")
}

func ensureUsuario(ctx context.Context, db *gorm.DB, email, password, rol string) (*model.Usuario, error) {
	var u model.Usuario
	err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err == nil {
		log.Info().Str("email", email).Msg("usuario already exists")
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u = model.Usuario{Username: email, Email: email, PasswordHash: string(hash), Rol: rol, Activo: true}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	log.Info().Str("email", email).Str("rol", rol).Msg("usuario created")
	return &u, nil
}

func ensureCliente(ctx context.Context, db *gorm.DB, u *model.Usuario) error {
	var n int64
	if err := db.WithContext(ctx).Model(&model.Cliente{}).Where("usuario_id = ?", u.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	c := model.Cliente{
		Nombre:    "Cliente Demo",
		Documento: "00000000",
		Telefono:  "3000000000",
		Email:     u.Email,
		UsuarioID: &u.ID,
	}
	return db.WithContext(ctx).Create(&c).Error
}

func ensureProductos(ctx context.Context, db *gorm.DB) error {
	demo := []model.Producto{
		{Nombre: "Cemento gris 50kg", Categoria: "Construcción", Precio: decimal.RequireFromString("32.50"), Stock: 120},
		{Nombre: "Varilla corrugada 3/8", Categoria: "Acero", Precio: decimal.RequireFromString("12.90"), Stock: 300},
		{Nombre: "Arena lavada m3", Categoria: "Agregados", Precio: decimal.RequireFromString("45.00"), Stock: 40},
		{Nombre: "Ladrillo macizo", Categoria: "Construcción", Precio: decimal.RequireFromString("0.85"), Stock: 5000},
	}
	for _, p := range demo {
		p := p
		if err := db.WithContext(ctx).Where(model.Producto{Nombre: p.Nombre}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
