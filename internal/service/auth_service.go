package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"firmeza/internal/config"
	"firmeza/internal/dto"
	"firmeza/internal/model"
	"firmeza/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type AuthService interface {
	// Login issues a bearer token for the public API.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Register creates a Cliente account and its linked cliente row.
	Register(ctx context.Context, req dto.RegisterRequest) error
	// AdminLogin checks credentials for the admin panel; only administrators pass.
	AdminLogin(ctx context.Context, req dto.LoginRequest) (*dto.UsuarioResponse, error)
	// EsAdminActivo re-checks an admin session against the usuarios table.
	EsAdminActivo(ctx context.Context, usuarioID uint) bool
}

type authService struct {
	repo        repository.UsuarioRepository
	clienteRepo repository.ClienteRepository
	cfg         *config.Config
	now         func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, clienteRepo repository.ClienteRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, clienteRepo: clienteRepo, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.verificar(ctx, req)
	if err != nil {
		return nil, err
	}

	expira := s.now().UTC().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	token, err := s.generateToken(user, expira)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:      token,
		Expiration: expira.Format(time.RFC3339),
		User:       usuarioToResponse(user),
	}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req dto.LoginRequest) (*dto.UsuarioResponse, error) {
	user, err := s.verificar(ctx, req)
	if err != nil {
		return nil, err
	}
	if user.Rol != model.RolAdministrador {
		log.Warn().Uint("usuario_id", user.ID).Msg("admin login rejected: not an administrator")
		return nil, ErrAccesoDenegado
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

// verificar returns the active usuario matching the credentials, with its
// role normalized.
func (s *authService) verificar(ctx context.Context, req dto.LoginRequest) (*model.Usuario, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredenciales
		}
		return nil, err
	}
	if !user.Activo {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	user.Rol = model.NormalizarRol(user.Rol)
	return user, nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) error {
	email := strings.TrimSpace(req.Email)
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		exists, err = s.clienteRepo.EmailExists(ctx, email, 0)
		if err != nil {
			return err
		}
	}
	if exists {
		return regla(msgEmailRegistrado)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}
	user := &model.Usuario{
		Username:     email,
		Email:        email,
		PasswordHash: string(hash),
		Rol:          model.RolCliente,
		Activo:       true,
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, user); err != nil {
			return duplicado(err, msgEmailRegistrado)
		}
		cliente := &model.Cliente{UsuarioID: &user.ID}
		aplicarCliente(cliente, dto.ClienteRequest{
			Nombre:    req.Nombre,
			Documento: req.Documento,
			Telefono:  req.Telefono,
			Email:     email,
		})
		return s.clienteRepo.Create(ctx, tx, cliente)
	})
}

func (s *authService) EsAdminActivo(ctx context.Context, usuarioID uint) bool {
	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		return false
	}
	return user.Activo && model.NormalizarRol(user.Rol) == model.RolAdministrador
}

func (s *authService) generateToken(user *model.Usuario, expira time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"rol":      user.Rol,
		"iss":      s.cfg.JWTIssuer,
		"aud":      s.cfg.JWTAudience,
		"exp":      expira.Unix(),
		"iat":      s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID,
		Username: u.Username,
		Roles:    []string{model.NormalizarRol(u.Rol)},
	}
}
