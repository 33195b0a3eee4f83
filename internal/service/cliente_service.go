package service

import (
	"context"
	"errors"
	"strings"

	"firmeza/internal/dto"
	"firmeza/internal/model"
	"firmeza/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgEmailRegistrado = "El correo ya está registrado."

type ClienteService interface {
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.ClienteResponse, error)
	Crear(ctx context.Context, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ClienteRequest) error
	Eliminar(ctx context.Context, id uint) error

	// Self-service, keyed by the authenticated usuario id
	Perfil(ctx context.Context, usuarioID uint) (*dto.ClienteResponse, error)
	ActualizarPerfil(ctx context.Context, usuarioID uint, req dto.ClienteRequest) error
	EliminarPerfil(ctx context.Context, usuarioID uint) error

	// VincularUsuario links the cliente to an existing account, or creates a
	// Cliente account from the supplied credentials.
	VincularUsuario(ctx context.Context, clienteID uint, req dto.VincularUsuarioRequest) (*dto.VinculoResponse, error)
}

type clienteService struct {
	repo        repository.ClienteRepository
	usuarioRepo repository.UsuarioRepository
	ventaRepo   repository.VentaRepository
}

func NewClienteService(repo repository.ClienteRepository, usuarioRepo repository.UsuarioRepository, ventaRepo repository.VentaRepository) ClienteService {
	return &clienteService{repo: repo, usuarioRepo: usuarioRepo, ventaRepo: ventaRepo}
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		resp = append(resp, clienteToResponse(&clientes[i]))
	}
	return resp, nil
}

func (s *clienteService) Obtener(ctx context.Context, id uint) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Crear(ctx context.Context, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	if err := s.emailLibre(ctx, req.Email, 0); err != nil {
		return nil, err
	}
	c := &model.Cliente{}
	aplicarCliente(c, req)
	if err := s.repo.Create(ctx, nil, c); err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uint, req dto.ClienteRequest) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	return s.actualizar(ctx, c, req)
}

func (s *clienteService) actualizar(ctx context.Context, c *model.Cliente, req dto.ClienteRequest) error {
	if err := s.emailLibre(ctx, req.Email, c.ID); err != nil {
		return err
	}
	aplicarCliente(c, req)
	return s.repo.Update(ctx, nil, c)
}

func (s *clienteService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err)
	}
	return s.eliminar(ctx, id)
}

func (s *clienteService) eliminar(ctx context.Context, id uint) error {
	tieneVentas, err := s.ventaRepo.ExistsForCliente(ctx, id)
	if err != nil {
		return err
	}
	if tieneVentas {
		return regla("No se puede eliminar el cliente porque tiene ventas registradas.")
	}
	return notFound(s.repo.Delete(ctx, id))
}

func (s *clienteService) Perfil(ctx context.Context, usuarioID uint) (*dto.ClienteResponse, error) {
	c, err := s.propio(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	resp := clienteToResponse(c)
	return &resp, nil
}

func (s *clienteService) ActualizarPerfil(ctx context.Context, usuarioID uint, req dto.ClienteRequest) error {
	c, err := s.propio(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.actualizar(ctx, c, req)
}

func (s *clienteService) EliminarPerfil(ctx context.Context, usuarioID uint) error {
	c, err := s.propio(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.eliminar(ctx, c.ID)
}

func (s *clienteService) propio(ctx context.Context, usuarioID uint) (*model.Cliente, error) {
	c, err := s.repo.FindByUsuarioID(ctx, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errClienteNoEncontrado
		}
		return nil, err
	}
	return c, nil
}

func (s *clienteService) VincularUsuario(ctx context.Context, clienteID uint, req dto.VincularUsuarioRequest) (*dto.VinculoResponse, error) {
	c, err := s.repo.FindByID(ctx, clienteID)
	if err != nil {
		return nil, notFound(err)
	}

	var usuario *model.Usuario
	if req.UsuarioExistenteID != nil {
		usuario, err = s.usuarioRepo.FindByID(ctx, *req.UsuarioExistenteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errUsuarioNoEncontrado
			}
			return nil, err
		}
		otro, err := s.repo.FindByUsuarioID(ctx, usuario.ID)
		if err == nil && otro.ID != c.ID {
			return nil, regla("El usuario ya está vinculado a otro cliente.")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		email := strings.TrimSpace(req.Email)
		if email == "" || req.Password == "" {
			return nil, regla("Email y Password requeridos para crear usuario.")
		}
		exists, err := s.usuarioRepo.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, regla("El usuario ya existe.")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		username := strings.TrimSpace(req.Username)
		if username == "" {
			username = email
		}
		usuario = &model.Usuario{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Rol:          model.RolCliente,
			Activo:       true,
		}
	}

	txErr := runTx(ctx, s.usuarioRepo.DB(), func(tx *gorm.DB) error {
		if usuario.ID == 0 {
			if err := s.usuarioRepo.Create(ctx, tx, usuario); err != nil {
				return duplicado(err, "El usuario ya existe.")
			}
		}
		c.UsuarioID = &usuario.ID
		return s.repo.Update(ctx, tx, c)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Uint("cliente_id", c.ID).Uint("usuario_id", usuario.ID).Msg("cliente vinculado a usuario")
	return &dto.VinculoResponse{
		Codigo:    200,
		Mensaje:   "Cliente vinculado correctamente.",
		ClienteID: c.ID,
		UsuarioID: usuario.ID,
	}, nil
}

func (s *clienteService) emailLibre(ctx context.Context, email string, excludeID uint) error {
	exists, err := s.repo.EmailExists(ctx, strings.TrimSpace(email), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return regla(msgEmailRegistrado)
	}
	return nil
}

func aplicarCliente(c *model.Cliente, req dto.ClienteRequest) {
	c.Nombre = strings.TrimSpace(req.Nombre)
	c.Documento = strings.TrimSpace(req.Documento)
	c.Telefono = strings.TrimSpace(req.Telefono)
	c.Email = strings.TrimSpace(req.Email)
}

func clienteToResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:        c.ID,
		Nombre:    c.Nombre,
		Documento: c.Documento,
		Telefono:  c.Telefono,
		Email:     c.Email,
		UsuarioID: c.UsuarioID,
	}
}
