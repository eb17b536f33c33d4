package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type UserUseCase struct {
	Users  UserRepositoryInterface
	Hasher PasswordHasher
	Tokens TokenIssuer
	Clock  Clock
}

func NewUserUseCase(users UserRepositoryInterface, hasher PasswordHasher, tokens TokenIssuer) *UserUseCase {
	return &UserUseCase{Users: users, Hasher: hasher, Tokens: tokens}
}

var errInvalidCredentials = &DomainError{Code: CodeUnauthorized, Message: "invalid email or password"}

// Login confere a senha e devolve o token de sessão. Email inexistente e senha
// errada respondem a mesma coisa.
func (uc *UserUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	u, err := uc.Users.FindByEmail(ctx, input.Email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, translateError(err)
	}
	if !uc.Hasher.Compare(u.PasswordHash, input.Password) {
		return nil, errInvalidCredentials
	}

	token, err := uc.Tokens.Issue(u)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to issue session token", Err: err}
	}
	return &LoginOutput{Token: token, User: u}, nil
}

func (uc *UserUseCase) CreateUser(ctx context.Context, actor *Actor, input CreateUserInput) (*entity.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.create(ctx, input)
}

func (uc *UserUseCase) ListUsers(ctx context.Context, actor *Actor) ([]entity.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// Me devolve o usuário do token, lido do cadastro para refletir mudanças de papel.
func (uc *UserUseCase) Me(ctx context.Context, actor *Actor) (*entity.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	u, err := uc.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

// Bootstrap cria um admin sem ator. Usado só pela linha de comando.
func (uc *UserUseCase) Bootstrap(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	input.Role = entity.RoleAdmin
	return uc.create(ctx, input)
}

func (uc *UserUseCase) create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	hash, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	u := entity.NewUser(input.Name, input.Email, hash, input.Role, uc.Clock.now())
	if err := uc.Users.Create(ctx, u); err != nil {
		return nil, translateError(fmt.Errorf("erro ao criar usuário: %w", err))
	}
	return u, nil
}
