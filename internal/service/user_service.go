package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rmatsuoka/gameserver/internal/domain"
	"github.com/rmatsuoka/gameserver/internal/repository"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenGenerateRetry = errors.New("could not generate a unique token")
)

const tokenRetryLimit = 10

// UserService is the user directory: it issues opaque bearer tokens and
// resolves them back to profiles.
type UserService struct {
	users repository.UserRepository
	log   *slog.Logger
}

func NewUserService(users repository.UserRepository, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, name string, leaderCardID int64) (string, error) {
	const op = "service.user.create"

	if name == "" {
		return "", errors.New("name is required")
	}

	// Token collision is vanishingly rare but the unique index makes it
	// loud, so retry a bounded number of times.
	for i := 0; i < tokenRetryLimit; i++ {
		token := uuid.NewString()
		user := &domain.User{Name: name, LeaderCardID: leaderCardID}

		err := s.users.Create(ctx, user, token)
		if errors.Is(err, repository.ErrTokenExists) {
			continue
		}
		if err != nil {
			return "", err
		}

		s.log.Info("user created", slog.String("op", op), slog.Int64("user_id", user.ID))
		return token, nil
	}

	return "", ErrTokenGenerateRetry
}

func (s *UserService) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, token, name string, leaderCardID int64) error {
	const op = "service.user.update"

	if name == "" {
		return errors.New("name is required")
	}

	user, err := s.GetUserByToken(ctx, token)
	if err != nil {
		return err
	}

	user.Name = name
	user.LeaderCardID = leaderCardID
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("user updated", slog.String("op", op), slog.Int64("user_id", user.ID))
	return nil
}
