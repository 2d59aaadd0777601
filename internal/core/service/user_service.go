package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuiter/tuiter-api/internal/core/domain"
	"github.com/tuiter/tuiter-api/internal/core/ports"
)

// BanTypeNuke is the only supported ban type: remove every feature and mark
// the account as nuked.
const BanTypeNuke = "nuke"

// UserService implements signup, profile updates, and moderation.
type UserService struct {
	repo     ports.UserRepository
	cascader ports.BanCascader
	logger   zerolog.Logger
}

// NewUserService returns a UserService. cascader may be nil, in which case a
// ban does not touch the banned user's tuits.
func NewUserService(repo ports.UserRepository, cascader ports.BanCascader, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, cascader: cascader, logger: logger}
}

func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if err := s.validateUniqueTag(ctx, input.Tag); err != nil {
		return nil, err
	}
	if err := s.validateUniqueUsername(ctx, input.Username); err != nil {
		return nil, err
	}
	if err := s.validateUniqueEmail(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.InternalError(err)
	}

	user := &domain.User{
		Tag:          input.Tag,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Features:     domain.DefaultUserFeatures(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("tag", created.Tag).Msg("user created")
	return created, nil
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) FindByTag(ctx context.Context, tag string) (*domain.User, error) {
	return s.repo.FindByTag(ctx, tag)
}

func (s *UserService) Update(ctx context.Context, tag string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	if input.Tag != nil && *input.Tag != user.Tag {
		if err := s.validateUniqueTag(ctx, *input.Tag); err != nil {
			return nil, err
		}
		user.Tag = *input.Tag
	}
	if input.Username != nil && *input.Username != user.Username {
		if err := s.validateUniqueUsername(ctx, *input.Username); err != nil {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := s.validateUniqueEmail(ctx, *input.Email); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, domain.InternalError(err)
		}
		user.PasswordHash = string(hash)
	}
	if input.Description != nil {
		user.Description = *input.Description
	}
	if input.Picture != nil {
		user.Picture = *input.Picture
	}

	return s.repo.Update(ctx, user)
}

func (s *UserService) AddFeatures(ctx context.Context, id uuid.UUID, features []string) (*domain.User, error) {
	return s.repo.AddFeatures(ctx, id, features)
}

func (s *UserService) Ban(ctx context.Context, tag string, banType string) (*domain.User, error) {
	if banType != BanTypeNuke {
		return nil, domain.ValidationError(
			`"ban_type" must be "nuke".`,
			"Send a supported ban type.",
		).WithLocation("SERVICE:USER:BAN:UNSUPPORTED_BAN_TYPE").WithKey("ban_type")
	}

	user, err := s.repo.FindByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	if user.IsNuked() {
		return nil, domain.UnprocessableEntityError(
			"This user is already permanently banned.",
			"Check that you are banning the right user.",
		).WithLocation("SERVICE:USER:BAN:USER_ALREADY_NUKED")
	}

	if _, err := s.repo.RemoveFeatures(ctx, user.ID, nil); err != nil {
		return nil, err
	}
	banned, err := s.repo.AddFeatures(ctx, user.ID, []string{domain.FeatureNuked})
	if err != nil {
		return nil, err
	}

	if s.cascader != nil {
		if err := s.cascader.CascadeBan(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("tag", tag).Msg("user banned")
	return banned, nil
}

func (s *UserService) validateUniqueTag(ctx context.Context, tag string) error {
	return s.validateUnique(ctx, "tag", tag, s.repo.FindByTag)
}

func (s *UserService) validateUniqueUsername(ctx context.Context, username string) error {
	return s.validateUnique(ctx, "username", username, s.repo.FindByUsername)
}

func (s *UserService) validateUniqueEmail(ctx context.Context, email string) error {
	return s.validateUnique(ctx, "email", email, s.repo.FindByEmail)
}

// validateUnique fails when a case-insensitive match for value already
// exists. The database unique index remains the backstop for races between
// the check and the insert.
func (s *UserService) validateUnique(ctx context.Context, key, value string, find func(context.Context, string) (*domain.User, error)) error {
	_, err := find(ctx, value)
	if err == nil {
		return domain.ValidationError(
			`The "`+key+`" given is already in use.`,
			"Pick another one and try again.",
		).WithLocation("SERVICE:USER:VALIDATE_UNIQUE_" + strings.ToUpper(key) + ":ALREADY_EXISTS").WithKey(key)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
