package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

// LoginResult is the outcome of a login attempt. CodeSent means the
// password matched but a mailed code must be presented before a token is
// issued.
type LoginResult struct {
	Token    string
	User     *models.User
	CodeSent bool
}

func (s *UserCommandService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsLocked {
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return nil, s.failedLogin(ctx, user)
	}

	if !user.IsSuper && user.EmailCheck {
		if cmd.Code == "" {
			if err := s.sendLoginCode(ctx, user); err != nil {
				return nil, err
			}
			return &LoginResult{User: user, CodeSent: true}, nil
		}
		if !s.codeMatches(user, cmd.Code) {
			return nil, ErrInvalidCode
		}
	}

	user.EmailCode = ""
	user.EmailCodeExpire = nil
	user.LoginLimit = 0
	user.IsLocked = false
	user.LockedAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// failedLogin counts a bad password and locks the account on the third.
func (s *UserCommandService) failedLogin(ctx context.Context, user *models.User) error {
	if user.LoginLimit < maxLoginAttempts {
		user.LoginLimit++
	}
	if user.LoginLimit < maxLoginAttempts {
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		return ErrInvalidCredentials
	}

	now := s.now()
	user.IsLocked = true
	user.LockedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, user.ID)
	return ErrAccountLockedNow
}

func (s *UserCommandService) sendLoginCode(ctx context.Context, user *models.User) error {
	code, err := utils.GenerateCode(6)
	if err != nil {
		return err
	}
	expire := s.now().Add(emailCodeTTL)
	user.EmailCode = code
	user.EmailCodeExpire = &expire
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.send(ctx, user.Email, "Verify your login", fmt.Sprintf("Please use the code %s to verify your email.", code))
	return nil
}

func (s *UserCommandService) codeMatches(user *models.User, code string) bool {
	if user.EmailCode == "" || user.EmailCodeExpire == nil {
		return false
	}
	return user.EmailCode == strings.TrimSpace(code) && user.EmailCodeExpire.After(s.now())
}

// Activate consumes an activation token mailed at registration.
func (s *UserCommandService) Activate(ctx context.Context, cmd cqrs.ActivateCommand) (*models.User, error) {
	user, err := s.users.GetByActivationToken(ctx, utils.HashToken(cmd.Token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user.IsActivated = true
	user.ActivationToken = ""
	user.ActivationExpire = nil
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(ctx, user.ID)
	return user, nil
}

// ForgotPassword mails a reset link. Unknown emails are reported so the
// caller can surface a 404.
func (s *UserCommandService) ForgotPassword(ctx context.Context, cmd cqrs.ForgotPasswordCommand) error {
	user, err := s.getUserByEmail(ctx, cmd.Email)
	if err != nil {
		return err
	}

	rawToken, hashedToken, err := utils.NewToken()
	if err != nil {
		return err
	}
	expire := s.now().Add(emailTokenTTL)
	user.ResetPasswordToken = hashedToken
	user.ResetPasswordExpire = &expire
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.send(ctx, user.Email, "Reset your password",
		fmt.Sprintf("Reset your password at %s/%s", strings.TrimSuffix(cmd.Callback, "/"), rawToken))
	return nil
}

func (s *UserCommandService) ResetPassword(ctx context.Context, cmd cqrs.ResetPasswordCommand) (*models.User, error) {
	if !utils.ValidPassword(cmd.Password) {
		return nil, ErrWeakPassword
	}

	user, err := s.users.GetByResetToken(ctx, utils.HashToken(cmd.Token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.setPassword(ctx, user, cmd.Password, models.PasswordTypeSelfChanged); err != nil {
		return nil, err
	}
	return user, nil
}

// ForcePassword replaces a generated password. Accounts whose password the
// owner already chose are rejected.
func (s *UserCommandService) ForcePassword(ctx context.Context, cmd cqrs.ForcePasswordCommand) (*models.User, error) {
	user, err := s.getUserByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if user.PasswordType != models.PasswordTypeGenerated {
		return nil, ErrPasswordNotGenerated
	}
	if !utils.ValidPassword(cmd.Password) {
		return nil, ErrWeakPassword
	}

	if err := s.setPassword(ctx, user, cmd.Password, models.PasswordTypeSelfChanged); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserCommandService) setPassword(ctx context.Context, user *models.User, password, passwordType string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordType = passwordType
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (s *UserCommandService) getUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
