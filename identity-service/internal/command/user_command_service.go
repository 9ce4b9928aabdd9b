package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/mail"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

const (
	maxLoginAttempts = 3
	lockDuration     = 30 * time.Minute
	emailCodeTTL     = 30 * time.Minute
	emailTokenTTL    = 10 * time.Minute
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByActivationToken(ctx context.Context, hashed string, now time.Time) (*models.User, error)
	GetByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error)
	PhoneExists(ctx context.Context, phoneNumber string) (bool, error)
	Create(ctx context.Context, user *models.User, verification *models.Verification, roleIDs []string) error
	Update(ctx context.Context, user *models.User) error
	SetCountry(ctx context.Context, userID, countryID string) (bool, error)
	SetEmailCheck(ctx context.Context, userID string, enabled bool) error
	UnlockExpired(ctx context.Context, cutoff time.Time) ([]string, error)
	AttachRoles(ctx context.Context, userID string, roleIDs []string) error
	DetachRole(ctx context.Context, userID, roleID string) error
}

type RoleStore interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	EnsureDefaults(ctx context.Context) error
}

type CountryStore interface {
	Upsert(ctx context.Context, country *models.Country) (*models.Country, error)
}

type UserCache interface {
	InvalidateUser(ctx context.Context, userID string)
	InvalidateUsers(ctx context.Context)
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// UserCommandService owns every write to identity state: registration,
// login bookkeeping, tokens, roles, and the country attached by events.
type UserCommandService struct {
	users     UserStore
	roles     RoleStore
	countries CountryStore
	cache     UserCache
	publisher Publisher
	mailer    mail.Mailer
	now       func() time.Time
}

func NewUserCommandService(
	users UserStore,
	roles RoleStore,
	countries CountryStore,
	cache UserCache,
	publisher Publisher,
	mailer mail.Mailer,
) *UserCommandService {
	return &UserCommandService{
		users:     users,
		roles:     roles,
		countries: countries,
		cache:     cache,
		publisher: publisher,
		mailer:    mailer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a self-service user with the "user" role, mails the
// activation link and announces the user on xpch.user.created.
func (s *UserCommandService) Register(ctx context.Context, cmd cqrs.RegisterCommand) (*models.User, error) {
	role, err := s.roles.GetByName(ctx, models.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, ErrRoleMissing
		}
		return nil, err
	}

	user, err := s.newUser(ctx, cmd.Email, cmd.PhoneCode, cmd.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if !utils.ValidPassword(cmd.Password) {
		return nil, ErrWeakPassword
	}

	user.PasswordHash, err = utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordType = models.PasswordTypeSelf
	user.FirstName = cmd.FirstName
	user.LastName = cmd.LastName
	user.Roles = []string{role.Name}
	user.EmailCheck = true

	rawToken, hashedToken, err := utils.NewToken()
	if err != nil {
		return nil, err
	}
	expire := s.now().Add(emailTokenTTL)
	user.ActivationToken = hashedToken
	user.ActivationExpire = &expire

	if err := s.create(ctx, user, []string{role.ID}); err != nil {
		return nil, err
	}

	s.send(ctx, user.Email, "Welcome to XpressChain",
		fmt.Sprintf("We're glad you signed up on XpressChain. Log in at %s", cmd.Callback))
	s.send(ctx, user.Email, "Activate your account",
		fmt.Sprintf("Activate your XpressChain account at %s/%s", strings.TrimSuffix(cmd.Callback, "/"), rawToken))

	s.publishUserCreated(ctx, user, user.UserType, cmd.PhoneCode)
	s.cache.InvalidateUsers(ctx)
	return user, nil
}

// AddManager creates a manager account with a generated password that the
// owner must replace through ForcePassword.
func (s *UserCommandService) AddManager(ctx context.Context, cmd cqrs.RegisterCommand) (*models.User, error) {
	role, err := s.roles.GetByName(ctx, models.RoleManager)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, ErrRoleMissing
		}
		return nil, err
	}

	user, err := s.newUser(ctx, cmd.Email, cmd.PhoneCode, cmd.PhoneNumber)
	if err != nil {
		return nil, err
	}

	password, err := utils.GeneratePassword()
	if err != nil {
		return nil, err
	}
	user.PasswordHash, err = utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordType = models.PasswordTypeGenerated
	user.FirstName = cmd.FirstName
	user.LastName = cmd.LastName
	user.Roles = []string{role.Name}

	if err := s.create(ctx, user, []string{role.ID}); err != nil {
		return nil, err
	}

	s.send(ctx, user.Email, "You have been invited to XpressChain",
		fmt.Sprintf("Log in at %s with the password %s and set your own password.", cmd.Callback, password))

	s.publishUserCreated(ctx, user, user.UserType, cmd.PhoneCode)
	s.cache.InvalidateUsers(ctx)
	return user, nil
}

// newUser runs the checks shared by every account creation path and returns
// a user populated with its identity fields.
func (s *UserCommandService) newUser(ctx context.Context, email, phoneCode, phoneNumber string) (*models.User, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if phoneCode == "" {
		return nil, ErrPhoneCodeRequired
	}
	if !strings.Contains(phoneCode, "+") {
		return nil, ErrPhoneCodeInvalid
	}

	phone := utils.FormatPhoneNumber(phoneCode, phoneNumber)
	exists, err := s.users.PhoneExists(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	now := s.now()
	return &models.User{
		ID:          utils.GenerateID("usr"),
		Email:       email,
		PhoneNumber: phone,
		PhoneCode:   phoneCode,
		UserType:    models.UserTypeUser,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *UserCommandService) create(ctx context.Context, user *models.User, roleIDs []string) error {
	verification := &models.Verification{
		ID:       utils.GenerateID("ver"),
		UserID:   user.ID,
		Basic:    models.VerificationPending,
		Identity: models.VerificationPending,
		Address:  models.VerificationPending,
		Face:     models.VerificationPending,
		SMS:      false,
		Email:    user.EmailCheck,
	}

	err := s.users.Create(ctx, user, verification, roleIDs)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailExists
	case errors.Is(err, repository.ErrPhoneExists):
		return ErrPhoneExists
	}
	return err
}

func (s *UserCommandService) publishUserCreated(ctx context.Context, user *models.User, userType, phoneCode string) {
	err := s.publisher.Publish(ctx, events.UserCreated, events.UserCreatedEvent{
		User: events.UserPayload{
			ID:          user.ID,
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			PhoneNumber: user.PhoneNumber,
			PhoneCode:   user.PhoneCode,
			UserType:    user.UserType,
		},
		UserType:  userType,
		PhoneCode: phoneCode,
	})
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("failed to publish user.created event")
	}
}

// send delivers a mail; failures are logged and never fail the request.
func (s *UserCommandService) send(ctx context.Context, to, subject, body string) {
	if err := s.mailer.Send(ctx, mail.Message{To: to, Subject: subject, Body: body}); err != nil {
		log.WithError(err).WithField("subject", subject).Error("failed to send mail")
	}
}

// SetEmailCheck turns the login code requirement on or off for a user.
func (s *UserCommandService) SetEmailCheck(ctx context.Context, userID string, enabled bool) error {
	if err := s.users.SetEmailCheck(ctx, userID, enabled); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// AttachRoles gives the user every named role it does not already hold.
func (s *UserCommandService) AttachRoles(ctx context.Context, cmd cqrs.AttachRoleCommand) (*models.User, error) {
	user, err := s.getUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	var roleIDs []string
	for _, name := range cmd.Roles {
		name = strings.TrimSpace(name)
		if name == "" || user.HasRole(name) {
			continue
		}
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
			}
			return nil, err
		}
		roleIDs = append(roleIDs, role.ID)
		user.Roles = append(user.Roles, role.Name)
	}

	if len(roleIDs) > 0 {
		if err := s.users.AttachRoles(ctx, user.ID, roleIDs); err != nil {
			return nil, err
		}
		s.cache.InvalidateUser(ctx, user.ID)
	}
	return user, nil
}

func (s *UserCommandService) DetachRole(ctx context.Context, cmd cqrs.DetachRoleCommand) (*models.User, error) {
	user, err := s.getUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.GetByName(ctx, cmd.RoleName)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, cmd.RoleName)
		}
		return nil, err
	}
	if !user.HasRole(role.Name) {
		return nil, ErrRoleNotHeld
	}

	if err := s.users.DetachRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}
	remaining := user.Roles[:0]
	for _, name := range user.Roles {
		if name != role.Name {
			remaining = append(remaining, name)
		}
	}
	user.Roles = remaining

	s.cache.InvalidateUser(ctx, user.ID)
	return user, nil
}

func (s *UserCommandService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
