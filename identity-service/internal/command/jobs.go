package command

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

// UnlockAccounts releases every account that has been locked for at least
// the lock duration.
func (s *UserCommandService) UnlockAccounts(ctx context.Context) error {
	ids, err := s.users.UnlockExpired(ctx, s.now().Add(-lockDuration))
	if err != nil {
		return fmt.Errorf("failed to unlock accounts: %w", err)
	}
	for _, id := range ids {
		s.cache.InvalidateUser(ctx, id)
		log.WithField("user_id", id).Info("account unlocked")
	}
	return nil
}

// SeedSuperAdmin creates the default roles and, when it does not exist yet,
// the platform owner account.
func (s *UserCommandService) SeedSuperAdmin(ctx context.Context, email, password string) error {
	if err := s.roles.EnsureDefaults(ctx); err != nil {
		return err
	}
	if email == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	var roleIDs, roleNames []string
	for _, name := range []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleUser} {
		role, err := s.roles.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load role %s: %w", name, err)
		}
		roleIDs = append(roleIDs, role.ID)
		roleNames = append(roleNames, role.Name)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Email:        email,
		PasswordHash: hash,
		PasswordType: models.PasswordTypeSelf,
		UserType:     models.UserTypeSuperAdmin,
		IsSuper:      true,
		IsActivated:  true,
		IsActive:     true,
		Roles:        roleNames,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.create(ctx, user, roleIDs); err != nil {
		return err
	}
	log.WithField("email", email).Info("superadmin seeded")
	s.cache.InvalidateUsers(ctx)
	return nil
}

// Bootstrap seeds the platform owner and announces it on xpch.user.created.
// A failed announcement is logged and does not stop the service.
func (s *UserCommandService) Bootstrap(ctx context.Context, email, password string) error {
	if err := s.SeedSuperAdmin(ctx, email, password); err != nil {
		return err
	}
	if err := s.SyncAdminDetails(ctx, email); err != nil {
		log.WithError(err).WithField("email", email).Error("failed to republish superadmin")
	}
	return nil
}

// SyncAdminDetails republishes the superadmin on xpch.user.created so
// services that joined late learn about the account.
func (s *UserCommandService) SyncAdminDetails(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, events.UserCreated, events.UserCreatedEvent{
		User: events.UserPayload{
			ID:          user.ID,
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			PhoneNumber: user.PhoneNumber,
			PhoneCode:   user.PhoneCode,
			UserType:    user.UserType,
		},
		UserType:  models.UserTypeAdmin,
		PhoneCode: "+234",
	})
}
