package command

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/models"
)

type ShopperStore interface {
	Upsert(ctx context.Context, shopper *models.Shopper) error
}

type Cache interface {
	InvalidateShoppers(ctx context.Context)
}

// ShopperCommandService keeps the storefront's shopper table in step with
// identity users.
type ShopperCommandService struct {
	shoppers ShopperStore
	cache    Cache
}

func NewShopperCommandService(shoppers ShopperStore, cache Cache) *ShopperCommandService {
	return &ShopperCommandService{shoppers: shoppers, cache: cache}
}

// HandleUserCreated stores the new user as a shopper. Events without a user
// id are acknowledged and dropped; store failures leave the message pending.
func (s *ShopperCommandService) HandleUserCreated(ctx context.Context, msg *events.Message) error {
	var evt events.UserCreatedEvent
	if err := msg.Decode(&evt); err != nil {
		log.WithError(err).WithField("event_id", msg.Event.ID).Warn("dropping malformed user.created event")
		return msg.Ack(ctx)
	}
	if evt.User.ID == "" {
		log.WithField("event_id", msg.Event.ID).Warn("user.created without a user id")
		return msg.Ack(ctx)
	}

	userType := shopperType(evt)
	phoneCode := evt.PhoneCode
	if phoneCode == "" {
		phoneCode = evt.User.PhoneCode
	}

	shopper := &models.Shopper{
		ID:          evt.User.ID,
		Email:       strings.ToLower(evt.User.Email),
		PhoneNumber: evt.User.PhoneNumber,
		PhoneCode:   phoneCode,
		UserType:    userType,
	}
	if err := s.shoppers.Upsert(ctx, shopper); err != nil {
		return err
	}
	s.cache.InvalidateShoppers(ctx)

	log.WithFields(log.Fields{"user_id": shopper.ID, "user_type": shopper.UserType}).Info("shopper stored")
	return msg.Ack(ctx)
}

// shopperType picks the stored user type. The top-level type wins, except
// that a superadmin account stays superadmin however it was announced.
func shopperType(evt events.UserCreatedEvent) string {
	switch {
	case evt.User.UserType == models.UserTypeSuperAdmin:
		return models.UserTypeSuperAdmin
	case evt.UserType != "":
		return evt.UserType
	case evt.User.UserType != "":
		return evt.User.UserType
	}
	return models.UserTypeUser
}
