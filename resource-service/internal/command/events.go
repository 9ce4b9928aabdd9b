package command

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/events"
)

// HandleUserCreated resolves the new user's phone code to a country and
// answers with country.found. Unknown codes are acknowledged and ignored.
func (s *ResourceCommandService) HandleUserCreated(ctx context.Context, msg *events.Message) error {
	var evt events.UserCreatedEvent
	if err := msg.Decode(&evt); err != nil {
		log.WithError(err).WithField("event_id", msg.Event.ID).Warn("dropping malformed user.created event")
		return msg.Ack(ctx)
	}

	phoneCode := evt.PhoneCode
	if phoneCode == "" {
		phoneCode = evt.User.PhoneCode
	}

	country, err := s.countries.GetByPhoneCode(ctx, phoneCode)
	if errors.Is(err, countries.ErrNotFound) {
		log.WithFields(log.Fields{"user_id": evt.User.ID, "phone_code": phoneCode}).Info("no country for phone code")
		return msg.Ack(ctx)
	}
	if err != nil {
		return err
	}

	err = s.publisher.Publish(ctx, events.CountryFound, events.CountryFoundEvent{
		ID:      evt.User.ID,
		Email:   evt.User.Email,
		Country: *country,
	})
	if err != nil {
		// Leave the message pending so the lookup is retried on redelivery.
		return fmt.Errorf("failed to publish country.found: %w", err)
	}
	return msg.Ack(ctx)
}
