package command

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/shared/events"
)

// HandleCountryFound attaches the country resolved by the resource service
// to a user that has none. The country row is upserted on its name so the
// stored id is always the one the user points at.
func (s *UserCommandService) HandleCountryFound(ctx context.Context, msg *events.Message) error {
	var evt events.CountryFoundEvent
	if err := msg.Decode(&evt); err != nil {
		log.WithError(err).WithField("event_id", msg.Event.ID).Warn("dropping malformed country.found event")
		return msg.Ack(ctx)
	}

	user, err := s.users.GetByID(ctx, evt.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		log.WithField("user_id", evt.ID).Warn("country.found for unknown user")
		return msg.Ack(ctx)
	}
	if err != nil {
		return err
	}

	if user.CountryID == "" && evt.Country.Name != "" {
		country, err := s.countries.Upsert(ctx, &evt.Country)
		if err != nil {
			return fmt.Errorf("failed to save country %s: %w", evt.Country.Name, err)
		}
		updated, err := s.users.SetCountry(ctx, user.ID, country.ID)
		if err != nil {
			return err
		}
		if updated {
			s.cache.InvalidateUser(ctx, user.ID)
			log.WithFields(log.Fields{"user_id": user.ID, "country": country.Name}).Info("user country set")
		}
	}

	return msg.Ack(ctx)
}

// HandleLocationSaved only acknowledges; nothing in identity depends on
// saved places yet.
func (s *UserCommandService) HandleLocationSaved(ctx context.Context, msg *events.Message) error {
	log.WithField("event_id", msg.Event.ID).Debug("location.saved received")
	return msg.Ack(ctx)
}
