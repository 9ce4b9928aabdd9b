package command

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/events"
)

// HandleCountryFound copies the resolved country into the sports catalog so
// matches can be played in it.
func (s *SportsCommandService) HandleCountryFound(ctx context.Context, msg *events.Message) error {
	var evt events.CountryFoundEvent
	if err := msg.Decode(&evt); err != nil {
		log.WithError(err).WithField("event_id", msg.Event.ID).Warn("dropping malformed country.found event")
		return msg.Ack(ctx)
	}
	if evt.Country.Name == "" {
		log.WithField("event_id", msg.Event.ID).Warn("country.found without a country name")
		return msg.Ack(ctx)
	}

	country, err := s.countries.Upsert(ctx, &evt.Country)
	if err != nil {
		return err
	}
	s.cache.InvalidateCountries(ctx, country.ID, country.PhoneCode)

	log.WithFields(log.Fields{"country_id": country.ID, "name": country.Name}).Debug("country stored")
	return msg.Ack(ctx)
}
