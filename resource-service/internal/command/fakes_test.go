package command

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xpch/platform/resource-service/internal/repository"
	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/models"
)

type memBanks struct {
	rows map[string]*models.Bank
}

func (m *memBanks) GetByID(_ context.Context, id string) (*models.Bank, error) {
	if b, ok := m.rows[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, repository.ErrBankNotFound
}

func (m *memBanks) Create(_ context.Context, bank *models.Bank) error {
	for _, b := range m.rows {
		switch {
		case b.Name == bank.Name:
			return repository.ErrBankNameExists
		case b.Code == bank.Code:
			return repository.ErrBankCodeExists
		case b.BankID == bank.BankID:
			return repository.ErrBankIDExists
		}
	}
	c := *bank
	m.rows[bank.ID] = &c
	return nil
}

func (m *memBanks) SetEnabled(_ context.Context, id string, enabled bool) error {
	b, ok := m.rows[id]
	if !ok {
		return repository.ErrBankNotFound
	}
	b.IsEnabled = enabled
	return nil
}

func (m *memBanks) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrBankNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memBanks) Count(context.Context) (int, error) { return len(m.rows), nil }

type memCountries struct {
	rows map[string]*models.Country
}

func (m *memCountries) Upsert(_ context.Context, c *models.Country) (*models.Country, error) {
	stored := *c
	stored.ID = "cty-" + c.Code2
	m.rows[c.Name] = &stored
	return &stored, nil
}

func (m *memCountries) GetByPhoneCode(_ context.Context, code string) (*models.Country, error) {
	for _, c := range m.rows {
		if c.PhoneCode == code {
			return c, nil
		}
	}
	return nil, countries.ErrNotFound
}

func (m *memCountries) Count(context.Context) (int, error) { return len(m.rows), nil }

type recordingCache struct {
	banks     []string
	countries int
	warms     int
}

func (r *recordingCache) InvalidateBank(_ context.Context, id string) { r.banks = append(r.banks, id) }
func (r *recordingCache) InvalidateCountries(context.Context)          { r.countries++ }
func (r *recordingCache) Warm(context.Context) error {
	r.warms++
	return nil
}

type published struct {
	subject string
	data    any
}

type recordingPublisher struct {
	events []published
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, data any) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, published{subject: subject, data: data})
	return nil
}

type fixture struct {
	svc       *ResourceCommandService
	banks     *memBanks
	countries *memCountries
	cache     *recordingCache
	publisher *recordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		banks:     &memBanks{rows: map[string]*models.Bank{}},
		countries: &memCountries{rows: map[string]*models.Country{}},
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewResourceCommandService(f.banks, f.countries, f.cache, f.publisher)
	return f
}

func newTestMessage(t *testing.T, payload any) (*events.Message, *int) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	acks := 0
	msg := events.NewMessage("1-0", events.Event{ID: "evt", Subject: events.UserCreated, Data: data}, func(context.Context) error {
		acks++
		return nil
	})
	return msg, &acks
}
