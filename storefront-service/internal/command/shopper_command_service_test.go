package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/models"
)

type memShoppers struct {
	rows map[string]models.Shopper
	err  error
}

func (m *memShoppers) Upsert(_ context.Context, s *models.Shopper) error {
	if m.err != nil {
		return m.err
	}
	m.rows[s.ID] = *s
	return nil
}

type countingCache struct{ n int }

func (c *countingCache) InvalidateShoppers(context.Context) { c.n++ }

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

func TestHandleUserCreated(t *testing.T) {
	tests := []struct {
		name         string
		payload      any
		storeErr     error
		wantErr      bool
		wantAcks     int
		wantShopper  *models.Shopper
		wantInvalids int
	}{
		{
			name: "stores shopper",
			payload: events.UserCreatedEvent{
				User:      events.UserPayload{ID: "usr-1", Email: "Ada@Example.com", PhoneNumber: "2348031234567"},
				UserType:  "user",
				PhoneCode: "+234",
			},
			wantAcks:     1,
			wantShopper:  &models.Shopper{ID: "usr-1", Email: "ada@example.com", PhoneNumber: "2348031234567", PhoneCode: "+234", UserType: "user"},
			wantInvalids: 1,
		},
		{
			name: "falls back to payload user type",
			payload: events.UserCreatedEvent{
				User: events.UserPayload{ID: "usr-2", Email: "admin@example.com", UserType: "admin", PhoneCode: "+233"},
			},
			wantAcks:     1,
			wantShopper:  &models.Shopper{ID: "usr-2", Email: "admin@example.com", PhoneCode: "+233", UserType: "admin"},
			wantInvalids: 1,
		},
		{
			name: "republished superadmin keeps its type",
			payload: events.UserCreatedEvent{
				User:      events.UserPayload{ID: "usr-root", Email: "root@example.com", UserType: "superadmin", PhoneCode: "+234"},
				UserType:  "admin",
				PhoneCode: "+234",
			},
			wantAcks:     1,
			wantShopper:  &models.Shopper{ID: "usr-root", Email: "root@example.com", PhoneCode: "+234", UserType: "superadmin"},
			wantInvalids: 1,
		},
		{
			name:     "malformed payload is acked",
			payload:  "not an event",
			wantAcks: 1,
		},
		{
			name:     "missing id is acked",
			payload:  events.UserCreatedEvent{User: events.UserPayload{Email: "x@example.com"}},
			wantAcks: 1,
		},
		{
			name:     "store failure stays pending",
			payload:  events.UserCreatedEvent{User: events.UserPayload{ID: "usr-3"}},
			storeErr: errors.New("db down"),
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memShoppers{rows: map[string]models.Shopper{}, err: tt.storeErr}
			cache := &countingCache{}
			svc := NewShopperCommandService(store, cache)

			msg, acks := newTestMessage(t, tt.payload)
			err := svc.HandleUserCreated(context.Background(), msg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAcks, *acks)
			assert.Equal(t, tt.wantInvalids, cache.n)
			if tt.wantShopper != nil {
				assert.Equal(t, *tt.wantShopper, store.rows[tt.wantShopper.ID])
			} else {
				assert.Empty(t, store.rows)
			}
		})
	}
}
