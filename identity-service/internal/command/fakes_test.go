package command

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/shared/mail"
	"github.com/xpch/platform/shared/models"
)

// ---- in-memory stores ----

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	roles map[string][]string
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}, roles: map[string][]string{}}
}

func (m *memUsers) clone(u *models.User) *models.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := m.clone(u)
			c.Roles = nil
			for _, id := range m.roles[u.ID] {
				c.Roles = append(c.Roles, strings.TrimPrefix(id, "rol-"))
			}
			return c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) GetByActivationToken(_ context.Context, hashed string, now time.Time) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return u.ActivationToken == hashed && u.ActivationExpire != nil && u.ActivationExpire.After(now)
	})
}

func (m *memUsers) GetByResetToken(_ context.Context, hashed string, now time.Time) (*models.User, error) {
	return m.find(func(u *models.User) bool {
		return u.ResetPasswordToken == hashed && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
	})
}

func (m *memUsers) PhoneExists(_ context.Context, phone string) (bool, error) {
	_, err := m.find(func(u *models.User) bool { return phone != "" && u.PhoneNumber == phone })
	return err == nil, nil
}

func (m *memUsers) Create(_ context.Context, user *models.User, _ *models.Verification, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	m.users[user.ID] = m.clone(user)
	m.roles[user.ID] = append([]string(nil), roleIDs...)
	return nil
}

func (m *memUsers) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	m.users[user.ID] = m.clone(user)
	return nil
}

func (m *memUsers) SetCountry(_ context.Context, userID, countryID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.CountryID != "" {
		return false, nil
	}
	u.CountryID = countryID
	return true, nil
}

func (m *memUsers) SetEmailCheck(_ context.Context, userID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.EmailCheck = enabled
	return nil
}

func (m *memUsers) UnlockExpired(_ context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, u := range m.users {
		if u.IsLocked && u.LockedAt != nil && !u.LockedAt.After(cutoff) {
			u.IsLocked = false
			u.LoginLimit = 0
			u.LockedAt = nil
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (m *memUsers) AttachRoles(_ context.Context, userID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = append(m.roles[userID], roleIDs...)
	return nil
}

func (m *memUsers) DetachRole(_ context.Context, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.roles[userID][:0]
	for _, id := range m.roles[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.roles[userID] = kept
	return nil
}

type memRoles struct {
	roles map[string]*models.Role
}

func newMemRoles(names ...string) *memRoles {
	m := &memRoles{roles: map[string]*models.Role{}}
	for _, n := range names {
		m.roles[n] = &models.Role{ID: "rol-" + n, Name: n}
	}
	return m
}

func (m *memRoles) GetByName(_ context.Context, name string) (*models.Role, error) {
	if r, ok := m.roles[name]; ok {
		return r, nil
	}
	return nil, repository.ErrRoleNotFound
}

func (m *memRoles) EnsureDefaults(context.Context) error {
	for _, n := range []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager, models.RoleUser} {
		if _, ok := m.roles[n]; !ok {
			m.roles[n] = &models.Role{ID: "rol-" + n, Name: n}
		}
	}
	return nil
}

type memCountries struct {
	byName map[string]*models.Country
}

func (m *memCountries) Upsert(_ context.Context, c *models.Country) (*models.Country, error) {
	if existing, ok := m.byName[c.Name]; ok {
		return existing, nil
	}
	saved := *c
	saved.ID = "cty-" + c.Name
	m.byName[c.Name] = &saved
	return &saved, nil
}

// ---- recorders ----

type recordingCache struct {
	users     []string
	listCalls int
}

func (r *recordingCache) InvalidateUser(_ context.Context, id string) { r.users = append(r.users, id) }
func (r *recordingCache) InvalidateUsers(context.Context)            { r.listCalls++ }

type published struct {
	subject string
	data    any
}

type recordingPublisher struct {
	events []published
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, data any) error {
	r.events = append(r.events, published{subject: subject, data: data})
	return r.err
}

type recordingMailer struct {
	sent []mail.Message
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type fixture struct {
	svc       *UserCommandService
	users     *memUsers
	roles     *memRoles
	countries *memCountries
	cache     *recordingCache
	publisher *recordingPublisher
	mailer    *recordingMailer
	clock     time.Time
}

func newFixture() *fixture {
	f := &fixture{
		users:     newMemUsers(),
		roles:     newMemRoles(models.RoleUser, models.RoleManager, models.RoleAdmin, models.RoleSuperAdmin),
		countries: &memCountries{byName: map[string]*models.Country{}},
		cache:     &recordingCache{},
		publisher: &recordingPublisher{},
		mailer:    &recordingMailer{},
		clock:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewUserCommandService(f.users, f.roles, f.countries, f.cache, f.publisher, f.mailer)
	f.svc.now = func() time.Time { return f.clock }
	return f
}
