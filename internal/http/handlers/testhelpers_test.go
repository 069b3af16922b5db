package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"viralgen/internal/domain"
	"viralgen/internal/infra"
	"viralgen/internal/policy"
	"viralgen/internal/relay"
	"viralgen/internal/timer"
)

var errStore = errors.New("store down")

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = "user-" + u.Email
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) List(_ context.Context) ([]domain.UserOverview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.UserOverview
	for _, u := range m.users {
		out = append(out, domain.UserOverview{User: *u, Tier: domain.TierFree, Remaining: domain.DefaultMaxCredits, Max: domain.DefaultMaxCredits})
	}
	return out, nil
}

func (m *memUsers) SetBanned(_ context.Context, id string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Banned = banned
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memRoles struct {
	mu   sync.Mutex
	tags map[string][]domain.RoleTag
	err  error
}

func (m *memRoles) ListRoles(_ context.Context, userID string) ([]domain.RoleTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.tags[userID], nil
}

func (m *memRoles) Grant(_ context.Context, userID string, tag domain.RoleTag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, t := range m.tags[userID] {
		if t == tag {
			return nil
		}
	}
	m.tags[userID] = append(m.tags[userID], tag)
	return nil
}

func (m *memRoles) Revoke(_ context.Context, userID string, tag domain.RoleTag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []domain.RoleTag
	for _, t := range m.tags[userID] {
		if t != tag {
			kept = append(kept, t)
		}
	}
	m.tags[userID] = kept
	return nil
}

func (m *memRoles) RemoveAll(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tags, userID)
	return nil
}

type memCredits struct {
	mu       sync.Mutex
	balances map[string]int
	consumes int
	err      error
}

func (m *memCredits) Get(_ context.Context, userID string) (domain.CreditBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.CreditBalance{}, m.err
	}
	if _, ok := m.balances[userID]; !ok {
		m.balances[userID] = domain.DefaultMaxCredits
	}
	return domain.CreditBalance{UserID: userID, Remaining: m.balances[userID], Max: domain.DefaultMaxCredits}, nil
}

func (m *memCredits) ConsumeOne(_ context.Context, userID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, false, m.err
	}
	m.consumes++
	remaining, ok := m.balances[userID]
	if !ok {
		remaining = domain.DefaultMaxCredits
	}
	if remaining <= 0 {
		return 0, false, nil
	}
	remaining--
	m.balances[userID] = remaining
	return remaining, true, nil
}

func (m *memCredits) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.balances[userID] = domain.DefaultMaxCredits
	return nil
}

func (m *memCredits) Remove(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.balances, userID)
	return nil
}

type memUsage struct {
	mu       sync.Mutex
	counters map[string]int
}

func (m *memUsage) Increment(_ context.Context, _ string, counters map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, delta := range counters {
		m.counters[name] += delta
	}
	return nil
}

func (m *memUsage) Summary(_ context.Context, _ int) ([]domain.UsageDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []domain.UsageDay{{
		Day:           domain.UsageDayKey(time.Now()),
		Submissions:   m.counters[domain.CounterSubmissions],
		RelayFailures: m.counters[domain.CounterRelayFailures],
		DeniedCredits: m.counters[domain.CounterDeniedCredits],
		DeniedPremium: m.counters[domain.CounterDeniedPremium],
		Signups:       m.counters[domain.CounterSignups],
	}}, nil
}

func (m *memUsage) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

type fakeRelay struct {
	mu          sync.Mutex
	submissions []domain.GenerationRequest
	err         error
}

func (f *fakeRelay) Submit(_ context.Context, req domain.GenerationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.submissions = append(f.submissions, req)
	return nil
}

func (f *fakeRelay) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submissions)
}

type testEnv struct {
	app     *App
	users   *memUsers
	roles   *memRoles
	credits *memCredits
	usage   *memUsage
	relay   *fakeRelay
}

func newTestEnv() *testEnv {
	users := &memUsers{users: map[string]*domain.User{}}
	roles := &memRoles{tags: map[string][]domain.RoleTag{}}
	credits := &memCredits{balances: map[string]int{}}
	usage := &memUsage{counters: map[string]int{}}
	rly := &fakeRelay{}
	cfg := &infra.Config{
		AppEnv:      "test",
		JWTSecret:   "test-secret",
		FreeCredits: domain.DefaultMaxCredits,
	}
	logger := zerolog.Nop()
	app := &App{
		Logger:  logger,
		Cfg:     cfg,
		Users:   users,
		Roles:   roles,
		Credits: credits,
		Usage:   usage,
		Policy:  policy.New(users, roles, credits, logger),
		Relay:   rly,
		Timers:  timer.NewStore(),
	}
	return &testEnv{app: app, users: users, roles: roles, credits: credits, usage: usage, relay: rly}
}

func (e *testEnv) addUser(id, email string, tags ...domain.RoleTag) *domain.User {
	u := &domain.User{ID: id, Email: email, PasswordHash: "x"}
	e.users.users[id] = u
	if len(tags) > 0 {
		e.roles.tags[id] = tags
	}
	return u
}

var _ RelaySubmitter = (*relay.Client)(nil)
