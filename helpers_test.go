package goGate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mockDirectory struct {
	mu      sync.Mutex
	users   map[string]UserRecord
	byEmail map[string]string

	findErr   error
	createErr error
	updateErr error

	findByIDCalls    int
	findByEmailCalls int
	createCalls      int
	updateCalls      int
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		users:   map[string]UserRecord{},
		byEmail: map[string]string{},
	}
}

func (m *mockDirectory) add(u UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.byEmail[u.Email] = u.ID
}

func (m *mockDirectory) setStatus(id string, status AccountStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.Status = status
	m.users[id] = u
}

func (m *mockDirectory) get(id string) (UserRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

func (m *mockDirectory) FindByID(_ context.Context, userID string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByIDCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockDirectory) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByEmailCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := m.users[id]
	return &u, nil
}

func (m *mockDirectory) CreateUser(_ context.Context, in CreateUserInput) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, taken := m.byEmail[in.Email]; taken {
		return nil, ErrAccountExists
	}
	now := time.Now().UTC()
	u := UserRecord{
		ID:           in.ID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return &u, nil
}

func (m *mockDirectory) UpdatePasswordHash(_ context.Context, userID, encoded string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	u, ok := m.users[userID]
	if !ok {
		return errors.New("not found")
	}
	u.PasswordHash = encoded
	m.users[userID] = u
	return nil
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("access-secret-for-tests-0123456789")
	cfg.JWT.RefreshSecret = []byte("refresh-secret-for-tests-987654321")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Metrics.Enabled = true
	return cfg
}

type testEnv struct {
	engine *Engine
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	dir    *mockDirectory
	clock  *testClock
}

func newTestEnv(t testing.TB, mutate func(*Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	mr, rdb := newTestRedis(t)
	dir := newMockDirectory()
	clock := newTestClock()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserDirectory(dir).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, mr: mr, rdb: rdb, dir: dir, clock: clock}
}

// issue adds an ACTIVE user and puts a fresh pair on record for it.
func (env *testEnv) issue(t testing.TB, userID string) (string, string) {
	t.Helper()

	if _, ok := env.dir.get(userID); !ok {
		env.dir.add(UserRecord{ID: userID, Email: userID + "@example.com", Status: AccountActive})
	}
	access, err := env.engine.jwtManager.CreateAccess(userID)
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	refresh, err := env.engine.jwtManager.CreateRefresh(access)
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}
	if err := env.engine.sessionStore.Set(context.Background(), userID, refresh); err != nil {
		t.Fatalf("store Set failed: %v", err)
	}
	return access, refresh
}

func (env *testEnv) stored(t testing.TB, userID string) (string, bool) {
	t.Helper()

	key := env.engine.config.Session.RedisPrefix + ":" + userID
	if !env.mr.Exists(key) {
		return "", false
	}
	v, err := env.mr.Get(key)
	if err != nil {
		t.Fatalf("miniredis Get failed: %v", err)
	}
	return v, true
}
