package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	goGate "github.com/MrEthical07/goGate"
)

// ErrUserNotFound is returned by updates addressed to an unknown user id.
var ErrUserNotFound = errors.New("user not found")

// Memory is an in-process directory. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]goGate.UserRecord
	byEmail map[string]string
	now     func() time.Time
}

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]goGate.UserRecord),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (m *Memory) FindByID(_ context.Context, userID string) (*goGate.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*goGate.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := m.byID[id]
	return &u, nil
}

// CreateUser stores a new account. A taken email or id returns
// goGate.ErrAccountExists.
func (m *Memory) CreateUser(_ context.Context, in goGate.CreateUserInput) (*goGate.UserRecord, error) {
	if in.ID == "" || in.Email == "" {
		return nil, errors.New("user id and email required")
	}
	status := in.Status
	if status == "" {
		status = goGate.AccountActive
	}
	if !status.Valid() {
		return nil, errors.New("invalid account status")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[in.Email]; taken {
		return nil, goGate.ErrAccountExists
	}
	if _, taken := m.byID[in.ID]; taken {
		return nil, goGate.ErrAccountExists
	}

	now := m.now().UTC()
	u := goGate.UserRecord{
		ID:           in.ID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return &u, nil
}

func (m *Memory) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = m.now().UTC()
	m.byID[userID] = u
	return nil
}

// SetStatus changes an account's status. The resolver sees the change on the
// user's next rotation.
func (m *Memory) SetStatus(_ context.Context, userID string, status goGate.AccountStatus) error {
	if !status.Valid() {
		return errors.New("invalid account status")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Status = status
	u.UpdatedAt = m.now().UTC()
	m.byID[userID] = u
	return nil
}

// Len returns the number of stored accounts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
