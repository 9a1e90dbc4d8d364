package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	goGate "github.com/MrEthical07/goGate"
)

var _ goGate.UserDirectory = (*Memory)(nil)
var _ goGate.UserDirectory = (*Postgres)(nil)

func TestMemoryCreateAndFind(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u, err := m.CreateUser(ctx, goGate.CreateUserInput{
		ID:           "u1",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.Status != goGate.AccountActive {
		t.Fatalf("expected default ACTIVE, got %s", u.Status)
	}
	if u.CreatedAt.IsZero() || !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Fatal("expected timestamps set")
	}

	byID, err := m.FindByID(ctx, "u1")
	if err != nil || byID == nil || byID.Email != "ada@example.com" {
		t.Fatalf("FindByID = %+v, %v", byID, err)
	}
	byEmail, err := m.FindByEmail(ctx, "ada@example.com")
	if err != nil || byEmail == nil || byEmail.ID != "u1" {
		t.Fatalf("FindByEmail = %+v, %v", byEmail, err)
	}

	// Returned records are copies.
	byID.Email = "mutated@example.com"
	again, _ := m.FindByID(ctx, "u1")
	if again.Email != "ada@example.com" {
		t.Fatal("caller mutation leaked into directory")
	}
}

func TestMemoryAbsentIsNilNil(t *testing.T) {
	m := NewMemory()

	u, err := m.FindByID(context.Background(), "missing")
	if u != nil || err != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", u, err)
	}
	u, err = m.FindByEmail(context.Background(), "missing@example.com")
	if u != nil || err != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", u, err)
	}
}

func TestMemoryDuplicateEmail(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := goGate.CreateUserInput{ID: "u1", Email: "ada@example.com"}
	if _, err := m.CreateUser(ctx, in); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	in.ID = "u2"
	if _, err := m.CreateUser(ctx, in); !errors.Is(err, goGate.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestMemoryConcurrentCreateSingleWinner(t *testing.T) {
	m := NewMemory()

	const workers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.CreateUser(context.Background(), goGate.CreateUserInput{
				ID:    string(rune('a' + i)),
				Email: "race@example.com",
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 || m.Len() != 1 {
		t.Fatalf("expected one account, got wins=%d len=%d", wins, m.Len())
	}
}

func TestMemoryUpdates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.CreateUser(ctx, goGate.CreateUserInput{ID: "u1", Email: "ada@example.com", PasswordHash: "old"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := m.UpdatePasswordHash(ctx, "u1", "new"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}
	if err := m.SetStatus(ctx, "u1", goGate.AccountSuspended); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	u, _ := m.FindByID(ctx, "u1")
	if u.PasswordHash != "new" || u.Status != goGate.AccountSuspended {
		t.Fatalf("unexpected record %+v", u)
	}

	if err := m.UpdatePasswordHash(ctx, "nope", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := m.SetStatus(ctx, "u1", "DELETED"); err == nil {
		t.Fatal("expected invalid status rejected")
	}
}
