package flows

import (
	"context"
	"errors"
	"testing"
)

func accountDeps(hash func(string) (string, error)) (AccountDeps, *int) {
	created := 0
	return AccountDeps{
		Enabled: true,
		FindByEmail: func(context.Context, string) (bool, error) {
			return false, nil
		},
		HashPassword: hash,
		NewUserID:    func() string { return "u1" },
		CreateUser: func(context.Context, NewAccount) error {
			created++
			return nil
		},
	}, &created
}

func TestRunCreateAccountHashFailureIsInternal(t *testing.T) {
	boom := errors.New("entropy exhausted")
	deps, created := accountDeps(func(string) (string, error) { return "", boom })

	res := RunCreateAccount(context.Background(), AccountInput{
		Email:     "ada@example.com",
		Password:  "correct-password-123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, deps)
	if res.Failure != AccountFailureInternal || !errors.Is(res.Err, boom) {
		t.Fatalf("expected internal failure wrapping hash error, got %v (%v)", res.Failure, res.Err)
	}
	if *created != 0 {
		t.Fatal("account must not be persisted without a hash")
	}
}

func TestRunCreateAccountInvalidInput(t *testing.T) {
	deps, _ := accountDeps(func(string) (string, error) {
		t.Fatal("hash must not run for invalid input")
		return "", nil
	})

	res := RunCreateAccount(context.Background(), AccountInput{Email: "not-an-email", Password: "x"}, deps)
	if res.Failure != AccountFailureInvalid {
		t.Fatalf("expected invalid failure, got %v", res.Failure)
	}
}

func TestRunCreateAccountPersists(t *testing.T) {
	deps, created := accountDeps(func(p string) (string, error) { return "hashed:" + p, nil })

	res := RunCreateAccount(context.Background(), AccountInput{
		Email:     "  Ada@Example.com ",
		Password:  "correct-password-123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, deps)
	if res.Failure != AccountFailureNone || res.UserID != "u1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if *created != 1 {
		t.Fatalf("expected one CreateUser call, got %d", *created)
	}
}
