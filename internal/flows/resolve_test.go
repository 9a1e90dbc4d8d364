package flows

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// fakeTokens treats any token it minted or registered as valid. Claims with
// ID "expired" report as expired.
type fakeTokens struct {
	access  map[string]*jwt.Claims
	refresh map[string]*jwt.Claims
	n       int
	mintErr error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{access: map[string]*jwt.Claims{}, refresh: map[string]*jwt.Claims{}}
}

func claims(sub, id string) *jwt.Claims {
	return &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: sub, ID: id}}
}

func (f *fakeTokens) ParseAccess(tokenStr string, _ bool) (*jwt.Claims, error) {
	c, ok := f.access[tokenStr]
	if !ok {
		return nil, errors.New("bad access token")
	}
	return c, nil
}

func (f *fakeTokens) ParseRefresh(tokenStr string) (*jwt.Claims, error) {
	c, ok := f.refresh[tokenStr]
	if !ok || c.ID == "expired" {
		return nil, errors.New("bad refresh token")
	}
	return c, nil
}

func (f *fakeTokens) Expired(c *jwt.Claims) bool { return c.ID == "expired" }

func (f *fakeTokens) CreateAccess(userID string) (string, error) {
	if f.mintErr != nil {
		return "", f.mintErr
	}
	f.n++
	tok := fmt.Sprintf("access-%d", f.n)
	f.access[tok] = claims(userID, "")
	return tok, nil
}

func (f *fakeTokens) CreateRefresh(pairedAccess string) (string, error) {
	if f.mintErr != nil {
		return "", f.mintErr
	}
	f.n++
	tok := fmt.Sprintf("refresh-%d", f.n)
	f.refresh[tok] = claims(pairedAccess, "")
	return tok, nil
}

type fakeStore struct {
	records   map[string]string
	calls     []string
	getErr    error
	rotateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, userID string) (string, error) {
	s.calls = append(s.calls, "get")
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.records[userID]
	if !ok {
		return "", session.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) Set(_ context.Context, userID, refreshToken string) error {
	s.calls = append(s.calls, "set")
	s.records[userID] = refreshToken
	return nil
}

func (s *fakeStore) Delete(_ context.Context, userID string) error {
	s.calls = append(s.calls, "delete")
	delete(s.records, userID)
	return nil
}

func (s *fakeStore) Rotate(_ context.Context, userID, expected, next string) error {
	s.calls = append(s.calls, "rotate")
	if s.rotateErr != nil {
		return s.rotateErr
	}
	if s.records[userID] != expected {
		delete(s.records, userID)
		return session.ErrRefreshMismatch
	}
	s.records[userID] = next
	return nil
}

type fixture struct {
	tokens  *fakeTokens
	store   *fakeStore
	state   UserState
	lookups int
}

// expiredPair registers an expired access token for u1 and a live refresh
// token paired to it, and stores the refresh token as current.
func newFixture() (*fixture, string, string) {
	f := &fixture{tokens: newFakeTokens(), store: newFakeStore(), state: UserActive}
	f.tokens.access["old-access"] = claims("u1", "expired")
	f.tokens.refresh["old-refresh"] = claims("old-access", "")
	f.store.records["u1"] = "old-refresh"
	return f, "old-access", "old-refresh"
}

func (f *fixture) deps(atomic bool) ResolveDeps {
	return ResolveDeps{
		Tokens: f.tokens,
		Store:  f.store,
		LookupUser: func(_ context.Context, _ string) (UserState, error) {
			f.lookups++
			return f.state, nil
		},
		AtomicRotation: atomic,
	}
}

func TestRunResolveMissingToken(t *testing.T) {
	f, access, refresh := newFixture()
	for _, pair := range [][2]string{{"", refresh}, {access, ""}, {"", ""}} {
		res, err := RunResolve(context.Background(), pair[0], pair[1], f.deps(true))
		if err != nil || res.Outcome != ResolveMissingToken {
			t.Fatalf("%q: expected ResolveMissingToken, got %v (%v)", pair, res.Outcome, err)
		}
	}
	if len(f.store.calls) != 0 || f.lookups != 0 {
		t.Fatalf("missing token must not touch store or directory: %v / %d", f.store.calls, f.lookups)
	}
}

func TestRunResolveInvalidAccess(t *testing.T) {
	f, _, refresh := newFixture()
	res, err := RunResolve(context.Background(), "garbage", refresh, f.deps(true))
	if err != nil || res.Outcome != ResolveInvalidAccess {
		t.Fatalf("expected ResolveInvalidAccess, got %v (%v)", res.Outcome, err)
	}
}

func TestRunResolveFreshAccessSkipsRefresh(t *testing.T) {
	f, _, _ := newFixture()
	f.tokens.access["fresh"] = claims("u1", "")

	res, err := RunResolve(context.Background(), "fresh", "not-even-a-token", f.deps(true))
	if err != nil || res.Outcome != ResolveAuthenticated || res.UserID != "u1" {
		t.Fatalf("expected authenticated u1, got %+v (%v)", res, err)
	}
	if len(f.store.calls) != 0 {
		t.Fatalf("fresh access must not touch the store: %v", f.store.calls)
	}
}

func TestRunResolveInvalidRefresh(t *testing.T) {
	f, access, _ := newFixture()
	f.tokens.refresh["dead-refresh"] = claims(access, "expired")

	for _, refresh := range []string{"garbage", "dead-refresh"} {
		res, err := RunResolve(context.Background(), access, refresh, f.deps(true))
		if err != nil || res.Outcome != ResolveInvalidRefresh {
			t.Fatalf("%s: expected ResolveInvalidRefresh, got %v (%v)", refresh, res.Outcome, err)
		}
	}
	if len(f.store.calls) != 0 {
		t.Fatalf("invalid refresh must not touch the store: %v", f.store.calls)
	}
}

func TestRunResolveMismatch(t *testing.T) {
	f, access, _ := newFixture()
	f.tokens.refresh["other-refresh"] = claims("some-other-access", "")

	res, err := RunResolve(context.Background(), access, "other-refresh", f.deps(true))
	if err != nil || res.Outcome != ResolveMismatch {
		t.Fatalf("expected ResolveMismatch, got %v (%v)", res.Outcome, err)
	}
	if len(f.store.calls) != 0 {
		t.Fatalf("mismatch must not touch the store: %v", f.store.calls)
	}
}

func TestRunResolveReuseDeletesRecord(t *testing.T) {
	f, access, refresh := newFixture()
	f.store.records["u1"] = "newer-refresh"

	res, err := RunResolve(context.Background(), access, refresh, f.deps(true))
	if err != nil || res.Outcome != ResolveReused {
		t.Fatalf("expected ResolveReused, got %v (%v)", res.Outcome, err)
	}
	if res.UserID != "u1" || res.Reason != ReuseStoreMismatch {
		t.Fatalf("expected u1/%s, got %q/%q", ReuseStoreMismatch, res.UserID, res.Reason)
	}
	if _, ok := f.store.records["u1"]; ok {
		t.Fatal("record should be revoked")
	}
	if !slices.Equal(f.store.calls, []string{"get", "delete"}) {
		t.Fatalf("unexpected store calls: %v", f.store.calls)
	}
	if f.lookups != 0 {
		t.Fatal("reuse must be decided before the user lookup")
	}
}

func TestRunResolveAbsentRecordIsReuse(t *testing.T) {
	f, access, refresh := newFixture()
	delete(f.store.records, "u1")

	res, err := RunResolve(context.Background(), access, refresh, f.deps(true))
	if err != nil || res.Outcome != ResolveReused {
		t.Fatalf("expected ResolveReused, got %v (%v)", res.Outcome, err)
	}
	if res.UserID != "u1" || res.Reason != ReuseRecordMissing {
		t.Fatalf("expected u1/%s, got %q/%q", ReuseRecordMissing, res.UserID, res.Reason)
	}
}

func TestRunResolveUserStates(t *testing.T) {
	tests := []struct {
		state UserState
		want  ResolveOutcome
	}{
		{UserMissing, ResolveUserNotFound},
		{UserSuspended, ResolveUserSuspended},
	}
	for _, tc := range tests {
		f, access, refresh := newFixture()
		f.state = tc.state

		res, err := RunResolve(context.Background(), access, refresh, f.deps(true))
		if err != nil || res.Outcome != tc.want {
			t.Fatalf("state %v: expected %v, got %v (%v)", tc.state, tc.want, res.Outcome, err)
		}
		if res.UserID != "u1" {
			t.Fatalf("state %v: expected subject u1, got %q", tc.state, res.UserID)
		}
		if !slices.Equal(f.store.calls, []string{"get"}) {
			t.Fatalf("state %v: store must not be written: %v", tc.state, f.store.calls)
		}
		if f.store.records["u1"] != refresh {
			t.Fatalf("state %v: record changed", tc.state)
		}
	}
}

func TestRunResolveRotates(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		f, access, refresh := newFixture()

		res, err := RunResolve(context.Background(), access, refresh, f.deps(atomic))
		if err != nil || res.Outcome != ResolveRotated {
			t.Fatalf("atomic=%v: expected ResolveRotated, got %v (%v)", atomic, res.Outcome, err)
		}
		if res.UserID != "u1" || res.AccessToken == "" || res.RefreshToken == "" {
			t.Fatalf("atomic=%v: incomplete result %+v", atomic, res)
		}
		if f.store.records["u1"] != res.RefreshToken {
			t.Fatalf("atomic=%v: store holds %q, want %q", atomic, f.store.records["u1"], res.RefreshToken)
		}
		if got := f.tokens.refresh[res.RefreshToken].Subject; got != res.AccessToken {
			t.Fatalf("atomic=%v: new refresh subject %q, want new access token", atomic, got)
		}
		want := "set"
		if atomic {
			want = "rotate"
		}
		if !slices.Equal(f.store.calls, []string{"get", want}) {
			t.Fatalf("atomic=%v: unexpected store calls %v", atomic, f.store.calls)
		}
	}
}

func TestRunResolveLostSwapIsReuse(t *testing.T) {
	for _, lost := range []error{session.ErrRefreshMismatch, session.ErrNotFound} {
		f, access, refresh := newFixture()
		f.store.rotateErr = lost

		res, err := RunResolve(context.Background(), access, refresh, f.deps(true))
		if err != nil || res.Outcome != ResolveReused {
			t.Fatalf("%v: expected ResolveReused, got %v (%v)", lost, res.Outcome, err)
		}
		if res.UserID != "u1" || res.Reason != ReuseCASLost {
			t.Fatalf("%v: expected u1/%s, got %q/%q", lost, ReuseCASLost, res.UserID, res.Reason)
		}
		if res.AccessToken != "" || res.RefreshToken != "" {
			t.Fatal("a lost swap must not hand out the minted pair")
		}
	}
}

func TestRunResolveDependencyErrors(t *testing.T) {
	boom := errors.New("boom")

	f, access, refresh := newFixture()
	f.store.getErr = boom
	if res, err := RunResolve(context.Background(), access, refresh, f.deps(true)); !errors.Is(err, boom) || res.Outcome != ResolveNone {
		t.Fatalf("store: expected boom with no outcome, got %v (%v)", res.Outcome, err)
	}

	f, access, refresh = newFixture()
	deps := f.deps(true)
	deps.LookupUser = func(context.Context, string) (UserState, error) { return UserMissing, boom }
	if res, err := RunResolve(context.Background(), access, refresh, deps); !errors.Is(err, boom) || res.Outcome != ResolveNone {
		t.Fatalf("lookup: expected boom with no outcome, got %v (%v)", res.Outcome, err)
	}

	f, access, refresh = newFixture()
	f.tokens.mintErr = boom
	if _, err := RunResolve(context.Background(), access, refresh, f.deps(true)); !errors.Is(err, boom) {
		t.Fatalf("mint: expected boom, got %v", err)
	}
	if f.store.records["u1"] != refresh {
		t.Fatal("a signing failure must leave the record alone")
	}

	f, access, refresh = newFixture()
	f.store.rotateErr = boom
	if _, err := RunResolve(context.Background(), access, refresh, f.deps(true)); !errors.Is(err, boom) {
		t.Fatalf("rotate: expected boom, got %v", err)
	}
}

func TestIssuePairAndLogout(t *testing.T) {
	tokens := newFakeTokens()
	store := newFakeStore()

	access, refresh, err := IssuePair(context.Background(), "u9", tokens, store)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if tokens.refresh[refresh].Subject != access {
		t.Fatal("refresh token must be paired to the access token")
	}
	if store.records["u9"] != refresh {
		t.Fatal("refresh token not recorded")
	}

	if err := RunLogout(context.Background(), "u9", store); err != nil {
		t.Fatalf("RunLogout: %v", err)
	}
	if _, ok := store.records["u9"]; ok {
		t.Fatal("record should be deleted")
	}
}

func TestNormalizeEmailAndValidate(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
	if err := (LoginInput{Email: "ada@example.com", Password: "x"}).Validate(); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}
	if err := (AccountInput{Email: "ada@example.com", Password: "short", FirstName: "A", LastName: "L"}).Validate(); err == nil {
		t.Fatal("short password accepted")
	}
}
