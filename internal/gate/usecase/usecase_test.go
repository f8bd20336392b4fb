package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type fakeStore struct {
	mu         sync.Mutex
	challenges map[string]entity.Challenge
	getCalls   int
	failWith   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{challenges: make(map[string]entity.Challenge)}
}

func (f *fakeStore) UpsertChallenge(_ context.Context, ch entity.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.challenges[ch.Identity] = ch
	return nil
}

func (f *fakeStore) GetChallengeByIdentity(_ context.Context, identity string) (*entity.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}

	ch, ok := f.challenges[identity]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &ch, nil
}

func (f *fakeStore) DeleteChallenge(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	delete(f.challenges, identity)
	return nil
}

func (f *fakeStore) ConsumeChallenge(_ context.Context, identity string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return false, f.failWith
	}

	ch, ok := f.challenges[identity]
	if !ok || !ch.Pending {
		return false, nil
	}
	delete(f.challenges, identity)
	return true, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []string
	failWith error
}

func (f *fakeNotifier) SendCode(_ context.Context, identity, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, code)
	return nil
}

func (f *fakeNotifier) lastCode(t *testing.T) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.sent) == 0 {
		t.Fatal("no code was sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type seqNumberID struct{ n int64 }

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type seqStringID struct{ n int }

func (s *seqStringID) Generate() string {
	s.n++
	return fmt.Sprintf("challenge-token-%04d", s.n)
}

type harness struct {
	uc       *Usecase
	store    *fakeStore
	notifier *fakeNotifier
	clock    *fakeClock
	jwt      jwt.JWT
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("building validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  gate:\n    challenge_ttl_minutes: 5\n"))
	if err != nil {
		t.Fatalf("building config: %v", err)
	}

	gen, err := otp.NewNumeric(otp.DefaultDigits)
	if err != nil {
		t.Fatalf("building otp generator: %v", err)
	}

	clk := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"),
		Issuer:    "otpgate",
		Audiences: []string{"host-pipeline"},
		TTL:       2 * time.Minute,
		Clock:     clk,
		UUID:      &seqStringID{},
	})
	if err != nil {
		t.Fatalf("building jwt: %v", err)
	}

	store := newFakeStore()
	noti := &fakeNotifier{}

	uc := New(Dependency{
		RepoDB:     store,
		Notifier:   noti,
		Validator:  v10,
		Config:     cfg,
		Bcrypt:     hash.NewBcrypt(4, ""),
		HMAC:       hash.NewHMACSHA256("hmac-test-secret"),
		OTP:        gen,
		UID:        &seqNumberID{},
		OID:        &seqStringID{},
		Clock:      clk,
		JWT:        signer,
		Instrument: instrument.NewNoop(),
	})

	return &harness{uc: uc, store: store, notifier: noti, clock: clk, jwt: signer}
}

const testIdentity = "alice@example.com"

func (h *harness) begin(t *testing.T) *BeginChallengeOutput {
	t.Helper()

	out, err := h.uc.BeginChallenge(context.Background(), BeginChallengeInput{Identity: testIdentity})
	if err != nil {
		t.Fatalf("BeginChallenge returned error: %v", err)
	}
	return out
}

func (h *harness) verify(t *testing.T, code, token string) *VerifyChallengeOutput {
	t.Helper()

	out, err := h.uc.VerifyChallenge(context.Background(), VerifyChallengeInput{
		Identity:       testIdentity,
		Code:           code,
		ChallengeToken: token,
	})
	if err != nil {
		t.Fatalf("VerifyChallenge returned error: %v", err)
	}
	return out
}

func TestBeginChallenge(t *testing.T) {
	h := newHarness(t)

	out := h.begin(t)

	code := h.notifier.lastCode(t)
	if len(code) != otp.DefaultDigits {
		t.Fatalf("expected %d digit code, got %q", otp.DefaultDigits, code)
	}

	ch, ok := h.store.challenges[testIdentity]
	if !ok {
		t.Fatal("challenge was not stored")
	}

	if !ch.Pending {
		t.Fatal("stored challenge is not pending")
	}

	if ch.CodeHash == code {
		t.Fatal("code was stored in plaintext")
	}

	if ch.TokenHash == out.ChallengeToken {
		t.Fatal("challenge token was stored in plaintext")
	}

	wantExpiry := h.clock.Now().Add(5 * time.Minute)
	if !ch.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, ch.ExpiresAt)
	}

	if !out.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected output expiry %v, got %v", wantExpiry, out.ExpiresAt)
	}
}

func TestBeginChallenge_InvalidIdentity(t *testing.T) {
	h := newHarness(t)

	for _, identity := range []string{"", "not-an-email"} {
		t.Run("identity "+identity, func(t *testing.T) {
			_, err := h.uc.BeginChallenge(context.Background(), BeginChallengeInput{Identity: identity})
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestBeginChallenge_NotifierFailureKeepsRecord(t *testing.T) {
	h := newHarness(t)
	h.notifier.failWith = fmt.Errorf("smtp connect refused")

	_, err := h.uc.BeginChallenge(context.Background(), BeginChallengeInput{Identity: testIdentity})
	if err == nil {
		t.Fatal("expected error when delivery fails, got nil")
	}

	if _, ok := h.store.challenges[testIdentity]; !ok {
		t.Fatal("challenge should remain stored when delivery fails")
	}
}

func TestBeginChallenge_ReissueReplacesCode(t *testing.T) {
	h := newHarness(t)

	first := h.begin(t)
	firstCode := h.notifier.lastCode(t)

	second := h.begin(t)
	secondCode := h.notifier.lastCode(t)

	// The replacement challenge carries a new session token, so the first
	// one no longer passes the security check.
	if out := h.verify(t, firstCode, first.ChallengeToken); out.Status != entity.VerifyStatusSecurityCheckFailed {
		t.Fatalf("expected first token to be rejected after reissue, got %v", out.Status)
	}

	if out := h.verify(t, secondCode, second.ChallengeToken); out.Status != entity.VerifyStatusSuccess {
		t.Fatalf("expected second code to succeed, got %v", out.Status)
	}
}

func TestVerifyChallenge_Success(t *testing.T) {
	h := newHarness(t)

	begin := h.begin(t)
	code := h.notifier.lastCode(t)

	out := h.verify(t, code, begin.ChallengeToken)
	if out.Status != entity.VerifyStatusSuccess {
		t.Fatalf("expected success, got %v", out.Status)
	}

	claims, err := h.jwt.Verify(out.Assertion)
	if err != nil {
		t.Fatalf("assertion did not verify: %v", err)
	}
	if claims.Identity() != testIdentity {
		t.Fatalf("expected assertion for %q, got %q", testIdentity, claims.Identity())
	}

	t.Run("replay is rejected", func(t *testing.T) {
		out := h.verify(t, code, begin.ChallengeToken)
		if out.Status != entity.VerifyStatusNoChallenge {
			t.Fatalf("expected no challenge on replay, got %v", out.Status)
		}
	})
}

func TestVerifyChallenge_WrongCodeKeepsChallenge(t *testing.T) {
	h := newHarness(t)

	begin := h.begin(t)
	code := h.notifier.lastCode(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	if out := h.verify(t, wrong, begin.ChallengeToken); out.Status != entity.VerifyStatusInvalidCode {
		t.Fatalf("expected invalid code, got %v", out.Status)
	}

	// A failed attempt must not consume the challenge.
	if out := h.verify(t, code, begin.ChallengeToken); out.Status != entity.VerifyStatusSuccess {
		t.Fatalf("expected success after failed attempt, got %v", out.Status)
	}
}

func TestVerifyChallenge_MalformedCode(t *testing.T) {
	h := newHarness(t)
	begin := h.begin(t)

	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		t.Run("code "+code, func(t *testing.T) {
			if out := h.verify(t, code, begin.ChallengeToken); out.Status != entity.VerifyStatusInvalidCode {
				t.Fatalf("expected invalid code for %q, got %v", code, out.Status)
			}
		})
	}
}

func TestVerifyChallenge_Expired(t *testing.T) {
	h := newHarness(t)

	begin := h.begin(t)
	code := h.notifier.lastCode(t)

	h.clock.advance(5*time.Minute + time.Second)

	// The right code past the window is still expired, and the attempt
	// clears the record.
	if out := h.verify(t, code, begin.ChallengeToken); out.Status != entity.VerifyStatusExpired {
		t.Fatalf("expected expired, got %v", out.Status)
	}

	if out := h.verify(t, code, begin.ChallengeToken); out.Status != entity.VerifyStatusNoChallenge {
		t.Fatalf("expected no challenge after expiry cleanup, got %v", out.Status)
	}
}

func TestVerifyChallenge_NoChallenge(t *testing.T) {
	h := newHarness(t)

	if out := h.verify(t, "123456", "some-token"); out.Status != entity.VerifyStatusNoChallenge {
		t.Fatalf("expected no challenge, got %v", out.Status)
	}
}

func TestVerifyChallenge_MissingTokenSkipsStore(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	before := h.store.getCalls

	if out := h.verify(t, "123456", ""); out.Status != entity.VerifyStatusSecurityCheckFailed {
		t.Fatalf("expected security check failed, got %v", out.Status)
	}

	if h.store.getCalls != before {
		t.Fatal("store should not be read when the token is missing")
	}
}

func TestVerifyChallenge_TokenMismatchKeepsChallenge(t *testing.T) {
	h := newHarness(t)

	h.begin(t)
	code := h.notifier.lastCode(t)

	if out := h.verify(t, code, "forged-token"); out.Status != entity.VerifyStatusSecurityCheckFailed {
		t.Fatalf("expected security check failed, got %v", out.Status)
	}

	if _, ok := h.store.challenges[testIdentity]; !ok {
		t.Fatal("token mismatch must not mutate the stored challenge")
	}
}

func TestVerifyChallenge_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.begin(t)
	h.store.failWith = fmt.Errorf("connection reset")

	_, err := h.uc.VerifyChallenge(context.Background(), VerifyChallengeInput{
		Identity:       testIdentity,
		Code:           "123456",
		ChallengeToken: "some-token",
	})
	if err == nil {
		t.Fatal("expected infrastructure error, got nil")
	}
}

func TestVerifyChallenge_OnlyOneWinner(t *testing.T) {
	h := newHarness(t)

	begin := h.begin(t)
	code := h.notifier.lastCode(t)

	const attempts = 8

	results := make(chan entity.VerifyStatus, attempts)

	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := h.uc.VerifyChallenge(context.Background(), VerifyChallengeInput{
				Identity:       testIdentity,
				Code:           code,
				ChallengeToken: begin.ChallengeToken,
			})
			if err != nil {
				t.Errorf("VerifyChallenge returned error: %v", err)
				return
			}
			results <- out.Status
		}()
	}
	wg.Wait()
	close(results)

	var successes, losers int
	for status := range results {
		switch status {
		case entity.VerifyStatusSuccess:
			successes++
		case entity.VerifyStatusNoChallenge:
			losers++
		default:
			t.Fatalf("unexpected status %v", status)
		}
	}

	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}
	if losers != attempts-1 {
		t.Fatalf("expected %d losers, got %d", attempts-1, losers)
	}
}

func TestClearChallenge(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	if err := h.uc.ClearChallenge(context.Background(), ClearChallengeInput{Identity: testIdentity}); err != nil {
		t.Fatalf("ClearChallenge returned error: %v", err)
	}

	if _, ok := h.store.challenges[testIdentity]; ok {
		t.Fatal("challenge should be removed")
	}

	t.Run("idempotent", func(t *testing.T) {
		if err := h.uc.ClearChallenge(context.Background(), ClearChallengeInput{Identity: testIdentity}); err != nil {
			t.Fatalf("clearing an absent challenge should be a no-op, got %v", err)
		}
	})
}
