package account_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonwraymond/catalogd/account"
	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/credential"
	"github.com/jonwraymond/catalogd/observe"
	"github.com/jonwraymond/catalogd/store/memory"
	"github.com/jonwraymond/catalogd/token"
)

var errStoreDown = errors.New("connection refused")

// failingStore fails every call with err.
type failingStore struct{ err error }

func (f failingStore) FindByIdentifier(context.Context, string) (account.Account, error) {
	return account.Account{}, f.err
}

func (f failingStore) Create(context.Context, account.Account) (account.Account, error) {
	return account.Account{}, f.err
}

// countingHasher records how often the dummy comparison runs.
type countingHasher struct {
	*credential.Hasher
	nothing int
}

func (h *countingHasher) VerifyNothing(ctx context.Context, secret string) bool {
	h.nothing++
	return h.Hasher.VerifyNothing(ctx, secret)
}

type fixture struct {
	store  *memory.Store
	hasher *countingHasher
	tokens *token.Service
	svc    *account.Service
}

func newFixture(t *testing.T, opts ...account.Option) *fixture {
	t.Helper()
	h, err := credential.New(credential.WithCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("credential.New() error = %v", err)
	}
	tokens, err := token.New(token.NewStaticKeyProvider([]byte("account-test-key")), time.Hour)
	if err != nil {
		t.Fatalf("token.New() error = %v", err)
	}
	f := &fixture{store: memory.New(), hasher: &countingHasher{Hasher: h}, tokens: tokens}
	f.svc = account.NewService(f.store, f.hasher, tokens, opts...)
	return f
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.SignUp(ctx, "  Reader@Example.COM ", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if a.Identifier != "reader@example.com" {
		t.Errorf("SignUp() Identifier = %q, want normalised", a.Identifier)
	}
	if a.Role != auth.RoleViewer {
		t.Errorf("SignUp() Role = %q, want %q", a.Role, auth.RoleViewer)
	}
	if a.ID == 0 {
		t.Error("SignUp() ID = 0, want assigned")
	}
	if bytes.Contains(a.PasswordHash, []byte("hunter22")) {
		t.Error("SignUp() stored the plaintext secret")
	}
	if !f.hasher.Verify(ctx, "hunter22", a.PasswordHash) {
		t.Error("stored hash does not verify the original secret")
	}
}

func TestSignUp_DefaultRoleOption(t *testing.T) {
	f := newFixture(t, account.WithDefaultRole(auth.RoleEditor))
	a, err := f.svc.SignUp(context.Background(), "ed@example.com", "pw")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if a.Role != auth.RoleEditor {
		t.Errorf("SignUp() Role = %q, want editor", a.Role)
	}
}

func TestSignUp_Errors(t *testing.T) {
	tests := []struct {
		name       string
		store      account.Store
		identifier string
		secret     string
		wantErr    error
	}{
		{name: "empty identifier", identifier: " ", secret: "pw", wantErr: account.ErrInvalidInput},
		{name: "not an email", identifier: "reader", secret: "pw", wantErr: account.ErrInvalidInput},
		{name: "display name form", identifier: "Reader <r@example.com>", secret: "pw", wantErr: account.ErrInvalidInput},
		{name: "empty secret", identifier: "r@example.com", secret: "", wantErr: account.ErrInvalidInput},
		{name: "secret too long", identifier: "r@example.com", secret: strings.Repeat("x", 73), wantErr: account.ErrInvalidInput},
		{name: "store failure", store: failingStore{err: errStoreDown}, identifier: "r@example.com", secret: "pw", wantErr: account.ErrStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := f.svc
			if tt.store != nil {
				svc = account.NewService(tt.store, f.hasher, f.tokens)
			}
			_, err := svc.SignUp(context.Background(), tt.identifier, tt.secret)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SignUp() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignUp_StoreFailureKeepsCause(t *testing.T) {
	f := newFixture(t)
	svc := account.NewService(failingStore{err: errStoreDown}, f.hasher, f.tokens)
	_, err := svc.SignUp(context.Background(), "r@example.com", "pw")
	if !errors.Is(err, errStoreDown) {
		t.Errorf("SignUp() error = %v, want cause %v", err, errStoreDown)
	}
}

func TestSignUp_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.SignUp(ctx, "dup@example.com", "first"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	_, err := f.svc.SignUp(ctx, "DUP@example.com", "second")
	if !errors.Is(err, account.ErrDuplicateIdentifier) {
		t.Fatalf("SignUp() error = %v, want %v", err, account.ErrDuplicateIdentifier)
	}
	if got := account.Reason(err); got != "duplicate_identifier" {
		t.Errorf("Reason() = %q, want duplicate_identifier", got)
	}

	// The original credentials still work.
	if _, err := f.svc.SignIn(ctx, "dup@example.com", "first"); err != nil {
		t.Errorf("SignIn() after duplicate error = %v", err)
	}
	if f.store.Len() != 1 {
		t.Errorf("store Len() = %d, want 1", f.store.Len())
	}
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.SignUp(ctx, "reader@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	res, err := f.svc.SignIn(ctx, "Reader@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("SignIn() AccessToken is empty")
	}

	claims, err := f.tokens.Verify(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.SubjectID != created.ID || claims.Identifier != "reader@example.com" || claims.Role != "viewer" {
		t.Errorf("claims = %+v, want id %d reader@example.com viewer", claims, created.ID)
	}
	if !claims.ExpiresAt.Equal(res.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", res.ExpiresAt, claims.ExpiresAt)
	}
}

func TestSignIn_UniformFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.SignUp(ctx, "reader@example.com", "hunter22"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	_, unknownErr := f.svc.SignIn(ctx, "ghost@example.com", "hunter22")
	_, wrongErr := f.svc.SignIn(ctx, "reader@example.com", "wrong")

	for name, err := range map[string]error{"unknown identifier": unknownErr, "wrong secret": wrongErr} {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("%s: error = %v, want %v", name, err, auth.ErrInvalidCredentials)
		}
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("messages differ: %q vs %q", unknownErr, wrongErr)
	}
	if f.hasher.nothing != 1 {
		t.Errorf("dummy comparisons = %d, want 1", f.hasher.nothing)
	}
}

func TestSignIn_StoreFailure(t *testing.T) {
	f := newFixture(t)
	svc := account.NewService(failingStore{err: errStoreDown}, f.hasher, f.tokens)

	_, err := svc.SignIn(context.Background(), "r@example.com", "pw")
	if !errors.Is(err, account.ErrStoreFailure) {
		t.Errorf("SignIn() error = %v, want %v", err, account.ErrStoreFailure)
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		t.Error("store failure must not look like bad credentials")
	}
}

func TestSignIn_Cancelled(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.SignUp(context.Background(), "r@example.com", "pw"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name       string
		identifier string
	}{
		{"registered", "r@example.com"},
		{"unknown", "ghost@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SignIn(ctx, tt.identifier, "pw")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("SignIn() error = %v, want %v", err, context.Canceled)
			}
			if errors.Is(err, auth.ErrInvalidCredentials) {
				t.Errorf("SignIn() error = %v, must not report invalid credentials", err)
			}
		})
	}
}

func TestService_Telemetry(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	var logs bytes.Buffer
	mw := observe.NewMiddleware(
		observe.NewTracer(tp.Tracer("test")),
		nil,
		observe.NewLoggerWithWriter("debug", &logs),
		observe.WithClassifier(account.Reason),
	)
	f := newFixture(t, account.WithMiddleware(mw))
	ctx := context.Background()

	_, _ = f.svc.SignUp(ctx, "r@example.com", "s3cret-value")
	_, _ = f.svc.SignUp(ctx, "r@example.com", "s3cret-value")
	_, _ = f.svc.SignIn(ctx, "r@example.com", "nope")

	ended := spans.Ended()
	want := []struct{ name, reason string }{
		{"auth.account.signup", "ok"},
		{"auth.account.signup", "duplicate_identifier"},
		{"auth.account.signin", "invalid_credentials"},
	}
	if len(ended) != len(want) {
		t.Fatalf("spans = %d, want %d", len(ended), len(want))
	}
	for i, w := range want {
		if ended[i].Name() != w.name {
			t.Errorf("span[%d] name = %q, want %q", i, ended[i].Name(), w.name)
		}
		var reason string
		for _, kv := range ended[i].Attributes() {
			if kv.Key == "auth.reason" {
				reason = kv.Value.AsString()
			}
		}
		if reason != w.reason {
			t.Errorf("span[%d] auth.reason = %q, want %q", i, reason, w.reason)
		}
	}
	if strings.Contains(logs.String(), "s3cret-value") {
		t.Error("logs contain a plaintext secret")
	}
}
