package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type stubProvider struct {
	name   string
	values map[string]string
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	return s.values[ref], nil
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		in           string
		wantProvider string
		wantRef      string
		wantOK       bool
	}{
		{in: "secretref:env:JWT", wantProvider: "env", wantRef: "JWT", wantOK: true},
		{in: "secretref:file:/run/secrets/a:b", wantProvider: "file", wantRef: "/run/secrets/a:b", wantOK: true},
		{in: "secretref:env:", wantOK: false},
		{in: "secretref::x", wantOK: false},
		{in: "plain-value", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, ref, ok := ParseSecretRef(tt.in)
			if ok != tt.wantOK || p != tt.wantProvider || ref != tt.wantRef {
				t.Errorf("ParseSecretRef() = %q, %q, %v; want %q, %q, %v", p, ref, ok, tt.wantProvider, tt.wantRef, tt.wantOK)
			}
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("CATALOGD_TEST_SIGNING", "from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "jwt")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewResolver()
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "literal", in: "literal", want: "literal"},
		{name: "env ref", in: "secretref:env:CATALOGD_TEST_SIGNING", want: "from-env"},
		{name: "file ref", in: "secretref:file:" + path, want: "from-file"},
		{name: "expanded then resolved", in: "secretref:file:${CATALOGD_TEST_DIR}/jwt", want: "from-file"},
		{name: "unknown provider", in: "secretref:vault:x", wantErr: ErrUnknownProvider},
		{name: "missing env ref", in: "secretref:env:CATALOGD_TEST_NOPE", wantErr: ErrMissingEnv},
	}
	t.Setenv("CATALOGD_TEST_DIR", dir)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolver_EmptySecret(t *testing.T) {
	r := NewResolver(stubProvider{name: "stub"})
	if _, err := r.Resolve(context.Background(), "secretref:stub:missing"); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrEmptySecret)
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver(stubProvider{name: "stub", values: map[string]string{"a": "A", "b": "B"}})
	first, second, empty := "secretref:stub:a", "secretref:stub:b", ""

	if err := r.ResolveAll(context.Background(), &first, &second, &empty, nil); err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if first != "A" || second != "B" || empty != "" {
		t.Errorf("ResolveAll() = %q %q %q", first, second, empty)
	}
}
