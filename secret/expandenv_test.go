package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("CATALOGD_TEST_PRESENT", "ok")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "no vars", want: "no vars"},
		{name: "braced", in: "a=${CATALOGD_TEST_PRESENT}", want: "a=ok"},
		{name: "bare", in: "a=$CATALOGD_TEST_PRESENT", want: "a=ok"},
		{name: "bare missing is empty", in: "a=$CATALOGD_TEST_ABSENT", want: "a="},
		{name: "dollar escape", in: "$$${CATALOGD_TEST_PRESENT}", want: "$ok"},
		{name: "braced missing", in: "${CATALOGD_TEST_ABSENT}", wantErr: ErrMissingEnv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExpandEnvStrict() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_NamesMissingVars(t *testing.T) {
	_, err := ExpandEnvStrict("${CATALOGD_B_MISSING} ${CATALOGD_A_MISSING}")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "CATALOGD_A_MISSING, CATALOGD_B_MISSING") {
		t.Errorf("error = %v, want sorted missing names", err)
	}
}
