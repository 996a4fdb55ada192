package health

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register(fixed("store", Healthy("ok")))
	agg.Register(fixed("signing_key", Degraded("slow")))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("CheckAll() = %d results, want 2", len(results))
	}
	if got := Overall(results); got != StatusDegraded {
		t.Errorf("Overall() = %v, want degraded", got)
	}
	if got := agg.Names(); !slices.Equal(got, []string{"signing_key", "store"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{name: "empty", results: nil, want: StatusHealthy},
		{name: "all healthy", results: map[string]Result{"a": Healthy(""), "b": Healthy("")}, want: StatusHealthy},
		{name: "one unhealthy", results: map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, want: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.results); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	block := make(chan struct{})
	defer close(block)
	agg.Register(NewCheckerFunc("stuck", func(ctx context.Context) Result {
		<-block
		return Healthy("")
	}))

	r, err := agg.Check(context.Background(), "stuck")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("Check() = %+v, want timeout", r)
	}
}

func TestAggregator_CheckUnknown(t *testing.T) {
	agg := NewAggregator(0)
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want %v", err, ErrCheckerNotFound)
	}
}
