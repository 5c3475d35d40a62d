package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/datamapper/pkg/errors"
)

func TestRetry(t *testing.T) {
	transient := errors.New(errors.ErrCodeStore, "connection refused")
	permanent := errors.New(errors.ErrCodeInvalidConfig, "bad url")

	tests := []struct {
		name      string
		failures  []error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"Success", nil, 3, 1, nil},
		{"RecoversAfterTransient", []error{transient, transient}, 3, 3, nil},
		{"GivesUp", []error{transient, transient, transient}, 3, 3, transient},
		{"PermanentStopsEarly", []error{permanent}, 3, 1, permanent},
		{"ZeroAttemptsRunsOnce", []error{transient}, 0, 1, transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return errors.New(errors.ErrCodeStore, "down")
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOpenRetry(t *testing.T) {
	s, err := OpenRetry(context.Background(), Options{Backend: BackendMemory}, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("OpenRetry: %v", err)
	}
	s.Close()

	_, err = OpenRetry(context.Background(), Options{Backend: "sqlite"}, 3, time.Millisecond)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
