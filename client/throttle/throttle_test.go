package throttle

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	testCases := map[string]struct {
		cfg    Config
		expErr error
	}{
		"zeroRPS":       {cfg: Config{RPS: 0, Burst: 10}, expErr: ErrMustNotBeZero},
		"negativeRPS":   {cfg: Config{RPS: -5, Burst: 10}, expErr: ErrMustNotBeZero},
		"zeroBurst":     {cfg: Config{RPS: 10, Burst: 0}, expErr: ErrMustNotBeZero},
		"negativeBurst": {cfg: Config{RPS: 10, Burst: -5}, expErr: ErrMustNotBeZero},
		"valid":         {cfg: Config{RPS: 10, Burst: 20}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rt, err := NewRoundTripper(tc.cfg, nil, http.DefaultTransport)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if rt == nil {
				t.Error("exp non-nil RoundTripper")
			}
		})
	}
}

func TestThrottle_Behavior(t *testing.T) {
	testCases := map[string]struct {
		cfg         Config
		numRequests int
		reqTimeout  time.Duration
		expFailures int
		minDuration time.Duration
		maxDuration time.Duration
	}{
		"withinBurst": {
			cfg:         Config{RPS: 5, Burst: 5},
			numRequests: 5,
			maxDuration: 150 * time.Millisecond,
		},
		"exceedBurstSucceedsWaiting": {
			cfg:         Config{RPS: 10, Burst: 5},
			numRequests: 8,
			reqTimeout:  time.Second,
			// (8-5) tokens at 10 RPS.
			minDuration: 250 * time.Millisecond,
		},
		"exceedBurstTimesOut": {
			cfg:         Config{RPS: 5, Burst: 2},
			numRequests: 5,
			reqTimeout:  50 * time.Millisecond,
			expFailures: 3,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			rt, err := NewRoundTripper(tc.cfg, nil, http.DefaultTransport)
			if err != nil {
				t.Fatal(err)
			}
			client := &http.Client{Transport: rt}

			var wg sync.WaitGroup
			var failures atomic.Int32
			start := time.Now()

			for range tc.numRequests {
				wg.Add(1)
				go func() {
					defer wg.Done()

					ctx := t.Context()
					if tc.reqTimeout > 0 {
						var cancel context.CancelFunc
						ctx, cancel = context.WithTimeout(ctx, tc.reqTimeout)
						defer cancel()
					}

					req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
					if err != nil {
						t.Error(err)
						return
					}

					resp, err := client.Do(req)
					if err != nil {
						failures.Add(1)
						if !errors.Is(err, ErrWaitingFailed) {
							t.Errorf("expected ErrWaitingFailed, got %v", err)
						}
						return
					}
					resp.Body.Close()
				}()
			}

			wg.Wait()
			elapsed := time.Since(start)

			if got := int(failures.Load()); got != tc.expFailures {
				t.Errorf("expected %d failures, got %d", tc.expFailures, got)
			}
			if got := int(calls.Load()); got != tc.numRequests-tc.expFailures {
				t.Errorf("expected %d server calls, got %d", tc.numRequests-tc.expFailures, got)
			}
			if tc.minDuration > 0 && elapsed < tc.minDuration {
				t.Errorf("expected throttling >= %v, took %v", tc.minDuration, elapsed)
			}
			if tc.maxDuration > 0 && elapsed > tc.maxDuration {
				t.Errorf("expected fast run < %v, took %v", tc.maxDuration, elapsed)
			}
		})
	}
}

func TestThrottle_PreCancelledContext(t *testing.T) {
	rt, err := NewRoundTripper(Config{RPS: 20, Burst: 10}, nil, roundTripFunc(func(*http.Request) (*http.Response, error) {
		t.Error("next transport must not be called")
		return nil, nil
	}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.invalid", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.RoundTrip(req)
	if !errors.Is(err, ErrContextEnded) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ErrContextEnded wrapping context.Canceled, got %v", err)
	}
}

func TestThrottle_LogsWhenExhausted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ok := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})

	rt, err := NewRoundTripper(Config{RPS: 100, Burst: 1}, func() *slog.Logger { return logger }, ok)
	if err != nil {
		t.Fatal(err)
	}

	for range 2 {
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://api.test/x", nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := rt.RoundTrip(req); err != nil {
			t.Fatalf("round trip: %v", err)
		}
	}

	if !strings.Contains(buf.String(), "throttle tokens exhausted") {
		t.Errorf("expected exhaustion log, got %q", buf.String())
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
