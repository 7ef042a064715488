package cron

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeLock struct {
	acquired bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: buf})
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	registry := prometheus.NewRegistry()
	lock := &fakeLock{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(&bytes.Buffer{}),
		Registry: NewRegistry(success, failure),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registry),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("expected each job once, got success=%d failure=%d", success.runs, failure.runs)
	}
	if lock.releases != 1 || lock.acquired {
		t.Fatalf("lock should be released after the cycle")
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	outcomes := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "cron_job_runs_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	if outcomes["success"] != 1 || outcomes["failure"] != 1 {
		t.Fatalf("unexpected run outcomes %v", outcomes)
	}
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "only"}
	logs := &bytes.Buffer{}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(logs),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{acquired: true},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if !strings.Contains(logs.String(), "cron.cycle.skipped_locked") {
		t.Fatalf("expected skip log, got %s", logs.String())
	}
}

func TestParseSchedule(t *testing.T) {
	from := time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)

	every, spec, err := parseSchedule("", 15*time.Minute)
	if err != nil {
		t.Fatalf("interval schedule: %v", err)
	}
	if spec != "@every 15m0s" || !every.Next(from).Equal(from.Add(15*time.Minute)) {
		t.Fatalf("unexpected interval schedule %s next=%s", spec, every.Next(from))
	}

	nightly, _, err := parseSchedule("0 3 * * *", 0)
	if err != nil {
		t.Fatalf("cron expression: %v", err)
	}
	if want := time.Date(2026, 4, 2, 3, 0, 0, 0, time.UTC); !nightly.Next(from).Equal(want) {
		t.Fatalf("expected %s got %s", want, nightly.Next(from))
	}

	if _, _, err := parseSchedule("every now and then", 0); err == nil {
		t.Fatal("expected invalid expression to fail")
	}

	_, spec, _ = parseSchedule("", 0)
	if spec != "@every 1h0m0s" {
		t.Fatalf("expected default interval, got %s", spec)
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "tick"}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(&bytes.Buffer{}),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{},
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if job.runs != 1 {
		t.Fatalf("expected the startup cycle to run once, got %d", job.runs)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected logger requirement")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger(&bytes.Buffer{})}); err == nil {
		t.Fatal("expected lock requirement")
	}
}
