package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestScheduler_RegisterAndList(t *testing.T) {
	s := newTestScheduler(t)

	noop := func(ctx context.Context) error { return nil }
	for _, id := range []string{"scan", "backup"} {
		err := s.RegisterTask(TaskConfig{
			ID:   id,
			Name: id,
			Cron: "0 0 * * *",
			Func: noop,
		})
		if err != nil {
			t.Fatalf("RegisterTask(%s) error = %v", id, err)
		}
	}

	if err := s.RegisterTask(TaskConfig{ID: "scan", Name: "dup", Cron: "0 0 * * *", Func: noop}); err == nil {
		t.Error("duplicate registration succeeded")
	}

	tasks := s.ListTasks()
	if len(tasks) != 2 || tasks[0].ID != "backup" || tasks[1].ID != "scan" {
		t.Errorf("ListTasks() = %+v, want sorted [backup scan]", tasks)
	}

	if _, err := s.GetTask("scan"); err != nil {
		t.Errorf("GetTask(scan) error = %v", err)
	}
	if _, err := s.GetTask("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetTask(nope) error = %v, want ErrTaskNotFound", err)
	}
}

func TestScheduler_RegisterRejectsBadCron(t *testing.T) {
	s := newTestScheduler(t)

	err := s.RegisterTask(TaskConfig{
		ID:   "bad",
		Name: "bad",
		Cron: "not a cron",
		Func: func(ctx context.Context) error { return nil },
	})
	if err == nil {
		t.Error("RegisterTask() accepted an invalid cron expression")
	}
}

func TestScheduler_UpdateTaskCron(t *testing.T) {
	s := newTestScheduler(t)

	err := s.RegisterTask(TaskConfig{
		ID:   "scan",
		Name: "scan",
		Cron: "*/30 * * * *",
		Func: func(ctx context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("RegisterTask() error = %v", err)
	}

	if err := s.UpdateTaskCron("missing", "0 3 * * *"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("UpdateTaskCron(missing) error = %v, want ErrTaskNotFound", err)
	}

	// A bad expression is rejected without touching the schedule.
	if err := s.UpdateTaskCron("scan", "not a cron"); err == nil {
		t.Error("UpdateTaskCron() accepted an invalid cron expression")
	}
	info, err := s.GetTask("scan")
	if err != nil {
		t.Fatal(err)
	}
	if info.Cron != "*/30 * * * *" {
		t.Errorf("cron after rejected update = %q, want original", info.Cron)
	}

	if err := s.UpdateTaskCron("scan", "0 3 * * *"); err != nil {
		t.Fatalf("UpdateTaskCron() error = %v", err)
	}
	info, err = s.GetTask("scan")
	if err != nil {
		t.Fatal(err)
	}
	if info.Cron != "0 3 * * *" {
		t.Errorf("cron = %q, want updated expression", info.Cron)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler(t)

	var runs atomic.Int32
	err := s.RegisterTask(TaskConfig{
		ID:   "scan",
		Name: "scan",
		Cron: "0 0 * * *",
		Func: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterTask() error = %v", err)
	}

	if err := s.RunNow("scan"); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("task never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := s.RunNow("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("RunNow(missing) error = %v, want ErrTaskNotFound", err)
	}
}

func TestScheduler_RunNowWhileRunning(t *testing.T) {
	s := newTestScheduler(t)

	release := make(chan struct{})
	started := make(chan struct{})
	err := s.RegisterTask(TaskConfig{
		ID:   "slow",
		Name: "slow",
		Cron: "0 0 * * *",
		Func: func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterTask() error = %v", err)
	}

	if err := s.RunNow("slow"); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	<-started

	if err := s.RunNow("slow"); !errors.Is(err, ErrTaskRunning) {
		t.Errorf("RunNow(running) error = %v, want ErrTaskRunning", err)
	}
	close(release)
}
