package main

import (
	"context"
	"errors"
	"os"
	"testing"
)

func stubExecute(t *testing.T, fn func(context.Context, []string) error, exitCode func(error) int) {
	t.Helper()
	origExec, origMap := executeCmd, mapExitCode
	t.Cleanup(func() {
		executeCmd = origExec
		mapExitCode = origMap
	})
	executeCmd = fn
	if exitCode != nil {
		mapExitCode = exitCode
	}
}

func TestRun_Success(t *testing.T) {
	var gotArgs []string
	stubExecute(t, func(_ context.Context, args []string) error {
		gotArgs = append([]string(nil), args...)
		return nil
	}, func(error) int {
		t.Fatal("mapExitCode should not be called on success")
		return 99
	})

	if code := run(context.Background(), []string{"user", "-o", "json"}); code != 0 {
		t.Fatalf("run() code = %d, want 0", code)
	}
	if len(gotArgs) != 3 || gotArgs[0] != "user" || gotArgs[2] != "json" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestRun_ErrorUsesMappedExitCode(t *testing.T) {
	boom := errors.New("boom")
	stubExecute(t, func(context.Context, []string) error { return boom }, func(err error) int {
		if !errors.Is(err, boom) {
			t.Fatalf("mapExitCode got %v, want %v", err, boom)
		}
		return 4
	})

	if code := run(context.Background(), []string{"sms", "send"}); code != 4 {
		t.Fatalf("run() code = %d, want 4", code)
	}
}

func TestMain_UsesTerminateWithRunCode(t *testing.T) {
	stubExecute(t, func(context.Context, []string) error { return errors.New("boom") }, func(error) int { return 8 })
	origTerminate, origArgs := terminate, os.Args
	t.Cleanup(func() {
		terminate = origTerminate
		os.Args = origArgs
	})

	gotCode := -1
	terminate = func(code int) { gotCode = code }
	os.Args = []string{"atctl", "user"}
	main()

	if gotCode != 8 {
		t.Fatalf("terminate code = %d, want 8", gotCode)
	}
}
