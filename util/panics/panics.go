package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/ulordnet/ulordd/infrastructure/logger"
	"golang.org/x/sync/errgroup"
)

const exitHandlerTimeout = 5 * time.Second

// HandlePanic recovers a panic, logs it together with the stack of the
// goroutine that spawned the panicking one, and exits the process.
// It must be called directly by a deferred statement.
func HandlePanic(log *logger.Logger, spawnStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}
	exit(log, fmt.Sprintf("Fatal error: %+v", err), debug.Stack(), spawnStackTrace)
}

// GoroutineWrapperFunc returns a function that runs its argument in a new
// goroutine, logging the stack of the spawning goroutine if it panics.
func GoroutineWrapperFunc(log *logger.Logger) func(func()) {
	return func(f func()) {
		spawnStackTrace := debug.Stack()
		go func() {
			defer HandlePanic(log, spawnStackTrace)
			f()
		}()
	}
}

// GroupWrapperFunc is GoroutineWrapperFunc for functions run as members of
// an errgroup.Group.
func GroupWrapperFunc(log *logger.Logger, group *errgroup.Group) func(func() error) {
	return func(f func() error) {
		spawnStackTrace := debug.Stack()
		group.Go(func() error {
			defer HandlePanic(log, spawnStackTrace)
			return f()
		})
	}
}

// AfterFuncWrapperFunc returns a time.AfterFunc replacement that handles
// panics the way GoroutineWrapperFunc does.
func AfterFuncWrapperFunc(log *logger.Logger) func(d time.Duration, f func()) *time.Timer {
	return func(d time.Duration, f func()) *time.Timer {
		spawnStackTrace := debug.Stack()
		return time.AfterFunc(d, func() {
			defer HandlePanic(log, spawnStackTrace)
			f()
		})
	}
}

// Exit logs reason at critical level and exits the process.
func Exit(log *logger.Logger, reason string) {
	exit(log, reason, nil, nil)
}

func exit(log *logger.Logger, reason string, stackTrace []byte, spawnStackTrace []byte) {
	done := make(chan struct{})
	go func() {
		log.Criticalf("Exiting: %s", reason)
		if spawnStackTrace != nil {
			log.Criticalf("Spawned from: %s", spawnStackTrace)
		}
		if stackTrace != nil {
			log.Criticalf("Stack trace: %s", stackTrace)
		}
		log.Backend().Close()
		close(done)
	}()

	select {
	case <-time.After(exitHandlerTimeout):
		fmt.Fprintln(os.Stderr, "Couldn't exit gracefully.")
	case <-done:
	}
	os.Exit(1)
}
