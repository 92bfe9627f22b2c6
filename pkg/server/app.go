package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	applogger "celestial/pkg/logger"
)

// Component is a long-running part of the process (HTTP server, Kafka
// consumer, queue workers).
type Component interface {
	Start() error
	Stop(ctx context.Context) error
}

type namedComponent struct {
	name string
	Component
}

type closer struct {
	name string
	fn   func() error
}

// App starts components in registration order and stops them in reverse.
// Closers run after every component has stopped, also in reverse.
type App struct {
	log             *applogger.Logger
	shutdownTimeout time.Duration
	components      []namedComponent
	closers         []closer
	signals         []os.Signal
}

// New creates an App.
func New(log *applogger.Logger, shutdownTimeout time.Duration) *App {
	if log == nil {
		log = applogger.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Add registers a component under name.
func (a *App) Add(name string, c Component) *App {
	if c != nil {
		a.components = append(a.components, namedComponent{name: name, Component: c})
	}
	return a
}

// OnClose registers a resource release such as a client Close.
func (a *App) OnClose(name string, fn func() error) *App {
	if fn != nil {
		a.closers = append(a.closers, closer{name: name, fn: fn})
	}
	return a
}

// Run starts everything and blocks until ctx is done or the process receives
// SIGINT/SIGTERM, then shuts down. A component that fails to start causes the
// already started ones to be stopped.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	started := 0
	for _, c := range a.components {
		if err := c.Start(); err != nil {
			a.log.Error("component start failed", applogger.String("component", c.name), applogger.Error(err))
			shutdownErr := a.shutdown(a.components[:started])
			return errors.Join(fmt.Errorf("start %s: %w", c.name, err), shutdownErr)
		}
		a.log.Info("component started", applogger.String("component", c.name))
		started++
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown(a.components)
}

func (a *App) shutdown(components []namedComponent) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.Stop(ctx); err != nil {
			a.log.Warn("component stop error", applogger.String("component", c.name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.name, err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		cl := a.closers[i]
		if err := cl.fn(); err != nil {
			a.log.Warn("close error", applogger.String("resource", cl.name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", cl.name, err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
