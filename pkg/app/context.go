package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-dex/internal/config"
	"github.com/deploymenttheory/go-dex/internal/logger"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Config is the loaded configuration, nil when running with defaults
	Config *config.Config

	// Logger receives structured diagnostics; never nil after NewContext
	Logger *zap.SugaredLogger

	// Stdout receives formatted results, Stderr receives user-facing errors
	Stdout io.Writer
	Stderr io.Writer
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		Context:      context.Background(),
		OutputFormat: "text",
		Logger:       logger.Nop(),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// WithSignals returns a copy of c that is cancelled when one of sigs
// arrives. The returned stop function releases the signal handler.
func (c *Context) WithSignals(sigs ...os.Signal) (*Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(c.Context, sigs...)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, stop
}

// Log outputs a message based on verbosity settings
func (c *Context) Log(message string) {
	if !c.Quiet && c.Verbose {
		c.Logger.Info(message)
	}
}

// Error reports an error to the user unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		fmt.Fprintln(c.Stderr, "Error:", message)
	}
}
