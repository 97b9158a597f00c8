package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Options selects how telemetry is exported.
type Options struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	Environment  string
	LogLevel     string
	// LogOutput receives local logs when Enabled is false.
	LogOutput io.Writer
}

// Providers owns the OpenTelemetry providers started by Setup.
type Providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
	lp *sdklog.LoggerProvider
}

// Setup starts the tracer, meter and logger providers when telemetry is
// enabled and returns the logger to use. When disabled, the global otel
// providers stay no-op and logs go to opts.LogOutput.
func Setup(ctx context.Context, opts Options) (*Providers, *slog.Logger, error) {
	p := &Providers{}
	if !opts.Enabled {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		return p, NewLocalLogger(out, opts.LogLevel), nil
	}

	var err error
	p.tp, err = InitTracerProvider(ctx, opts.ServiceName, opts.OTLPEndpoint, opts.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize tracer provider: %w", err)
	}

	p.mp, err = InitMeterProvider(ctx, opts.ServiceName, opts.OTLPEndpoint, opts.Environment)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, nil, fmt.Errorf("initialize meter provider: %w", err)
	}

	// Logger last, so log records correlate with the providers above.
	var logger *slog.Logger
	p.lp, logger, err = InitLoggerProvider(ctx, opts.ServiceName, opts.OTLPEndpoint, opts.Environment)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, nil, fmt.Errorf("initialize logger provider: %w", err)
	}

	return p, logger, nil
}

// Shutdown flushes and stops every started provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.lp != nil {
		errs = append(errs, p.lp.Shutdown(ctx))
	}
	if p.mp != nil {
		errs = append(errs, p.mp.Shutdown(ctx))
	}
	if p.tp != nil {
		errs = append(errs, p.tp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
