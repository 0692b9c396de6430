package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "valid minimal",
			cfg:  Config{ServiceName: "journal"},
		},
		{
			name: "valid full",
			cfg: Config{
				ServiceName: "journal",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "debug"},
			},
		},
		{
			name: "bad tracing exporter",
			cfg: Config{
				ServiceName: "journal",
				Tracing:     TracingConfig{Enabled: true, Exporter: "graphite"},
			},
			wantErr: ErrInvalidExporter,
		},
		{
			name: "prometheus is not a span exporter",
			cfg: Config{
				ServiceName: "journal",
				Tracing:     TracingConfig{Enabled: true, Exporter: "prometheus"},
			},
			wantErr: ErrInvalidExporter,
		},
		{
			name: "sample pct out of range",
			cfg: Config{
				ServiceName: "journal",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "bad metrics exporter",
			cfg: Config{
				ServiceName: "journal",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidExporter,
		},
		{
			name: "bad log level",
			cfg: Config{
				ServiceName: "journal",
				Logging:     LoggingConfig{Enabled: true, Level: "verbose"},
			},
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserverDisabled(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, Config{ServiceName: "journal"})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}

	// Everything disabled still yields working no-op primitives.
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Error("disabled observer returned nil primitives")
	}
	obs.Logger().Info(ctx, "dropped")

	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	// Shutdown is idempotent.
	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestNewObserverInvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver err = %v, want ErrMissingServiceName", err)
	}
}
