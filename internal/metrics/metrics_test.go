package metrics

import (
	"context"
	"testing"
)

func TestNewMetricProvider_Prometheus(t *testing.T) {
	mp, err := NewMetricProvider(
		WithServiceName("swap-settler-test"),
		WithPrometheus(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mp.Shutdown(context.Background())

	counter, err := mp.Meter("test").Int64Counter("settlement_attempts_total")
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}
	counter.Add(context.Background(), 1)
}

func TestNewMetricProvider_UnknownExporter(t *testing.T) {
	_, err := NewMetricProvider(func(c *Config) {
		c.Exporters = append(c.Exporters, ExporterConfig{Exporter: "statsd"})
	})
	if err == nil {
		t.Fatal("expected unknown exporter to be rejected")
	}
}

func TestOptions(t *testing.T) {
	var cfg Config
	for _, opt := range []Option{
		WithServiceName("settler"),
		WithPrometheus(),
		WithOTLP("http://collector:4317", map[string]string{"x-token": "t"}, true),
	} {
		opt(&cfg)
	}

	if cfg.ServiceName != "settler" || len(cfg.Exporters) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	otlp := cfg.Exporters[1]
	if otlp.Exporter != ExporterOTLP || !otlp.Insecure || otlp.Headers["x-token"] != "t" {
		t.Errorf("unexpected otlp exporter %+v", otlp)
	}

	server := ServerConfig{Port: defaultPort}
	WithPort(9999)(&server)
	if server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", server.Port)
	}
}
