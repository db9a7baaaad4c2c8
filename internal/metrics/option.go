package metrics

// Exporter selects where metrics are sent.
type Exporter string

const (
	ExporterPrometheus Exporter = "prometheus"
	ExporterOTLP       Exporter = "otlp-grpc"
)

// Config describes the meter provider.
type Config struct {
	ServiceName string
	Exporters   []ExporterConfig
}

// ExporterConfig configures one exporter. Endpoint, Headers and Insecure
// apply to OTLP only.
type ExporterConfig struct {
	Exporter Exporter
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type Option func(*Config)

func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithPrometheus exposes metrics for scraping; see ServePrometheusMetrics.
func WithPrometheus() Option {
	return func(c *Config) {
		c.Exporters = append(c.Exporters, ExporterConfig{Exporter: ExporterPrometheus})
	}
}

// WithOTLP pushes metrics to an OTLP gRPC collector.
func WithOTLP(endpoint string, headers map[string]string, insecure bool) Option {
	return func(c *Config) {
		c.Exporters = append(c.Exporters, ExporterConfig{
			Exporter: ExporterOTLP,
			Endpoint: endpoint,
			Headers:  headers,
			Insecure: insecure,
		})
	}
}

// ServerConfig configures the Prometheus scrape endpoint.
type ServerConfig struct {
	Port int
}

type ServerOption func(*ServerConfig)

func WithPort(port int) ServerOption {
	return func(c *ServerConfig) {
		c.Port = port
	}
}
