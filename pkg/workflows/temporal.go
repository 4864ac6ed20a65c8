package workflows

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"

	"github.com/ghuser/itemtree/pkg/logger"
)

const dialTimeout = 10 * time.Second

// TemporalClient is the worker's handle on the Temporal frontend. It carries
// the tracing interceptor so sweep workflows show up under the caller's span.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	log       logger.Logger
}

// NewTemporalClient dials hostPort and fails fast when the frontend is not
// reachable within dialTimeout.
func NewTemporalClient(ctx context.Context, hostPort, namespace string, log logger.Logger) (*TemporalClient, error) {
	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("itemtree/temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	c, err := client.DialContext(dialCtx, client.Options{
		HostPort:     hostPort,
		Namespace:    namespace,
		Logger:       newTemporalLogger(log.With("component", "temporal")),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s/%s: %w", hostPort, namespace, err)
	}

	log.Info("temporal client connected", "host_port", hostPort, "namespace", namespace)
	return &TemporalClient{Client: c, Namespace: namespace, log: log}, nil
}

// Ping asks the frontend for its health so the client can sit next to the
// database and redis in httpx.HealthChecks.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// temporalLogger forwards SDK log lines into the project logger.
type temporalLogger struct {
	log logger.Logger
}

var (
	_ temporallog.Logger     = (*temporalLogger)(nil)
	_ temporallog.WithLogger = (*temporalLogger)(nil)
)

func newTemporalLogger(log logger.Logger) *temporalLogger {
	return &temporalLogger{log: log}
}

func (l *temporalLogger) Debug(msg string, keyvals ...any) { l.log.Debug(msg, keyvals...) }
func (l *temporalLogger) Info(msg string, keyvals ...any)  { l.log.Info(msg, keyvals...) }
func (l *temporalLogger) Warn(msg string, keyvals ...any)  { l.log.Warn(msg, keyvals...) }
func (l *temporalLogger) Error(msg string, keyvals ...any) { l.log.Error(msg, keyvals...) }

// With keeps SDK-scoped fields (workflow id, run id, activity type) on every
// line the SDK emits through the derived logger.
func (l *temporalLogger) With(keyvals ...any) temporallog.Logger {
	return &temporalLogger{log: l.log.With(keyvals...)}
}
