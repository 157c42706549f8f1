// Command invariant runs the invariant monitor (spec.md §4.8): a set of
// independent, rate-limited probes against a live chain and its
// masp-indexer sidecar, reporting any detected violation until the process
// is interrupted. Unlike cmd/workload it is long-running, one process per
// deployment rather than per worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"namada-resilience-test/internal/retry"
	"namada-resilience-test/observability/logging"
	telemetry "namada-resilience-test/observability/otel"
	"namada-resilience-test/workload/monitor"
	"namada-resilience-test/workload/query"
	"namada-resilience-test/workload/stats"
)

func main() {
	os.Exit(run())
}

func run() int {
	rpc := flag.String("rpc", "", "chain node gRPC address (required)")
	indexerURL := flag.String("masp-indexer-url", "", "masp-indexer HTTP base URL (required)")
	httpTimeout := flag.Duration("http-timeout", 10*time.Second, "timeout for masp-indexer HTTP requests")
	flag.Parse()

	if strings.TrimSpace(*rpc) == "" || strings.TrimSpace(*indexerURL) == "" {
		fmt.Fprintln(os.Stderr, "invariant: --rpc and --masp-indexer-url are required")
		return 1
	}

	env := strings.TrimSpace(os.Getenv("NAMADA_RESILIENCE_ENV"))
	log := logging.Setup("invariant-monitor", env)

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "invariant-monitor",
		Environment: env,
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    true,
		Metrics:     true,
		Traces:      true,
	})
	if err != nil {
		log.Warn("telemetry init failed, continuing without it", slog.Any("err", err))
	} else {
		defer shutdownTelemetry(context.Background())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := grpc.NewClient(*rpc,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Error("dial chain rpc failed", slog.Any("err", err))
		return 1
	}
	defer conn.Close()

	chain := query.NewChainQuerier(conn)
	st := stats.New(log)

	m := &monitor.Monitor{
		Env: &monitor.Env{
			Chain:          chain,
			MaspIndexerURL: *indexerURL,
			HTTPClient:     &http.Client{Timeout: *httpTimeout},
			Retry:          retry.Policy{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second},
			Log:            log,
		},
		Probes: []monitor.Probe{
			&monitor.HeightCheck{},
			&monitor.EpochCheck{},
			&monitor.InflationCheck{},
			&monitor.MaspIndexerHeightCheck{},
			&monitor.StatusCheck{},
			&monitor.VotingPowerCheck{},
		},
		Reporter: st,
	}

	log.Info("invariant monitor starting",
		slog.String("rpc", *rpc), slog.String("masp_indexer_url", *indexerURL),
		slog.Int("probes", len(m.Probes)))
	m.Run(ctx)
	log.Info("invariant monitor stopped")
	fmt.Println(st.Summary())

	if st.HasProbeFailures() {
		return 1
	}
	return 0
}
