package cmd

import (
	"net/http"

	"cosmossdk.io/log"
	"github.com/openalpha/artbook/internal/book"
	"github.com/openalpha/artbook/internal/loadgen"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// NewServeCmd starts a single LongART-backed book and exposes its event
// feed over WebSocket and its metrics over Prometheus's text format.
// There is no network order-ingress endpoint: accepting commands from
// the network is out of scope (spec.md §1), so serve's only internally
// generated traffic comes from an optional synthetic feed used to
// demonstrate the WebSocket/metrics wiring.
func NewServeCmd(logger log.Logger) *cobra.Command {
	var (
		addr     string
		withDemo bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a book instance with a WebSocket trade feed and /metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			collector := book.GetCollector()
			wsSink := book.NewWebSocketSink()
			sink := book.MultiSink{Sinks: []book.EventSink{wsSink, book.NewPrometheusSink(collector)}}

			b, err := book.New(book.DefaultConfig(), sink, collector, logger)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.Handle("/ws", wsSink)

			if withDemo {
				go runDemoFeed(b)
			}

			logger.Info("artbookd serving", "addr", addr)
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8090", "HTTP listen address for /metrics and /ws")
	cmd.Flags().BoolVar(&withDemo, "demo", false, "feed the book a synthetic order stream so /ws and /metrics have activity")

	return cmd
}

// runDemoFeed drives b with a locally generated, reproducible order
// stream. It is not a network ingress path: every command originates in
// this process.
func runDemoFeed(b *book.Book) {
	gen := loadgen.New(loadgen.DefaultConfig(), 1)
	for {
		cmd, isCancel := gen.Next()
		if isCancel {
			b.Cancel(cmd.ID)
			continue
		}
		b.NewOrder(cmd)
	}
}
