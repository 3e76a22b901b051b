// wetwire-mixin plans mixin compositions described in declaration documents.
//
// Usage:
//
//	wetwire-mixin build [path] [--tie-break lexical] [-o plan.json]
//	wetwire-mixin lint [path] [--fix]
//	wetwire-mixin validate [path] [--strict]
//	wetwire-mixin list [path] [--type order|bindings|pipelines]
//	wetwire-mixin graph [path] [--graph-format dot|mermaid]
//	wetwire-mixin import <source> [--target mixin.yaml]
//	wetwire-mixin watch [path] [--metrics-addr :9464]
//	wetwire-mixin init [--name order-service]
package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-mixin-go/composer"
	"github.com/lex00/wetwire-mixin-go/domain"
)

func main() {
	c, err := composer.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := domain.Run(c)
	root.PersistentFlags().String("metrics-addr", "", "Serve plan cache metrics on this address (e.g. :9464)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("metrics-addr")
		if addr == "" {
			return nil
		}
		return serveMetrics(addr)
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveMetrics exposes the default prometheus registry in the background
// for the lifetime of the process.
func serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, "metrics server:", err)
		}
	}()
	return nil
}
