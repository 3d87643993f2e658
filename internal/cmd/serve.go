package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/SamuelRCrider/luhny/core"
	"github.com/SamuelRCrider/luhny/httpapi"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddr         string
	serveMaxBodyBytes int64
	serveRateLimit    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve card masking over HTTP",
	Long: `Start an HTTP server that masks request bodies.

Endpoints:
  POST /v1/mask      stream the request body back with card numbers masked
  POST /v1/validate  check a single card number, {"number": "..."}
  GET  /healthz      liveness probe

Example:
  luhny serve --addr :8080
  curl --data-binary @payments.log localhost:8080/v1/mask`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// Environment variables consulted when the matching flag is not set
const (
	envListenAddr   = "LUHNY_LISTEN_ADDR"
	envMaxBodyBytes = "LUHNY_MAX_BODY_BYTES"
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (env "+envListenAddr+")")
	serveCmd.Flags().Int64Var(&serveMaxBodyBytes, "max-body-bytes", 0, "request body limit in bytes, 0 for unlimited (env "+envMaxBodyBytes+")")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", 0, "masking requests per minute per client, 0 disables")
}

// serveConfig resolves the HTTP settings. Flags given on the command line win;
// otherwise the environment, which includes the loaded env file, is used.
func serveConfig(cmd *cobra.Command) (httpapi.Config, error) {
	config := httpapi.Config{
		Addr:              serveAddr,
		MaxBodyBytes:      serveMaxBodyBytes,
		RequestsPerMinute: serveRateLimit,
	}

	if v := strings.TrimSpace(os.Getenv(envListenAddr)); v != "" && !cmd.Flags().Changed("addr") {
		config.Addr = v
	}

	if v := strings.TrimSpace(os.Getenv(envMaxBodyBytes)); v != "" && !cmd.Flags().Changed("max-body-bytes") {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return httpapi.Config{}, fmt.Errorf("invalid %s %q", envMaxBodyBytes, v)
		}
		config.MaxBodyBytes = n
	}

	return config, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	config, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	audit, err := core.NewAuditLoggerFromPolicy(policy)
	if err != nil {
		return err
	}
	if audit != nil {
		defer audit.Close()
	}

	srv := httpapi.NewServer(config, policy, audit, logger)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Shutting down", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	return srv.Start()
}
