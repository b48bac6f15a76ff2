package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bedrockproxy/internal/registry"
)

// options collects command-line input. Zero values mean the flag was not set.
type options struct {
	configPath           string
	addr                 string
	region               string
	endpointURL          string
	defaultModel         string
	logLevel             string
	logFormat            string
	corsOrigins          string
	maxBodyBytes         int64
	streamTimeoutSeconds int64
	tracing              bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	serve := func(cmd *cobra.Command, args []string) error {
		cfg, path, err := resolveConfig(o, os.LookupEnv)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if path != "" {
			log.Info().Str("path", path).Msg("config loaded")
		}
		return runServe(cmd.Context(), cfg, log)
	}

	root := &cobra.Command{
		Use:           "bedrockproxy",
		Short:         "Stream chat completions from Amazon Bedrock over plain HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Config file (.yaml, .toml or .json)")
	pf.StringVar(&o.addr, "addr", "", "HTTP listen address (default :8000, env BEDROCKPROXY_ADDR)")
	pf.StringVar(&o.region, "region", "", "Bedrock region (default ca-central-1, env BEDROCKPROXY_REGION)")
	pf.StringVar(&o.endpointURL, "endpoint-url", "", "Override the Bedrock Runtime endpoint")
	pf.StringVar(&o.defaultModel, "default-model", "", "Model id used when a request omits modelId")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: trace|debug|info|warn|error|disabled")
	pf.StringVar(&o.logFormat, "log-format", "", "Log format: json|console")
	pf.StringVar(&o.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins")
	pf.Int64Var(&o.maxBodyBytes, "max-body-bytes", 0, "Maximum /chat request body size")
	pf.Int64Var(&o.streamTimeoutSeconds, "stream-timeout-seconds", 0, "Upper bound on a single stream (0 disables)")
	pf.BoolVar(&o.tracing, "tracing", false, "Export stream spans over OTLP/HTTP (configured by OTEL_EXPORTER_OTLP_* variables)")

	root.AddCommand(&cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP server (default)",
		Example: "  bedrockproxy serve --addr :8000 --region us-east-1",
		RunE:    serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "Print the model catalogue served by GET /models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := resolveConfig(o, os.LookupEnv)
			if err != nil {
				return err
			}
			models, err := registry.FromConfig(cfg.Models)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%s\n", m.ID, m.Name)
			}
			return nil
		},
	})
	return root
}
