package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Abraxas-365/wahax/configx"
	"github.com/Abraxas-365/wahax/logx"
)

const envPrefix = "WAHAX_"

func main() {
	root := &cobra.Command{
		Use:   "wahabridge",
		Short: "HTTP bridge between WAHA WhatsApp servers and event consumers",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	var listenAddr string
	var storePath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				config.listenAddr = listenAddr
			}
			if storePath != "" {
				config.storePath = storePath
			}

			applyLogging(config)
			return runServer(cmd.Context(), config)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a JSON config file")
	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address, overrides config")
	cmd.Flags().StringVarP(&storePath, "store", "s", "", "entry store file, overrides config")
	return cmd
}

type daemonConfig struct {
	listenAddr   string
	storePath    string
	logLevel     string
	logFormat    string
	rateLimit    int
	pollInterval string

	// publicURL is the externally reachable address of this daemon, used to
	// register per-entry webhooks with WAHA; empty disables registration
	publicURL string
}

func loadConfig(configPath string) (*daemonConfig, error) {
	sources := []configx.Source{
		configx.NewDefaults(map[string]any{
			"listen_addr":   ":8080",
			"store_path":    "entries.json",
			"log_level":     "info",
			"log_format":    "console",
			"rate_limit":    0,
			"poll_interval": "30s",
			"public_url":    "",
		}),
	}
	if configPath != "" {
		sources = append(sources, configx.NewFileSource(configPath))
	}
	sources = append(sources, configx.NewEnvSource(envPrefix))

	config, err := configx.Load(sources...)
	if err != nil {
		return nil, err
	}

	return &daemonConfig{
		listenAddr:   config.Get("listen_addr").AsString(),
		storePath:    config.Get("store_path").AsString(),
		logLevel:     config.Get("log_level").AsString(),
		logFormat:    config.Get("log_format").AsString(),
		rateLimit:    config.Get("rate_limit").AsInt(),
		pollInterval: config.Get("poll_interval").AsString(),
		publicURL:    config.Get("public_url").AsString(),
	}, nil
}

func applyLogging(config *daemonConfig) {
	if level, err := logx.ParseLevel(config.logLevel); err == nil {
		logx.SetLevel(level)
	}
	if config.logFormat == "json" {
		logx.SetFormat(logx.FormatJSON)
	}
	logx.SetPrefix("wahabridge")
}
