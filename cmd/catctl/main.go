package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prodcat-hq/catctl/internal/app"
	"github.com/prodcat-hq/catctl/internal/apperror"
	"github.com/prodcat-hq/catctl/internal/config"
	"github.com/prodcat-hq/catctl/internal/logger"
)

// Version information set during build
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "catctl",
	Short: "Command-line client for the product catalog API",
	Long: `catctl performs a single HTTP request against a product catalog REST
service and pretty-prints the JSON response. The request payload is read
from --data, --file (or stdin with -f -), or defaults to an empty object.
An empty --resource addresses the API root, which lists the available
resources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		log, err := logger.Init(cfg.LogLevel())
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Close()

		log.Debugw("configuration resolved",
			"server", cfg.Server,
			"method", cfg.Method,
			"resource", cfg.Resource,
			"profile", cfg.Profile,
		)

		return app.New(cfg, log).Run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:          "version",
	Short:        "Show version information",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("catctl version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("date: %s\n", date)
		return nil
	},
}

// run wires flags and commands explicitly.
func run() error {
	rootCmd.Flags().StringP("server", "s", "", "catalog server base URL")
	rootCmd.Flags().BoolP("insecure", "k", false, "skip TLS certificate verification")
	rootCmd.Flags().String("ca-cert", "", "CA bundle used to verify the server certificate")
	rootCmd.Flags().StringP("request", "x", "GET", "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	rootCmd.Flags().StringP("resource", "r", "", "resource path; empty addresses the API root")
	rootCmd.Flags().StringP("data", "d", "", "inline JSON request payload")
	rootCmd.Flags().StringP("file", "f", "", "file holding the JSON request payload, or - for stdin")
	rootCmd.Flags().BoolP("traceback", "t", false, "print a stack trace for reported failures")
	rootCmd.Flags().Bool("debug", false, "print the request line and session headers before the call")
	rootCmd.Flags().StringP("comment", "c", "", "change comment sent along with the request")
	rootCmd.Flags().String("profile", "", "named server profile from profiles.yaml")

	rootCmd.MarkFlagsMutuallyExclusive("insecure", "ca-cert")
	rootCmd.MarkFlagsMutuallyExclusive("data", "file")

	rootCmd.AddCommand(versionCmd)

	return rootCmd.Execute()
}

func main() {
	if err := run(); err != nil {
		// Usage errors print their own message before returning.
		if !errors.Is(err, apperror.ErrUsage) {
			fmt.Fprintf(os.Stderr, "catctl: %v\n", err)
		}
		os.Exit(1)
	}
}
