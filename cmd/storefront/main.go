package main

import (
	"fmt"
	"os"

	"storefront/internal/app"
	"storefront/internal/config"

	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to read before the environment")
	backend := pflag.String("backend", "", "remote services: http or memory (overrides BACKEND)")
	state := pflag.String("state", "", "client state driver: file, mongo or memory (overrides STATE_DRIVER)")
	port := pflag.StringP("port", "p", "", "gRPC listen port (overrides GRPC_PORT)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}

	if *backend != "" {
		cfg.Backend.Driver = *backend
	}
	if *state != "" {
		cfg.State.Driver = *state
	}
	if *port != "" {
		cfg.GRPC.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := app.New(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}
