package main

import (
	"context"
	"fmt"
	"os"

	"gosh/internal/config"
	"gosh/internal/ctxlog"
	"gosh/internal/shell"
)

const configFile = "config.yml"

func main() {
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	s, err := shell.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing shell: %v\n", err)
		os.Exit(1)
	}

	if err := s.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
