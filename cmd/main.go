package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/NgigiN/walletwatcher/internal/cli"
	"github.com/NgigiN/walletwatcher/internal/config"
	"github.com/NgigiN/walletwatcher/internal/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp, Output: os.Stderr})
	log.SetDefault(logger)

	os.Exit(cli.Execute(context.Background(), cfg, logger, os.Args[1:], os.Stdout, os.Stderr))
}
