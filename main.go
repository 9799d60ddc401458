package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"roomrec-server/cli"
	"roomrec-server/config"
	"roomrec-server/logging"
)

var CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error); overrides LOG_LEVEL." name:"log-level"`

	Serve     cli.ServeCmd     `cmd:"" help:"Run the HTTP server." default:"1"`
	Recommend cli.RecommendCmd `cmd:"" help:"Recommend rooms for a time slot and temperature."`
	Seed      cli.SeedCmd      `cmd:"" help:"Load the JSON resource files into the store."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("roomrec"),
		kong.Description("Room recommendation server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	cfg := config.Load()
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	err = ctx.Run(&cli.Context{Config: cfg, Logger: logger, Out: os.Stdout})
	if err != nil {
		logger.Error("command failed", "cmd", ctx.Command(), "err", err)
		os.Exit(1)
	}
}
