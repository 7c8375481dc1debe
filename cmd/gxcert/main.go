package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/gaiax/go-gxcert/internal/cli"
	"github.com/gaiax/go-gxcert/internal/config"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	cmd, err := cli.ParseCommand(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cli.Run(ctx, cfg, cmd, os.Stdout)
	stop()
	if err != nil {
		config.Exitf("%s: %v", cmd.Name, err)
	}
}
