package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	fortresscmd "github.com/shawndeggans/space-fortress/internal/cmd/fortress"
	"github.com/shawndeggans/space-fortress/internal/platform/config"
)

func main() {
	cfg, err := fortresscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[FORTRESS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fortresscmd.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("fortress: %v", err)
	}
}
