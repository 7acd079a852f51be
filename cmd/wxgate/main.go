package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/wxgate/wxgate/internal/api"
	"github.com/wxgate/wxgate/internal/config"
	"github.com/wxgate/wxgate/internal/gateway"
	"github.com/wxgate/wxgate/internal/prewarm"
)

type cli struct {
	Config       string        `short:"c" env:"WXGATE_CONFIG" help:"Path to the configuration file (default ~/.config/wxgate.yml)."`
	Listen       string        `short:"l" env:"WXGATE_LISTEN" help:"Listen address override, e.g. 127.0.0.1:9090."`
	NoWarm       bool          `env:"WXGATE_NO_WARM" help:"Disable background prewarming of configured locations."`
	WarmInterval time.Duration `env:"WXGATE_WARM_INTERVAL" default:"5m" help:"How often to re-warm configured locations."`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("wxgate"),
		kong.Description("Weather gateway: grid resolution, forecast caching, hazard outlooks, and alert webhooks."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	cfg, err := config.Load(args.Config)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	gw := gateway.New(gateway.Options{
		TTL:        time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		IgnoreText: cfg.HWO.IgnoreText,
		Rules:      cfg.Alerts,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !args.NoWarm && len(cfg.Locations) > 0 {
		warmer := prewarm.New(gw, cfg.Locations, args.WarmInterval)
		go warmer.Run(ctx)
		log.Printf("prewarming %d locations every %s", len(cfg.Locations), args.WarmInterval)
	}

	addr := args.Listen
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}
	log.Printf("listening on %s", addr)

	server := api.NewServer(cfg, gw)
	if err := server.Run(ctx, addr); err != nil {
		log.Fatalf("server: %v", err)
	}
	log.Println("shutdown complete")
}
