package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/arian-lol/msg-mirror/internal/api"
	"github.com/arian-lol/msg-mirror/internal/biz"
	"github.com/arian-lol/msg-mirror/internal/biz/repo"
	"github.com/arian-lol/msg-mirror/internal/conf"
	"github.com/arian-lol/msg-mirror/internal/data"
	"github.com/arian-lol/msg-mirror/internal/infra/channel"
	"github.com/arian-lol/msg-mirror/internal/infra/feishu"
	"github.com/arian-lol/msg-mirror/internal/infra/ipc"
	"github.com/arian-lol/msg-mirror/internal/server"
	"github.com/arian-lol/msg-mirror/internal/service"
)

func main() {
	var envFile, addr, seedPath string
	var debug bool

	flagSet := pflag.NewFlagSet("msg-mirror", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&addr, "addr", "", "API listen address (overrides API_ADDR)")
	flagSet.StringVar(&seedPath, "prefs", "", "preference seed YAML (overrides PREFS_SEED_PATH)")
	flagSet.BoolVar(&debug, "debug", false, "echo the diagnostic log to stdout")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("Invalid flags: %v", err)
	}

	// Load .env file
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if addr != "" {
		cfg.API.Addr = addr
	}
	if seedPath != "" {
		cfg.PrefsSeedPath = seedPath
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(cfg.Storage.DBPath, cfg.Storage.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()
	fmt.Printf("[Mirror] DB: %s, log dir: %s\n", cfg.Storage.DBPath, cfg.Storage.LogDir)

	ctx := context.Background()

	seed, err := conf.LoadPrefsSeed(cfg.PrefsSeedPath)
	if err != nil {
		log.Fatalf("Failed to load prefs seed: %v", err)
	}
	written, err := seed.Apply(ctx, repos.Prefs)
	if err != nil {
		log.Fatalf("Failed to apply prefs seed: %v", err)
	}
	if len(written) > 0 {
		fmt.Printf("[Mirror] Seeded prefs: %v\n", written)
	}

	// Broadcast spool
	var broadcaster repo.Broadcaster
	if cfg.Broadcast.Dir != "" {
		b, err := ipc.NewBroadcaster(cfg.Broadcast.Dir)
		if err != nil {
			log.Fatalf("Failed to create broadcaster: %v", err)
		}
		broadcaster = b
		fmt.Printf("[Mirror] Broadcasting to %s\n", cfg.Broadcast.Dir)
	}

	// Initialize usecase layer
	ucs := biz.NewUsecases(repos.Prefs, repos.Log, broadcaster)

	// Live channel
	hub := channel.NewHub(ucs.Router)
	var sinks []channel.Sink
	if cfg.Feishu.Enabled() {
		client := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
		sinks = append(sinks, feishu.NewSink(client, cfg.Feishu.ChatID))
		fmt.Printf("[Mirror] Feishu mirror enabled for chat %s\n", cfg.Feishu.ChatID)
	}

	// Broadcast receiver
	var receiver service.IntentReceiver
	if cfg.Broadcast.Receive {
		r, err := ipc.NewReceiver(cfg.Broadcast.Dir, ucs.Receiver.OnReceive)
		if err != nil {
			log.Fatalf("Failed to create broadcast receiver: %v", err)
		}
		receiver = r
	}

	// Initialize service layer
	perms := service.StaticPermissions{ReadSms: cfg.Host.SmsReadPermission}
	relay := service.NewRelayService(repos.Prefs, repos.Sms, perms, ucs.Router, receiver, repos.Log)

	apiServer := api.NewServer(ucs.Capture, ucs.Prefs, repos.Sms, repos.Log, relay, hub.ServeWS, cfg.API.Addr)
	srv := server.NewMirrorServer(relay, hub, apiServer, sinks...)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		srv.Stop()
	}()

	fmt.Println("Starting msg-mirror...")
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
