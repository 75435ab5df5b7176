package main

import (
	// Go Internal Packages
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// Local Packages
	config "paygate/config"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"go.uber.org/zap"
)

var (
	configPath = kingpin.Flag("config", "Path to the application config file").Short('c').Default("config.yml").String()
)

// LoadConfig loads the default configuration and overrides it with the config
// file specified by the config flag and with PAYGATE_ environment variables
// (PAYGATE_REDIS__URI sets redis.uri).
func LoadConfig() *koanf.Koanf {
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	_ = k.Load(env.Provider("PAYGATE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "PAYGATE_")), "__", ".")
	}), nil)
	return k
}

func main() {
	command := kingpin.Parse()

	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.UnmarshalWithConf("", &appKonf, koanf.UnmarshalConf{Tag: "koanf"})
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Publishing needs only kafka; every other command runs the services.
	if command == submitCmd.FullCommand() {
		if err := submit(ctx, appKonf, logger); err != nil {
			logger.Fatal("cannot submit command", zap.Error(err))
		}
		return
	}

	a, err := newApp(ctx, appKonf, logger)
	if err != nil {
		logger.Fatal("cannot start", zap.Error(err))
	}
	defer a.close(context.WithoutCancel(ctx))

	if err := a.run(ctx, command); err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		a.close(context.WithoutCancel(ctx))
		_ = logger.Sync()
		os.Exit(1)
	}
}
