package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/schedula/internal/profile"
	"github.com/hrygo/schedula/server"
	"github.com/hrygo/schedula/store"
	"github.com/hrygo/schedula/store/db"
)

const greetingBanner = `Schedula - scheduling assistant`

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "schedula",
	Short: "A scheduling assistant with a natural-language chat API",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		instanceProfile := &profile.Profile{
			Mode:       viper.GetString("mode"),
			Addr:       viper.GetString("addr"),
			Port:       viper.GetInt("port"),
			Data:       viper.GetString("data"),
			Driver:     viper.GetString("driver"),
			DSN:        viper.GetString("dsn"),
			Anchor:     viper.GetString("anchor"),
			SessionTTL: viper.GetDuration("session-ttl"),
			Version:    version,
		}
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("failed to validate profile: %w", err)
		}

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		if instanceProfile.Mode == "demo" {
			if err := storeInstance.SeedDemoBookings(ctx, instanceProfile.AnchorTime()); err != nil {
				return fmt.Errorf("failed to seed demo bookings: %w", err)
			}
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		printGreetings(instanceProfile)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig.String())
		case <-ctx.Done():
		}

		s.Shutdown(context.Background())
		return nil
	},
}

func printGreetings(p *profile.Profile) {
	fmt.Println(greetingBanner)
	slog.Info("schedula started",
		"version", p.Version,
		"mode", p.Mode,
		"address", fmt.Sprintf("%s:%d", p.Addr, p.Port),
		"driver", p.Driver)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run command", "error", err)
		os.Exit(1)
	}
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8082)
	viper.SetDefault("session-ttl", 30*time.Minute)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8082, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("anchor", "", "fixed reference instant (RFC 3339) for the assistant clock")
	rootCmd.PersistentFlags().Duration("session-ttl", 30*time.Minute, "idle lifetime of chat sessions")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "anchor", "session-ttl"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("schedula")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
