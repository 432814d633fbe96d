package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oomslab/ooms-core/internal/common/config"
	"github.com/oomslab/ooms-core/internal/store"
	"github.com/oomslab/ooms-core/pkg/logger"
	"github.com/oomslab/ooms-core/pkg/version"
)

var (
	configPath string
	actorID    int64

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ooms-core",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ooms-core version %s\n", version.Get())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and run data migrations, then exit",
		Run: func(cmd *cobra.Command, args []string) {
			s, lg := open()
			defer s.Close()
			lg.Info("migration complete")
		},
	}

	closeMonthCmd = &cobra.Command{
		Use:   "close-month YYYY-MM",
		Short: "Lock every order of the given month for payroll export",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s, lg := open()
			defer s.Close()

			year, month, err := parseMonthKey(args[0])
			if err != nil {
				lg.Fatal("invalid month argument", zap.String("month", args[0]), zap.Error(err))
			}
			if err := s.LockMonth(context.Background(), year, month, actorID); err != nil {
				lg.Fatal("failed to close month", zap.String("month", args[0]), zap.Error(err))
			}
			lg.Info("month closed", zap.String("month", args[0]))
		},
	}

	rootCmd = &cobra.Command{
		Use:   "ooms-core",
		Short: "Boxed-meal order ledger",
		Long:  `ooms-core keeps the facility's boxed-meal order ledger: orders, weekly saves, month closing, and the audit trail.`,
		Run: func(cmd *cobra.Command, args []string) {
			s, lg := open()
			defer s.Close()
			lg.Info("store ready", zap.String("version", version.Get()))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", defaultConfigPath, "path to configuration file")
	closeMonthCmd.Flags().Int64Var(&actorID, "actor", 1, "user id recorded as the closing actor")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(closeMonthCmd)
}

const defaultConfigPath = "configs/ooms.yaml"

// open loads configuration, builds the logger, and opens an
// initialized store. Any failure here is fatal.
func open() (*store.Store, *zap.Logger) {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	lg = lg.With(zap.String("run_id", uuid.NewString()))
	lg.Info("configuration loaded", zap.String("path", cfgPath))

	s, err := store.New(lg, &cfg.Database)
	if err != nil {
		lg.Fatal("failed to open database", zap.Error(err))
	}
	if err := s.Init(context.Background()); err != nil {
		lg.Fatal("failed to initialize store", zap.Error(err))
	}
	return s, lg
}

func parseMonthKey(key string) (int, int, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected YYYY-MM, got %q", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", parts[1])
	}
	return year, month, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
