package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberveil/mudlark/internal/logging"
	"github.com/emberveil/mudlark/internal/zoneserver"
)

var (
	devAddr   string
	devToken  string
	devNPC    bool
	devRecent int
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run a local zone server for offline play",
	Long: `Starts an in-memory zone server that speaks the same protocol as
the hosted backend. Zones spring into being on first join, recent chat
is replayed to new arrivals, and everything vanishes with the process.

Point the client at it:

  mudlark dev-server &
  MUDLARK_TOKEN=dev mudlark --character hero --zone meadow`,
	RunE: runDevServer,
}

func init() {
	devServerCmd.Flags().StringVar(&devAddr, "addr", "127.0.0.1:8600", "Listen address")
	devServerCmd.Flags().StringVar(&devToken, "fixed-token", "", "Require this exact access token (default: accept any)")
	devServerCmd.Flags().BoolVar(&devNPC, "npc", true, "Enable the greeter NPC")
	devServerCmd.Flags().IntVar(&devRecent, "recent", 0, "Recent events replayed to joiners (default 50)")
	rootCmd.AddCommand(devServerCmd)
}

func runDevServer(cmd *cobra.Command, args []string) error {
	// The dev server always logs verbosely; it exists to be watched.
	log, err := logging.New(true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signalContext()
	defer cancel()

	srv := zoneserver.New(zoneserver.Options{
		Token:       devToken,
		NPC:         devNPC,
		RecentLimit: devRecent,
		Logger:      log,
	})

	if devToken == "" {
		fmt.Printf("Zone server on ws://%s (any non-empty access token accepted)\n", devAddr)
	} else {
		fmt.Printf("Zone server on ws://%s (fixed access token required)\n", devAddr)
	}
	return srv.ListenAndServe(ctx, devAddr)
}
