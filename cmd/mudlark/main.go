// Command mudlark is a terminal client for Emberveil worlds. Run it
// bare to pick a character and zone and start talking; subcommands
// cover login, account listings and a local dev server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberveil/mudlark/internal/api"
	"github.com/emberveil/mudlark/internal/chat"
	"github.com/emberveil/mudlark/internal/config"
	"github.com/emberveil/mudlark/internal/console"
	"github.com/emberveil/mudlark/internal/logging"
	"github.com/emberveil/mudlark/internal/menu"
)

var (
	// Global flags
	cfgPath   string
	serverURL string
	apiURL    string
	token     string
	debug     bool
	noColor   bool

	// Play flags
	worldID     string
	characterID string
	zoneID      string
)

var errNoToken = errors.New("no access token: pass --token, set MUDLARK_TOKEN, or run mudlark login")

var rootCmd = &cobra.Command{
	Use:   "mudlark",
	Short: "Mudlark, a terminal client for Emberveil worlds",
	Long: `Mudlark connects a character to a zone of an Emberveil world and
turns your terminal into the conversation: lines you type are said
aloud, slash commands emote, travel and interact.

Run without arguments to pick a world, character and zone and start
playing. Type /help inside a session for the command list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Zone server base URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Account API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Access token (or set MUDLARK_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.Flags().StringVar(&worldID, "world", "", "World id")
	rootCmd.Flags().StringVar(&characterID, "character", "", "Character id")
	rootCmd.Flags().StringVar(&zoneID, "zone", "", "Zone id")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tok := resolveToken(cfg)
	if tok == "" {
		return errNoToken
	}

	ctx, cancel := signalContext()
	defer cancel()

	world := firstNonEmpty(worldID, cfg.Defaults.WorldID)
	character := firstNonEmpty(characterID, cfg.Defaults.CharacterID)
	zone := firstNonEmpty(zoneID, cfg.Defaults.ZoneID)

	if character == "" || zone == "" {
		world, character, zone, err = pickTargets(ctx, cfg, tok, world, character, zone)
		if err != nil {
			return err
		}
	}

	out := console.New(console.Options{Out: os.Stdout, NoColor: cfg.NoColor, Logger: log})
	sess := chat.NewSession(chat.Options{
		ServerURL: cfg.ServerURL,
		Token:     tok,
		KeepAlive: cfg.KeepAlive.Std(),
		Logger:    log,
	}, out.Sink())

	out.Local(chat.Effect{Kind: chat.EffectNotice, Text: "Type /help for commands, /exit to leave."})

	return sess.Run(ctx, character, zone, chat.Lines(ctx, os.Stdin))
}

// pickTargets fills in missing ids through the interactive menus.
func pickTargets(ctx context.Context, cfg *config.Config, tok, world, character, zone string) (string, string, string, error) {
	if !menu.HasTTY {
		return "", "", "", errors.New("character and zone ids are required: set defaults in config or pass --character and --zone")
	}

	client := api.New(cfg.APIURL, tok)

	if world == "" {
		w, err := menu.PickWorld(ctx, client)
		if err != nil {
			return "", "", "", err
		}
		world = w.ID
	}
	if character == "" {
		c, err := menu.PickCharacter(ctx, client, world)
		if err != nil {
			return "", "", "", err
		}
		character = c.ID
	}
	if zone == "" {
		z, err := menu.PickZone(ctx, client, world)
		if err != nil {
			return "", "", "", err
		}
		zone = z.ID
	}
	return world, character, zone, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if debug {
		cfg.Debug = true
	}
	if noColor {
		cfg.NoColor = true
	}
	return cfg, nil
}

// resolveToken picks the access token: flag, then environment, then
// config file.
func resolveToken(cfg *config.Config) string {
	if token != "" {
		return token
	}
	if env := os.Getenv("MUDLARK_TOKEN"); env != "" {
		return env
	}
	return cfg.Token
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
