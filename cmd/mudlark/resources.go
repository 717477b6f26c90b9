package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberveil/mudlark/internal/api"
	"github.com/emberveil/mudlark/internal/config"
	"github.com/emberveil/mudlark/internal/menu"
)

var (
	zonesWorld      string
	charactersWorld string
)

var worldsCmd = &cobra.Command{
	Use:   "worlds",
	Short: "List the worlds available to the account",
	RunE:  runWorlds,
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the zones of a world",
	RunE:  runZones,
}

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List the account's characters in a world",
	RunE:  runCharacters,
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the account's AI interaction quota",
	RunE:  runUsage,
}

func init() {
	zonesCmd.Flags().StringVar(&zonesWorld, "world", "", "World id")
	charactersCmd.Flags().StringVar(&charactersWorld, "world", "", "World id")
	rootCmd.AddCommand(worldsCmd, zonesCmd, charactersCmd, usageCmd)
}

// apiClient builds an authenticated client from config and flags.
func apiClient() (*api.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	tok := resolveToken(cfg)
	if tok == "" {
		return nil, nil, errNoToken
	}
	return api.New(cfg.APIURL, tok), cfg, nil
}

// resolveWorld picks the world id from the flag, the config defaults,
// or the interactive picker.
func resolveWorld(ctx context.Context, client *api.Client, flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Defaults.WorldID != "" {
		return cfg.Defaults.WorldID, nil
	}
	if !menu.HasTTY {
		return "", errors.New("a world id is required: pass --world or set defaults.world_id in config")
	}
	w, err := menu.PickWorld(ctx, client)
	if err != nil {
		return "", err
	}
	return w.ID, nil
}

func runWorlds(cmd *cobra.Command, args []string) error {
	client, _, err := apiClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	worlds, err := client.Worlds(ctx)
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Println("No worlds available.")
		return nil
	}
	for _, w := range worlds {
		fmt.Printf("%-28s %s\n", w.ID, w.Name)
		if w.Description != "" {
			fmt.Printf("%-28s %s\n", "", w.Description)
		}
	}
	return nil
}

func runZones(cmd *cobra.Command, args []string) error {
	client, cfg, err := apiClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	world, err := resolveWorld(ctx, client, zonesWorld, cfg)
	if err != nil {
		return err
	}

	zones, err := client.Zones(ctx, world)
	if err != nil {
		return err
	}
	if len(zones) == 0 {
		fmt.Println("No zones in this world.")
		return nil
	}
	for _, z := range zones {
		fmt.Printf("%-28s %s\n", z.ID, z.Name)
		if z.Description != "" {
			fmt.Printf("%-28s %s\n", "", z.Description)
		}
	}
	return nil
}

func runCharacters(cmd *cobra.Command, args []string) error {
	client, cfg, err := apiClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	world, err := resolveWorld(ctx, client, charactersWorld, cfg)
	if err != nil {
		return err
	}

	characters, err := client.Characters(ctx, world)
	if err != nil {
		return err
	}
	if len(characters) == 0 {
		fmt.Println("No characters in this world yet. Run mudlark to create one.")
		return nil
	}
	for _, c := range characters {
		label := c.Name
		if c.IsAI {
			label += " (AI)"
		}
		fmt.Printf("%-28s %s\n", c.ID, label)
	}
	return nil
}

func runUsage(cmd *cobra.Command, args []string) error {
	client, _, err := apiClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	u, err := client.Usage(ctx)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("%d/%d AI interactions used", u.InteractionsUsed, u.InteractionsLimit)
	if u.Premium {
		line += " (premium)"
	}
	fmt.Println(line)
	return nil
}
