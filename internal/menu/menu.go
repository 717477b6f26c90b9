// Package menu drives the interactive world/character/zone pickers used
// when `mudlark play` is missing ids. Menus need a real terminal; callers
// must check HasTTY before invoking them.
package menu

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"

	"github.com/emberveil/mudlark/internal/api"
)

// HasTTY reports whether stdin and stdout are attached to a terminal.
var HasTTY = isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

// ErrNoTTY is returned when a picker is invoked without a terminal.
var ErrNoTTY = errors.New("interactive menu requires a terminal")

// createSentinel marks the "create a new character" option in the
// character picker. Real ids are UUIDs and cannot collide with it.
const createSentinel = "\x00create"

// PickWorld lists the worlds and asks the user to choose one.
func PickWorld(ctx context.Context, client *api.Client) (*api.World, error) {
	if !HasTTY {
		return nil, ErrNoTTY
	}

	var worlds []api.World
	var err error
	withSpinner("Fetching worlds...", func() {
		worlds, err = client.Worlds(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	if len(worlds) == 0 {
		return nil, errors.New("no worlds available")
	}

	opts := make([]huh.Option[string], 0, len(worlds))
	for _, w := range worlds {
		opts = append(opts, huh.NewOption(worldLabel(w), w.ID))
	}

	id, err := selectOne("Choose a world", opts)
	if err != nil {
		return nil, err
	}
	for i := range worlds {
		if worlds[i].ID == id {
			return &worlds[i], nil
		}
	}
	return nil, fmt.Errorf("world %s not in listing", id)
}

// PickCharacter lists the account's characters in a world, with an
// option to create a new one on the spot.
func PickCharacter(ctx context.Context, client *api.Client, worldID string) (*api.Character, error) {
	if !HasTTY {
		return nil, ErrNoTTY
	}

	var chars []api.Character
	var err error
	withSpinner("Fetching characters...", func() {
		chars, err = client.Characters(ctx, worldID)
	})
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	opts := make([]huh.Option[string], 0, len(chars)+1)
	for _, c := range chars {
		label := c.Name
		if c.IsAI {
			label += " (AI)"
		}
		opts = append(opts, huh.NewOption(label, c.ID))
	}
	opts = append(opts, huh.NewOption("+ Create a new character", createSentinel))

	id, err := selectOne("Choose a character", opts)
	if err != nil {
		return nil, err
	}
	if id != createSentinel {
		for i := range chars {
			if chars[i].ID == id {
				return &chars[i], nil
			}
		}
		return nil, fmt.Errorf("character %s not in listing", id)
	}

	name, err := inputLine("Name your character", "Aldric of the Ember Road")
	if err != nil {
		return nil, err
	}

	var created *api.Character
	withSpinner("Creating character...", func() {
		created, err = client.CreateCharacter(ctx, worldID, name)
	})
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return created, nil
}

// PickZone lists the zones of a world and asks the user to choose one.
func PickZone(ctx context.Context, client *api.Client, worldID string) (*api.Zone, error) {
	if !HasTTY {
		return nil, ErrNoTTY
	}

	var zones []api.Zone
	var err error
	withSpinner("Fetching zones...", func() {
		zones, err = client.Zones(ctx, worldID)
	})
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	if len(zones) == 0 {
		return nil, errors.New("no zones in this world")
	}

	opts := make([]huh.Option[string], 0, len(zones))
	for _, z := range zones {
		label := z.Name
		if z.Description != "" {
			label += "  · " + z.Description
		}
		opts = append(opts, huh.NewOption(label, z.ID))
	}

	id, err := selectOne("Choose a zone", opts)
	if err != nil {
		return nil, err
	}
	for i := range zones {
		if zones[i].ID == id {
			return &zones[i], nil
		}
	}
	return nil, fmt.Errorf("zone %s not in listing", id)
}

// Credentials prompts for the email and password used by `mudlark login`.
func Credentials(email string) (string, string, error) {
	if !HasTTY {
		return "", "", ErrNoTTY
	}

	var err error
	if email == "" {
		email, err = inputLine("Email", "you@example.net")
		if err != nil {
			return "", "", err
		}
	}

	var password string
	err = huh.NewInput().
		Title("Password").
		Prompt("> ").
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func worldLabel(w api.World) string {
	if w.Description == "" {
		return w.Name
	}
	return w.Name + "  · " + w.Description
}

func selectOne(title string, opts []huh.Option[string]) (string, error) {
	var selected string
	err := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&selected).
		Run()
	if err != nil {
		return "", err
	}
	return selected, nil
}

func inputLine(title, placeholder string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Prompt("> ").
		Placeholder(placeholder).
		Validate(notEmpty).
		Value(&value).
		Run()
	if err != nil {
		return "", err
	}
	return value, nil
}

func notEmpty(s string) error {
	if s == "" {
		return errors.New("a value is required")
	}
	return nil
}

func withSpinner(title string, fn func()) {
	if !HasTTY {
		fn()
		return
	}
	_ = spinner.New().Title(title).Action(fn).Run()
}
