package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberveil/mudlark/internal/api"
)

// withoutTTY forces the no-terminal path regardless of where the tests
// run.
func withoutTTY(t *testing.T) {
	t.Helper()
	saved := HasTTY
	HasTTY = false
	t.Cleanup(func() { HasTTY = saved })
}

func TestPickersRequireTerminal(t *testing.T) {
	withoutTTY(t)
	ctx := context.Background()

	_, err := PickWorld(ctx, nil)
	require.ErrorIs(t, err, ErrNoTTY)

	_, err = PickCharacter(ctx, nil, "w1")
	require.ErrorIs(t, err, ErrNoTTY)

	_, err = PickZone(ctx, nil, "w1")
	require.ErrorIs(t, err, ErrNoTTY)

	_, _, err = Credentials("sam@example.net")
	require.ErrorIs(t, err, ErrNoTTY)
}

func TestWorldLabel(t *testing.T) {
	assert.Equal(t, "Emberveil", worldLabel(api.World{Name: "Emberveil"}))
	assert.Equal(t, "Emberveil  · A world of ash and lanterns",
		worldLabel(api.World{Name: "Emberveil", Description: "A world of ash and lanterns"}))
}

func TestNotEmpty(t *testing.T) {
	assert.Error(t, notEmpty(""))
	assert.NoError(t, notEmpty("Aldric"))
}

// withSpinner must still run the wrapped work when no terminal is
// attached, or every picker would hang headless.
func TestWithSpinnerRunsWithoutTerminal(t *testing.T) {
	withoutTTY(t)

	ran := false
	withSpinner("working...", func() { ran = true })
	assert.True(t, ran)
}
