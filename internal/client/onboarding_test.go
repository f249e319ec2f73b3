package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnboardingFlagRoundTrip(t *testing.T) {
	store := OnboardingStore{Path: filepath.Join(t.TempDir(), "state", "onboarding")}

	require.False(t, store.Seen())
	require.NoError(t, store.MarkSeen())
	require.True(t, store.Seen())

	// marking twice is harmless
	require.NoError(t, store.MarkSeen())
	require.True(t, store.Seen())

	require.NoError(t, store.Reset())
	require.False(t, store.Seen())
	require.NoError(t, store.Reset())
}
