package client

import (
	"fmt"
	"os"
	"path/filepath"
)

// OnboardingStore persists the single "has seen onboarding" flag as a
// marker file. Presence means seen.
type OnboardingStore struct {
	Path string
}

func DefaultOnboardingStore() OnboardingStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return OnboardingStore{Path: filepath.Join(home, ".cuisinehub", "onboarding")}
}

func (s OnboardingStore) Seen() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

func (s OnboardingStore) MarkSeen() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte("1\n"), 0o644); err != nil {
		return fmt.Errorf("write onboarding flag: %w", err)
	}
	return nil
}

// Reset clears the flag. Used by the CLI for demos.
func (s OnboardingStore) Reset() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove onboarding flag: %w", err)
	}
	return nil
}
