package config

import "testing"

func TestLoadMinPlayersFloor(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "2")
	if cfg := Load(); cfg.MinPlayers != 4 {
		t.Fatalf("MIN_PLAYERS=2 accepted: %d", cfg.MinPlayers)
	}

	t.Setenv("MIN_PLAYERS", "6")
	if cfg := Load(); cfg.MinPlayers != 6 {
		t.Fatalf("MIN_PLAYERS=6 rejected: %d", cfg.MinPlayers)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_PLAYERS", "lots")
	t.Setenv("VOTING_SECONDS", "")
	cfg := Load()
	defaults := Default()
	if cfg.MaxPlayers != defaults.MaxPlayers {
		t.Fatalf("malformed MAX_PLAYERS accepted: %d", cfg.MaxPlayers)
	}
	if cfg.VotingDurationSeconds != defaults.VotingDurationSeconds {
		t.Fatalf("empty VOTING_SECONDS overrode the default: %d", cfg.VotingDurationSeconds)
	}
}
