package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	TelegramToken            string
	MinPlayers               int
	MaxPlayers               int
	ImpostorRatio            int
	TasksPerCrewmate         int
	ActionDurationSeconds    int
	VotingDurationSeconds    int
	CleanupIntervalSeconds   int
	SessionRetentionHours    int
	QueueRetentionHours      int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	HFAPIKey                 string
	HFModel                  string
	HFTimeoutSeconds         int
}

func Default() Config {
	return Config{
		MinPlayers:               4,
		MaxPlayers:               10,
		ImpostorRatio:            5,
		TasksPerCrewmate:         2,
		ActionDurationSeconds:    90,
		VotingDurationSeconds:    60,
		CleanupIntervalSeconds:   3600,
		SessionRetentionHours:    24,
		QueueRetentionHours:      6,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		HFModel:                  "HuggingFaceH4/zephyr-7b-beta",
		HFTimeoutSeconds:         8,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("TELEGRAM_TOKEN"); raw != "" {
		cfg.TelegramToken = raw
	}
	// Below four players the first parity check decides the game, so lower
	// values are ignored.
	if raw := os.Getenv("MIN_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 4 {
			cfg.MinPlayers = value
		}
	}
	if raw := os.Getenv("MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.MaxPlayers = value
		}
	}
	if raw := os.Getenv("IMPOSTOR_RATIO"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ImpostorRatio = value
		}
	}
	if raw := os.Getenv("TASKS_PER_CREWMATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.TasksPerCrewmate = value
		}
	}
	if raw := os.Getenv("ACTION_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.ActionDurationSeconds = value
		}
	}
	if raw := os.Getenv("VOTING_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.VotingDurationSeconds = value
		}
	}
	if raw := os.Getenv("CLEANUP_INTERVAL_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CleanupIntervalSeconds = value
		}
	}
	if raw := os.Getenv("SESSION_RETENTION_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionRetentionHours = value
		}
	}
	if raw := os.Getenv("QUEUE_RETENTION_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.QueueRetentionHours = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("HF_API_KEY"); raw != "" {
		cfg.HFAPIKey = raw
	}
	if raw := os.Getenv("HF_MODEL"); raw != "" {
		cfg.HFModel = raw
	}
	if raw := os.Getenv("HF_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.HFTimeoutSeconds = value
		}
	}
	return cfg
}
