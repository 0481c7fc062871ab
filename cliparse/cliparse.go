package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	OperatorKeySalt string
	OwnerChatID     int64
	TransportURL    string
	SheetURL        string
	CandidateFile   string
}

// ParseFlags validates flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("matchnight", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.TransportURL, "transport", "", "Chat bridge base URL")
	fs.StringVar(&cfg.SheetURL, "sheet", "", "Attendance sheet base URL (optional)")
	fs.StringVar(&cfg.CandidateFile, "candidates", "", "Partition candidate YAML to seed (optional)")

	// Secrets and identity (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.OperatorKeySalt, "operator-salt", "", "Operator key salt (prefer env)")
	fs.Int64Var(&cfg.OwnerChatID, "owner", 0, "Owner chat id (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3319 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	if cfg.TransportURL == "" {
		cfg.TransportURL = os.Getenv("TRANSPORT_URL")
	}
	if cfg.TransportURL == "" {
		return Config{}, errors.New("TRANSPORT_URL required (chat bridge base URL)")
	}
	if cfg.SheetURL == "" {
		cfg.SheetURL = os.Getenv("SHEET_URL")
	}
	if cfg.CandidateFile == "" {
		cfg.CandidateFile = os.Getenv("CANDIDATE_FILE")
	}

	// Secrets - MUST be provided
	if cfg.OperatorKeySalt == "" {
		cfg.OperatorKeySalt = os.Getenv("OPERATOR_KEY_SALT")
	}
	if cfg.OperatorKeySalt == "" {
		return Config{}, errors.New("OPERATOR_KEY_SALT required")
	}

	if cfg.OwnerChatID == 0 {
		if ownerStr := os.Getenv("OWNER_CHAT_ID"); ownerStr != "" {
			owner, err := strconv.ParseInt(ownerStr, 10, 64)
			if err != nil {
				return Config{}, errors.New("invalid OWNER_CHAT_ID env variable")
			}
			cfg.OwnerChatID = owner
		}
	}
	if cfg.OwnerChatID == 0 {
		return Config{}, errors.New("OWNER_CHAT_ID required")
	}

	return cfg, nil
}
