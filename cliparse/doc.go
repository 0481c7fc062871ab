// Copyright (c) 2026 Pavel Karpov.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: server listen port (default: 3319)
  - DatabaseURL: sqlite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - TransportURL: chat bridge base URL (required)
  - SheetURL: attendance sheet base URL (optional)
  - CandidateFile: partition candidate YAML to seed (optional)
  - OperatorKeySalt: secret for the operator key HMAC (required)
  - OwnerChatID: chat id receiving failure notifications (required)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--transport      Chat bridge base URL
	--sheet          Attendance sheet base URL
	--candidates     Candidate YAML path
	--operator-salt  Operator key salt
	--owner          Owner chat id

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	TRANSPORT_URL     → --transport
	SHEET_URL         → --sheet
	CANDIDATE_FILE    → --candidates
	OPERATOR_KEY_SALT → --operator-salt
	OWNER_CHAT_ID     → --owner

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - TRANSPORT_URL must be provided
  - OPERATOR_KEY_SALT must be provided
  - OWNER_CHAT_ID must be provided

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	// ...
*/
package cliparse
