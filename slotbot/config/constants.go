package config

import "time"

// UI and display
const (
	SlotsPerPage = 8

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
)

// Timeouts
const (
	CommandExecutionTimeout = 10 * time.Second
	SlowCommandThreshold    = 2 * time.Second
	ProvisionTimeout        = 30 * time.Second
	ShutdownTimeout         = 10 * time.Second
	StartupTimeout          = 2 * time.Minute
	PresenceTimeout         = 5 * time.Second
)

// Prompt sessions
const (
	MinPromptTimeout     = 30 * time.Second
	MaxPromptTimeout     = 120 * time.Second
	DefaultPromptTimeout = 30 * time.Second
)

// Autocomplete and caches
const (
	MaxAutocompleteChoices = 25
	DMChannelCacheSize     = 1024
)
