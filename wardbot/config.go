package wardbot

import (
	env "github.com/caarlos0/env/v11"
)

// EnvConfig is the process-level configuration, read from the environment
type EnvConfig struct {
	Token        string `env:"WARD_TOKEN,required"`
	DBConn       string `env:"WARD_DB" envDefault:"root@tcp(127.0.0.1:3306)/wardbot?parseTime=true&collation=utf8mb4_general_ci"`
	Owner        string `env:"WARD_OWNER"`
	MainGuild    string `env:"WARD_MAINGUILD"`
	OverridePath string `env:"WARD_JOIN_OVERRIDES" envDefault:"overrides.toml"`
	Debug        bool   `env:"WARD_DEBUG"`
}

// LoadEnvConfig parses the process configuration out of the environment
func LoadEnvConfig() (EnvConfig, error) {
	return env.ParseAs[EnvConfig]()
}

// BotConfig lists all bot configuration options for a guild, persisted as a JSON file per guild
type BotConfig struct {
	Basic struct {
		CommandPrefix string            `json:"commandprefix"`
		ModRole       DiscordRole       `json:"modrole"`
		Aliases       map[string]string `json:"aliases"`
	} `json:"basic"`
	Log struct {
		Channel  DiscordChannel `json:"channel"`
		Cooldown int64          `json:"cooldown"`
	} `json:"log"`
	Users struct {
		TimezoneLocation string         `json:"timezonelocation"`
		NotifyChannel    DiscordChannel `json:"notifychannel"`
		TrackUserLeft    bool           `json:"trackuserleft"`
	} `json:"users"`
	Modules struct {
		Channels        map[ModuleID]map[DiscordChannel]bool  `json:"modulechannels"`
		Disabled        map[ModuleID]bool                     `json:"moduledisabled"`
		CommandRoles    map[CommandID]map[DiscordRole]bool    `json:"commandroles"`
		CommandChannels map[CommandID]map[DiscordChannel]bool `json:"commandchannels"`
		CommandDisabled map[CommandID]bool                    `json:"commanddisabled"`
	} `json:"modules"`
}

// DefaultConfig returns a default BotConfig
func DefaultConfig() *BotConfig {
	config := &BotConfig{}
	config.Basic.CommandPrefix = "!"
	config.Log.Cooldown = 4
	config.FillConfig()
	return config
}

// FillConfig ensures all maps are non-nil so the config can be modified without nil checks
func (config *BotConfig) FillConfig() {
	if config.Basic.Aliases == nil {
		config.Basic.Aliases = make(map[string]string)
	}
	if config.Modules.Channels == nil {
		config.Modules.Channels = make(map[ModuleID]map[DiscordChannel]bool)
	}
	if config.Modules.Disabled == nil {
		config.Modules.Disabled = make(map[ModuleID]bool)
	}
	if config.Modules.CommandRoles == nil {
		config.Modules.CommandRoles = make(map[CommandID]map[DiscordRole]bool)
	}
	if config.Modules.CommandChannels == nil {
		config.Modules.CommandChannels = make(map[CommandID]map[DiscordChannel]bool)
	}
	if config.Modules.CommandDisabled == nil {
		config.Modules.CommandDisabled = make(map[CommandID]bool)
	}
}

// IsModuleDisabled returns true if the module is disabled on this guild
func (config *BotConfig) IsModuleDisabled(module Module) bool {
	return config.Modules.Disabled[ModuleID(module.Name())]
}

// IsCommandDisabled returns true if the command is disabled on this guild
func (config *BotConfig) IsCommandDisabled(command Command) bool {
	return config.Modules.CommandDisabled[CommandID(command.Info().Name)]
}
