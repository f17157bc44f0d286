package wardbot

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// ModuleID is a case-insensitive module identifier
type ModuleID string

// CommandID is a case-insensitive command identifier
type CommandID string

// Module monitors all incoming requests depending on what module interfaces they implement
type Module interface {
	Name() string
	Commands() []Command
	Description(*GuildInfo) string
}

// Giving each possible hook function its own interface ensures each module
// only has to define functions for the hooks it actually cares about

// ModuleOnMessageCreate hook interface
type ModuleOnMessageCreate interface {
	Module
	OnMessageCreate(*GuildInfo, *discordgo.Message)
}

// ModuleOnGuildMemberAdd hook interface
type ModuleOnGuildMemberAdd interface {
	Module
	OnGuildMemberAdd(*GuildInfo, *discordgo.Member, time.Time)
}

// ModuleOnGuildMemberRemove hook interface
type ModuleOnGuildMemberRemove interface {
	Module
	OnGuildMemberRemove(*GuildInfo, *discordgo.Member, time.Time)
}

// ModuleOnGuildMemberUpdate hook interface
type ModuleOnGuildMemberUpdate interface {
	Module
	OnGuildMemberUpdate(*GuildInfo, *discordgo.Member, time.Time)
}

// ModuleOnUserUpdate hook interface
type ModuleOnUserUpdate interface {
	Module
	OnUserUpdate(*GuildInfo, *discordgo.User)
}

// ModuleOnCommand hook interface
type ModuleOnCommand interface {
	Module
	OnCommand(*GuildInfo, *discordgo.Message) bool
}

// ModuleOnTick hook interface
type ModuleOnTick interface {
	Module
	OnTick(*GuildInfo, time.Time)
}

// CommandUsageParam describes a single parameter to a command
type CommandUsageParam struct {
	Name     string
	Desc     string
	Optional bool
	Variadic bool
}

// CommandUsage defines the help parameters for a command
type CommandUsage struct {
	Desc   string
	Params []CommandUsageParam
}

// CommandInfo defines the properties of a command
type CommandInfo struct {
	Name       string
	Usage      string
	Sensitive  bool
	Restricted bool
}

// Command is any command that is addressed to the bot, optionally restricted by role.
type Command interface {
	Info() *CommandInfo
	Process([]string, *discordgo.Message, []int, *GuildInfo) (string, bool, *discordgo.MessageEmbed)
	Usage(*GuildInfo) *CommandUsage
}

// ReturnError formats an error as a return value from a command's Process function
func ReturnError(err error) (string, bool, *discordgo.MessageEmbed) {
	return "```\nError: " + err.Error() + "```", false, nil
}

type moduleHooks struct {
	OnMessageCreate     []ModuleOnMessageCreate
	OnGuildMemberAdd    []ModuleOnGuildMemberAdd
	OnGuildMemberRemove []ModuleOnGuildMemberRemove
	OnGuildMemberUpdate []ModuleOnGuildMemberUpdate
	OnUserUpdate        []ModuleOnUserUpdate
	OnCommand           []ModuleOnCommand
	OnTick              []ModuleOnTick
}

// RegisterModule registers a module with this guild
func (info *GuildInfo) RegisterModule(m Module) {
	if h, ok := m.(ModuleOnMessageCreate); ok {
		info.hooks.OnMessageCreate = append(info.hooks.OnMessageCreate, h)
	}
	if h, ok := m.(ModuleOnGuildMemberAdd); ok {
		info.hooks.OnGuildMemberAdd = append(info.hooks.OnGuildMemberAdd, h)
	}
	if h, ok := m.(ModuleOnGuildMemberRemove); ok {
		info.hooks.OnGuildMemberRemove = append(info.hooks.OnGuildMemberRemove, h)
	}
	if h, ok := m.(ModuleOnGuildMemberUpdate); ok {
		info.hooks.OnGuildMemberUpdate = append(info.hooks.OnGuildMemberUpdate, h)
	}
	if h, ok := m.(ModuleOnUserUpdate); ok {
		info.hooks.OnUserUpdate = append(info.hooks.OnUserUpdate, h)
	}
	if h, ok := m.(ModuleOnCommand); ok {
		info.hooks.OnCommand = append(info.hooks.OnCommand, h)
	}
	if h, ok := m.(ModuleOnTick); ok {
		info.hooks.OnTick = append(info.hooks.OnTick, h)
	}
}
