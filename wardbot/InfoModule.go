package wardbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// InfoModule contains help and about commands
type InfoModule struct {
}

// Name of the module
func (w *InfoModule) Name() string {
	return "Information"
}

// Commands in the module
func (w *InfoModule) Commands() []Command {
	return []Command{
		&helpCommand{},
		&aboutCommand{},
	}
}

// Description of the module
func (w *InfoModule) Description(info *GuildInfo) string {
	return "Contains commands for getting information about the bot, commands, or the server the bot is in."
}

type helpCommand struct {
}

func (c *helpCommand) Info() *CommandInfo {
	return &CommandInfo{
		Name:  "Help",
		Usage: "Generates the list you are looking at right now.",
	}
}

func disabledSuffix(disabled bool) string {
	if disabled {
		return " [disabled]"
	}
	return ""
}

// DumpCommandsModules dumps information about all commands and modules
func DumpCommandsModules(info *GuildInfo, footer string, description string, msg *discordgo.Message) *discordgo.MessageEmbed {
	showdisabled := info.UserIsMod(DiscordUser(msg.Author.ID))
	fields := make([]*discordgo.MessageEmbedField, 0, len(info.Modules))
	for _, v := range info.Modules {
		rawcmds := v.Commands()
		cmds := make([]Command, 0, len(rawcmds))
		for _, c := range rawcmds {
			if _, err := info.UserCanUseCommand(DiscordUser(msg.Author.ID), c, false); err == nil {
				cmds = append(cmds, c)
			}
		}
		disabled := info.Config.IsModuleDisabled(v)
		if len(cmds) > 0 {
			s := make([]string, 0, len(cmds))
			for _, c := range cmds {
				s = append(s, c.Info().Name+disabledSuffix(info.Config.IsCommandDisabled(c)))
			}
			if !disabled || len(s) > 0 || showdisabled {
				fields = append(fields, &discordgo.MessageEmbedField{Name: "**" + v.Name() + disabledSuffix(disabled) + "**", Value: strings.Join(s, "\n"), Inline: true})
			}
		} else if !disabled || showdisabled {
			fields = append(fields, &discordgo.MessageEmbedField{Name: "**" + v.Name() + disabledSuffix(disabled) + "**", Value: "*[no commands]*", Inline: true})
		}
	}
	return &discordgo.MessageEmbed{
		Type: "rich",
		Author: &discordgo.MessageEmbedAuthor{
			Name:    info.Bot.AppName + " Commands",
			IconURL: fmt.Sprintf("https://cdn.discordapp.com/avatars/%v/%s.jpg", info.Bot.SelfID, info.Bot.SelfAvatar),
		},
		Description: description,
		Color:       0x3e92e5,
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: footer,
		},
	}
}

func (c *helpCommand) Process(args []string, msg *discordgo.Message, indices []int, info *GuildInfo) (string, bool, *discordgo.MessageEmbed) {
	if len(args) == 0 {
		return "", true, DumpCommandsModules(info, "For more information on a specific command, type "+info.Config.Basic.CommandPrefix+"help [command].", "", msg)
	}
	arg := strings.ToLower(args[0])
	for _, v := range info.Modules {
		if strings.Compare(strings.ToLower(v.Name()), arg) == 0 {
			cmds := v.Commands()
			fields := make([]*discordgo.MessageEmbedField, 0, len(cmds))
			for _, c := range cmds {
				if _, err := info.UserCanUseCommand(DiscordUser(msg.Author.ID), c, false); err == nil {
					fields = append(fields, &discordgo.MessageEmbedField{Name: "**" + c.Info().Name + "**" + disabledSuffix(info.Config.IsCommandDisabled(c)), Value: c.Info().Usage, Inline: false})
				}
			}
			color := 0x56d34f
			if info.Config.IsModuleDisabled(v) {
				color = 0xd54141
			}

			embed := &discordgo.MessageEmbed{
				Type: "rich",
				Author: &discordgo.MessageEmbedAuthor{
					Name:    v.Name() + " Module Command List" + disabledSuffix(info.Config.IsModuleDisabled(v)),
					IconURL: fmt.Sprintf("https://cdn.discordapp.com/avatars/%v/%s.jpg", info.Bot.SelfID, info.Bot.SelfAvatar),
				},
				Color:       color,
				Description: v.Description(info),
				Fields:      fields,
				Footer: &discordgo.MessageEmbedFooter{
					Text: "For more information on a specific command, type " + info.Config.Basic.CommandPrefix + "help [command].",
				},
			}
			return "", true, embed
		}
	}
	v, ok := info.commands[CommandID(arg)]
	if !ok {
		return "```\n" + info.GetBotName() + " doesn't recognize that command or module. You can check what commands " + info.GetBotName() + " knows by typing " + info.Config.Basic.CommandPrefix + "help with no arguments.```", false, nil
	}
	return "", true, info.FormatUsage(v, v.Usage(info))
}
func (c *helpCommand) Usage(info *GuildInfo) *CommandUsage {
	return &CommandUsage{
		Desc: "Lists all available commands " + info.GetBotName() + " knows, or gives information about the given command. Of course, you should have figured this out by now, since you just typed " + info.Config.Basic.CommandPrefix + "help help for some reason.",
		Params: []CommandUsageParam{
			{Name: "command/module", Desc: "The command or module to display help for. You do not need to include a command's parent module, just the command name itself.", Optional: true},
		},
	}
}

type aboutCommand struct {
}

func (c *aboutCommand) Info() *CommandInfo {
	return &CommandInfo{
		Name:  "About",
		Usage: "Displays information about the bot.",
	}
}
func (c *aboutCommand) Process(args []string, msg *discordgo.Message, indices []int, info *GuildInfo) (string, bool, *discordgo.MessageEmbed) {
	info.Bot.GuildsLock.RLock()
	servers := int64(len(info.Bot.Guilds))
	info.Bot.GuildsLock.RUnlock()
	embed := &discordgo.MessageEmbed{
		Type: "rich",
		Author: &discordgo.MessageEmbedAuthor{
			Name:    info.GetBotName() + " v" + BotVersion.String(),
			IconURL: fmt.Sprintf("https://cdn.discordapp.com/avatars/%v/%s.png", info.Bot.SelfID, info.Bot.SelfAvatar),
		},
		Color: 0x3e92e5,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "**Library**", Value: "discordgo", Inline: true},
			{Name: "**Owner ID**", Value: info.Bot.Owner.String(), Inline: true},
			{Name: "**Presence**", Value: Pluralize(servers, " server"), Inline: true},
			{Name: "**Uptime**", Value: TimeDiff(SinceUTC(time.Unix(info.Bot.StartTime, 0))), Inline: true},
		},
	}
	return "", false, embed
}
func (c *aboutCommand) Usage(info *GuildInfo) *CommandUsage {
	return &CommandUsage{
		Desc: "Displays information about " + info.Bot.AppName + ". What, did you think it would do something else?",
	}
}
