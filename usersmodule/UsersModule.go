package usersmodule

import (
	"fmt"
	"strings"
	"time"

	bot "github.com/blizzen/wardbot/wardbot"
	"github.com/bwmarrin/discordgo"
)

// UsersModule tracks member identity: name history, profile cards, and
// moderator renames.
type UsersModule struct {
}

// New instance of UsersModule
func New() *UsersModule {
	return &UsersModule{}
}

// Name of the module
func (w *UsersModule) Name() string {
	return "Users"
}

// Commands in the module
func (w *UsersModule) Commands() []bot.Command {
	return []bot.Command{
		&userInfoCommand{},
		&namesCommand{},
		&renameCommand{},
	}
}

// Description of the module
func (w *UsersModule) Description(info *bot.GuildInfo) string {
	return "Tracks username and nickname changes, displays member profiles, and lets moderators rename members."
}

// OnGuildMemberAdd discord hook
func (w *UsersModule) OnGuildMemberAdd(info *bot.GuildInfo, m *discordgo.Member, t time.Time) {
	if info.Config.Users.NotifyChannel != bot.ChannelEmpty {
		age := bot.TimeDiff(t.Sub(bot.SnowflakeTime(bot.SBatoi(m.User.ID))))
		info.SendMessage(info.Config.Users.NotifyChannel, fmt.Sprintf(bot.StringMap[bot.STRING_USERS_JOIN_NOTICE], "<@"+m.User.ID+">", age))
	}
}

// OnGuildMemberRemove discord hook
func (w *UsersModule) OnGuildMemberRemove(info *bot.GuildInfo, m *discordgo.Member, t time.Time) {
	if info.Config.Users.TrackUserLeft && info.Config.Users.NotifyChannel != bot.ChannelEmpty {
		info.SendMessage(info.Config.Users.NotifyChannel, m.User.Username+"#"+m.User.Discriminator+" left.")
	}
}

// OnGuildMemberUpdate discord hook. This fires before the bot updates its
// member bookkeeping, so the store still holds the nickname the member is
// abandoning.
func (w *UsersModule) OnGuildMemberUpdate(info *bot.GuildInfo, m *discordgo.Member, t time.Time) {
	if !info.Bot.DB.CheckStatus() {
		return
	}
	old, _ := info.Bot.DB.GetMember(bot.SBatoi(m.User.ID), bot.SBatoi(info.ID))
	if old != nil && len(old.Nick) > 0 && old.Nick != m.Nick {
		info.Bot.DB.AddNickChange(bot.SBatoi(m.User.ID), bot.SBatoi(info.ID), old.Nick)
	}
}

// OnUserUpdate discord hook, recording the username the user is abandoning
func (w *UsersModule) OnUserUpdate(info *bot.GuildInfo, u *discordgo.User) {
	if !info.Bot.DB.CheckStatus() {
		return
	}
	old, _, _ := info.Bot.DB.GetUser(bot.SBatoi(u.ID))
	if old != nil && len(old.Username) > 0 && old.Username != u.Username {
		info.Bot.DB.AddNameChange(bot.SBatoi(u.ID), old.Username)
	}
}

// countSharedGuilds counts how many of the bot's guilds the user is on
func countSharedGuilds(b *bot.WardBot, userID string) int {
	b.GuildsLock.RLock()
	defer b.GuildsLock.RUnlock()
	n := 0
	for id := range b.Guilds {
		if _, err := b.DG.State.Member(id.String(), userID); err == nil {
			n++
		}
	}
	return n
}

type userInfoCommand struct {
}

func (c *userInfoCommand) Info() *bot.CommandInfo {
	return &bot.CommandInfo{
		Name:  "UserInfo",
		Usage: "Displays a profile card for a member.",
	}
}

func (c *userInfoCommand) Process(args []string, msg *discordgo.Message, indices []int, info *bot.GuildInfo) (string, bool, *discordgo.MessageEmbed) {
	if !info.Bot.DB.CheckStatus() {
		return bot.StringMap[bot.STRING_DATABASE_ERROR], false, nil
	}
	user := bot.DiscordUser(msg.Author.ID)
	if len(args) > 0 {
		var err error
		user, err = bot.ParseUser(msg.Content[indices[0]:], info)
		if err != nil {
			return bot.ReturnError(err)
		}
	}

	m, err := info.Bot.DG.GetMember(user, info.ID)
	if err != nil {
		return fmt.Sprintf(bot.StringMap[bot.STRING_MEMBER_NOT_FOUND], user.Display()), false, nil
	}
	guild, err := info.GetGuild()
	if err != nil {
		return bot.ReturnError(err)
	}
	presence, _ := info.Bot.DG.State.Presence(info.ID, user.String())

	names := getPastNames(info, user)
	nicks := getPastNicks(info, user)
	shared := countSharedGuilds(info.Bot, user.String())
	return "", false, buildProfileCard(info, guild, m, presence, msg, names, nicks, shared)
}
func (c *userInfoCommand) Usage(info *bot.GuildInfo) *bot.CommandUsage {
	return &bot.CommandUsage{
		Desc: "Shows a member's profile: status and activities, account creation and join dates, roles, recorded past names and nicknames, and current voice channel.",
		Params: []bot.CommandUsageParam{
			{Name: "member", Desc: "A ping of the member, or simply their name. Defaults to you.", Optional: true},
		},
	}
}

type namesCommand struct {
}

func (c *namesCommand) Info() *bot.CommandInfo {
	return &bot.CommandInfo{
		Name:  "Names",
		Usage: "Lists the past names and nicknames of a member.",
	}
}

func (c *namesCommand) Process(args []string, msg *discordgo.Message, indices []int, info *bot.GuildInfo) (string, bool, *discordgo.MessageEmbed) {
	if !info.Bot.DB.CheckStatus() {
		return bot.StringMap[bot.STRING_DATABASE_ERROR], false, nil
	}
	if len(args) < 1 {
		return "```\nYou must provide a user to search for.```", false, nil
	}
	user, err := bot.ParseUser(msg.Content[indices[0]:], info)
	if err != nil {
		return bot.ReturnError(err)
	}

	names := getPastNames(info, user)
	nicks := getPastNicks(info, user)
	out := ""
	if len(names) > 0 {
		out += bot.StringMap[bot.STRING_USERS_PAST_NAMES] + "\n" + strings.Join(names, ", ")
	}
	if len(nicks) > 0 {
		if len(out) > 0 {
			out += "\n\n"
		}
		out += bot.StringMap[bot.STRING_USERS_PAST_NICKNAMES] + "\n" + strings.Join(nicks, ", ")
	}
	if len(out) == 0 {
		return bot.StringMap[bot.STRING_USERS_NO_NAMES], false, nil
	}
	return bot.FilterVariousMentions(out), false, nil
}
func (c *namesCommand) Usage(info *bot.GuildInfo) *bot.CommandUsage {
	return &bot.CommandUsage{
		Desc: "Lists the past 20 usernames and past 20 nicknames recorded for the given member.",
		Params: []bot.CommandUsageParam{
			{Name: "member", Desc: "A ping of the member, or simply their name.", Optional: false},
		},
	}
}

type renameCommand struct {
}

func (c *renameCommand) Info() *bot.CommandInfo {
	return &bot.CommandInfo{
		Name:      "Rename",
		Usage:     "Changes a member's nickname.",
		Sensitive: true,
	}
}

func (c *renameCommand) Process(args []string, msg *discordgo.Message, indices []int, info *bot.GuildInfo) (string, bool, *discordgo.MessageEmbed) {
	if len(args) < 1 {
		return "```\nYou must provide a user to rename.```", false, nil
	}
	user, err := bot.ParseUser(args[0], info)
	if err != nil {
		return bot.ReturnError(err)
	}
	nick := ""
	if len(args) > 1 {
		nick = strings.TrimSpace(msg.Content[indices[1]:])
	}
	if !validNickname(nick) {
		return bot.StringMap[bot.STRING_USERS_RENAME_LENGTH], false, nil
	}

	guild, err := info.GetGuild()
	if err != nil {
		return bot.ReturnError(err)
	}
	target, err := info.Bot.DG.GetMember(user, info.ID)
	if err != nil {
		return fmt.Sprintf(bot.StringMap[bot.STRING_MEMBER_NOT_FOUND], args[0]), false, nil
	}
	botMember, err := info.Bot.DG.GetMember(info.Bot.SelfID, info.ID)
	if err != nil {
		return bot.ReturnError(err)
	}
	if !canRenameMember(botMember, target, guild) {
		return bot.StringMap[bot.STRING_USERS_RENAME_HIERARCHY], false, nil
	}

	result := executeRename(info.Bot.DG, info.ID, user, nick)
	if result == bot.StringMap[bot.STRING_USERS_RENAME_DONE] && info.Bot.DB.Status.Get() {
		action := renameAuditAction(info.GetUserName(user), nick)
		info.Bot.DB.Audit(bot.AuditTypeAction, msg.Author, fmt.Sprintf(bot.StringMap[bot.STRING_USERS_RENAME_AUDIT], msg.Author.Username, msg.Author.ID, action), bot.SBatoi(info.ID))
	}
	return result, false, nil
}
func (c *renameCommand) Usage(info *bot.GuildInfo) *bot.CommandUsage {
	return &bot.CommandUsage{
		Desc: "Sets the given member's nickname, or clears it when no nickname is given. Nicknames must be between 2 and 32 characters long.",
		Params: []bot.CommandUsageParam{
			{Name: "member", Desc: "A ping of the member, or simply their name. If the name has spaces, this argument must be put in quotes.", Optional: false},
			{Name: "nickname", Desc: "The new nickname. Omit to remove the member's current nickname.", Optional: true},
		},
	}
}
