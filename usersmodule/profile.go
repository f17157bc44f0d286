package usersmodule

import (
	"fmt"
	"strings"
	"time"

	bot "github.com/blizzen/wardbot/wardbot"
	"github.com/bwmarrin/discordgo"
)

// Discord CDN renders of the status emoji, used as the author icon on the
// profile card.
var statusIcons = map[discordgo.Status]string{
	discordgo.StatusOnline:       "https://cdn.discordapp.com/emojis/642458713738838017.png?v=1",
	discordgo.StatusIdle:         "https://cdn.discordapp.com/emojis/642458714003210240.png?v=1",
	discordgo.StatusDoNotDisturb: "https://cdn.discordapp.com/emojis/642458714145816602.png?v=1",
	discordgo.StatusOffline:      "https://cdn.discordapp.com/emojis/642458714074513427.png?v=1",
	discordgo.StatusInvisible:    "https://cdn.discordapp.com/emojis/642458714074513427.png?v=1",
}

const streamingIcon = "https://cdn.discordapp.com/emojis/642458713692569602.png?v=1"

// statusIconURL picks the CDN icon for a presence, where an actual stream
// overrides the underlying status.
func statusIconURL(status discordgo.Status, streaming bool) string {
	if streaming {
		return streamingIcon
	}
	if url, ok := statusIcons[status]; ok {
		return url
	}
	return statusIcons[discordgo.StatusOffline]
}

// formatJoinDate renders an absolute date with its relative age underneath
func formatJoinDate(t time.Time, now time.Time) string {
	days := int64(now.Sub(t).Hours() / 24)
	return fmt.Sprintf(bot.StringMap[bot.STRING_USERS_DAYS_AGO], t.Format("02 Jan 2006 15:04"), days)
}

// joinTime returns a member's join time, falling back to the given time when
// discord never sent one.
func joinTime(m *discordgo.Member, fallback time.Time) time.Time {
	if m.JoinedAt.IsZero() {
		return fallback
	}
	return m.JoinedAt
}

// memberOrdinal counts how many members joined before this one, giving the
// 1-based position the member holds in the guild's join order.
func memberOrdinal(guild *discordgo.Guild, target *discordgo.Member, fallback time.Time) int {
	t := joinTime(target, fallback)
	n := 1
	for _, m := range guild.Members {
		if m.User.ID == target.User.ID {
			continue
		}
		if joinTime(m, fallback).Before(t) {
			n++
		}
	}
	return n
}

// sortedMemberRoles returns the member's roles in descending position order,
// excluding the everyone role.
func sortedMemberRoles(member *discordgo.Member, guild *discordgo.Guild) []*discordgo.Role {
	byID := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, r := range guild.Roles {
		byID[r.ID] = r
	}
	roles := make([]*discordgo.Role, 0, len(member.Roles))
	for _, id := range member.Roles {
		if r, ok := byID[id]; ok && r.ID != guild.ID {
			roles = append(roles, r)
		}
	}
	for i := 1; i < len(roles); i++ { // insertion sort, role counts are small
		for j := i; j > 0 && roles[j-1].Position < roles[j].Position; j-- {
			roles[j-1], roles[j] = roles[j], roles[j-1]
		}
	}
	return roles
}

// memberEmbedColor is the color of the member's highest positioned role that
// actually has one, or 0 when every role is colorless.
func memberEmbedColor(roles []*discordgo.Role) int {
	for _, r := range roles {
		if r.Color != 0 {
			return r.Color
		}
	}
	return 0
}

// formatRoleField joins role mentions into a single embed field value. When
// the full list would blow the 1024-character field limit, it greedily packs
// whole mentions and reports how many were left out.
func formatRoleField(roles []*discordgo.Role) string {
	mentions := make([]string, 0, len(roles))
	for _, r := range roles {
		mentions = append(mentions, r.Mention())
	}
	joined := strings.Join(mentions, ", ")
	if len(joined) <= 1024 {
		return joined
	}

	available := 1024 - len(bot.StringMap[bot.STRING_USERS_ROLES_OVERFLOW])
	var b strings.Builder
	remaining := 0
	for _, mention := range mentions {
		chunk := mention + ", "
		if len(chunk) < available {
			available -= len(chunk)
			b.WriteString(chunk)
		} else {
			remaining++
		}
	}
	b.WriteString(fmt.Sprintf(bot.StringMap[bot.STRING_USERS_ROLES_OVERFLOW], remaining))
	return b.String()
}

// voiceChannelValue finds the voice channel the user currently sits in, if any
func voiceChannelValue(guild *discordgo.Guild, userID string) string {
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && len(vs.ChannelID) > 0 {
			return fmt.Sprintf("<#%s> ID: %s", vs.ChannelID, vs.ChannelID)
		}
	}
	return ""
}

// profileAuthorName renders "username#discriminator ~ nick" with invite links
// neutered, since both halves are user-controlled text.
func profileAuthorName(m *discordgo.Member) string {
	name := m.User.Username + "#" + m.User.Discriminator
	if len(m.Nick) > 0 {
		name = name + " ~ " + m.Nick
	}
	return bot.FilterInvites(name)
}

// historyFieldValue joins already-escaped past name entries for an embed field
func historyFieldValue(entries []string) string {
	return strings.Join(entries, ", ")
}

// buildProfileCard assembles the userinfo embed for a member
func buildProfileCard(info *bot.GuildInfo, guild *discordgo.Guild, m *discordgo.Member, presence *discordgo.Presence, msg *discordgo.Message, names []string, nicks []string, shared int) *discordgo.MessageEmbed {
	now := msg.Timestamp
	author := bot.DiscordUser(msg.Author.ID)
	user := bot.DiscordUser(m.User.ID)

	status := discordgo.StatusOffline
	var activities []*discordgo.Activity
	if presence != nil {
		status = presence.Status
		activities = presence.Activities
	}
	description := summarizeActivities(activities)
	if len(description) == 0 {
		description = fmt.Sprintf(bot.StringMap[bot.STRING_USERS_CHILLING], string(status))
	}
	if shared > 1 {
		description += "\n" + fmt.Sprintf(bot.StringMap[bot.STRING_USERS_SHARED_SERVERS], shared)
	}

	created := bot.SnowflakeTime(user.Convert())
	createdValue := formatJoinDate(info.ApplyTimezone(created, author), now)

	joined := m.JoinedAt
	if override, ok := info.Bot.Overrides.Get(user, bot.DiscordGuild(info.ID)); ok {
		joined = override
	}
	joinedValue := fmt.Sprintf(bot.StringMap[bot.STRING_USERS_DAYS_AGO], bot.StringMap[bot.STRING_USERS_UNKNOWN], "?")
	if !joined.IsZero() {
		joinedValue = formatJoinDate(info.ApplyTimezone(joined, author), now)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: bot.StringMap[bot.STRING_USERS_JOINED_DISCORD], Value: createdValue, Inline: true},
		{Name: bot.StringMap[bot.STRING_USERS_JOINED_SERVER], Value: joinedValue, Inline: true},
	}
	roles := sortedMemberRoles(m, guild)
	if len(roles) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: bot.StringMap[bot.STRING_USERS_ROLES], Value: formatRoleField(roles), Inline: false})
	}
	if v := historyFieldValue(names); len(v) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: bot.StringMap[bot.STRING_USERS_PREVIOUS_NAMES], Value: v, Inline: false})
	}
	if v := historyFieldValue(nicks); len(v) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: bot.StringMap[bot.STRING_USERS_PREVIOUS_NICKNAMES], Value: v, Inline: false})
	}
	if v := voiceChannelValue(guild, m.User.ID); len(v) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: bot.StringMap[bot.STRING_USERS_VOICE_CHANNEL], Value: v, Inline: false})
	}

	embed := &discordgo.MessageEmbed{
		Type:        "rich",
		Author:      &discordgo.MessageEmbedAuthor{Name: profileAuthorName(m)},
		Description: description,
		Color:       memberEmbedColor(roles),
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf(bot.StringMap[bot.STRING_USERS_MEMBER_FOOTER], memberOrdinal(guild, m, now), m.User.ID),
		},
	}
	// Users without a custom avatar get a bare author line, matching how the
	// client renders them.
	if len(m.User.Avatar) > 0 {
		avatar := m.User.AvatarURL("")
		embed.Author.URL = avatar
		embed.Author.IconURL = statusIconURL(status, hasStreamingActivity(activities))
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatar}
	}
	return embed
}
