package usersmodule

import (
	"strings"
	"unicode/utf8"

	bot "github.com/blizzen/wardbot/wardbot"
	"github.com/bwmarrin/discordgo"
)

// nicknameSetter is the one platform call the rename flow makes, pulled out
// so tests can substitute a fake for the session wrapper.
type nicknameSetter interface {
	SetNickname(guildID string, userID bot.DiscordUser, nick string) error
}

// validNickname accepts an empty string (clears the nickname) or 2 to 32
// runes, matching discord's own limits.
func validNickname(nick string) bool {
	if len(nick) == 0 {
		return true
	}
	n := utf8.RuneCountInString(nick)
	return n >= 2 && n <= 32
}

// canRenameMember checks, without touching the API, whether the bot can
// possibly rename the target: it needs the manage-nicknames or administrator
// permission, its top role must outrank the target's, and the target must
// not own the guild.
func canRenameMember(botMember *discordgo.Member, target *discordgo.Member, guild *discordgo.Guild) bool {
	perms := bot.GuildMemberPermissions(botMember, guild)
	if perms&(discordgo.PermissionManageNicknames|discordgo.PermissionAdministrator) == 0 {
		return false
	}
	if target.User.ID == guild.OwnerID {
		return false
	}
	return bot.MemberTopRolePosition(botMember, guild) > bot.MemberTopRolePosition(target, guild)
}

// executeRename performs the nickname change and maps the outcome onto
// exactly one user-facing string.
func executeRename(s nicknameSetter, guildID string, userID bot.DiscordUser, nick string) string {
	err := s.SetNickname(guildID, userID, nick)
	if err == nil {
		return bot.StringMap[bot.STRING_USERS_RENAME_DONE]
	}
	if rerr, ok := err.(*discordgo.RESTError); ok && rerr.Response != nil {
		switch rerr.Response.StatusCode {
		case 403:
			return bot.StringMap[bot.STRING_USERS_RENAME_FORBIDDEN]
		case 400:
			return bot.StringMap[bot.STRING_USERS_RENAME_INVALID]
		}
	}
	return bot.StringMap[bot.STRING_USERS_RENAME_UNEXPECTED]
}

// renameAuditAction describes a rename for the audit trail
func renameAuditAction(target string, nick string) string {
	if len(nick) == 0 {
		return "cleared the nickname of " + target
	}
	return "renamed " + target + " to " + strings.TrimSpace(nick)
}
