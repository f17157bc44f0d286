package usersmodule

import (
	bot "github.com/blizzen/wardbot/wardbot"
)

// escapeEntries drops empty history records and neuters everything a past
// name could smuggle into a message: spoiler markers, mass mentions, and
// invite links.
func escapeEntries(raw []string) []string {
	entries := make([]string, 0, len(raw))
	for _, e := range raw {
		if len(e) == 0 {
			continue
		}
		entries = append(entries, bot.FilterInvites(bot.EscapeNameEntry(e)))
	}
	return entries
}

// getPastNames returns the escaped username history for a user, oldest first
func getPastNames(info *bot.GuildInfo, user bot.DiscordUser) []string {
	return escapeEntries(info.Bot.DB.GetPastNames(user.Convert()))
}

// getPastNicks returns the escaped nickname history for a member, oldest first
func getPastNicks(info *bot.GuildInfo, user bot.DiscordUser) []string {
	return escapeEntries(info.Bot.DB.GetPastNicks(user.Convert(), bot.SBatoi(info.ID)))
}
