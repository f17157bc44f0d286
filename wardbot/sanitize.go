package wardbot

import (
	"regexp"
	"strings"
)

var inviteRegex = regexp.MustCompile(`(?i)(?:discord\.(?:gg|io|me|li)|discordapp\.com/invite|discord\.com/invite)/\S+`)
var massMentionRegex = regexp.MustCompile(`@(everyone|here)`)
var variousMentionRegex = regexp.MustCompile(`<(@[!&]?|#)(\d+)>`)

// FilterInvites rewrites any discord invite link so it no longer resolves
func FilterInvites(s string) string {
	return inviteRegex.ReplaceAllString(s, "[SANITIZED INVITE]")
}

// FilterMassMentions inserts a zero-width space into @everyone and @here so they never ping
func FilterMassMentions(s string) string {
	return massMentionRegex.ReplaceAllString(s, "@\u200B$1")
}

// FilterVariousMentions breaks user, role and channel mentions with a zero-width space
func FilterVariousMentions(s string) string {
	return variousMentionRegex.ReplaceAllString(s, "<${1}\u200B${2}>")
}

// EscapeSpoilers escapes the spoiler delimiter so user text can't hide content
func EscapeSpoilers(s string) string {
	return strings.Replace(s, "||", "\\|\\|", -1)
}

// EscapeNameEntry makes a recorded name or nickname safe for display
func EscapeNameEntry(s string) string {
	return EscapeSpoilers(FilterMassMentions(s))
}
