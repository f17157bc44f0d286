package usersmodule

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// activityOrder fixes the order status lines appear in, regardless of the
// order the gateway delivered the activity records.
var activityOrder = []discordgo.ActivityType{
	discordgo.ActivityTypeCustom,
	discordgo.ActivityTypeGame,
	discordgo.ActivityTypeStreaming,
	discordgo.ActivityTypeListening,
	discordgo.ActivityTypeWatching,
}

var activityLabels = map[discordgo.ActivityType]string{
	discordgo.ActivityTypeCustom:    "Custom",
	discordgo.ActivityTypeGame:      "Playing",
	discordgo.ActivityTypeStreaming: "Streaming",
	discordgo.ActivityTypeListening: "Listening",
	discordgo.ActivityTypeWatching:  "Watching",
}

// customActivityValue renders a custom status as "<emoji> <text>", dropping
// whichever half is missing. Custom emoji render in mention form so discord
// displays them inside the embed.
func customActivityValue(a *discordgo.Activity) string {
	emoji := ""
	if len(a.Emoji.Name) > 0 {
		emoji = a.Emoji.MessageFormat()
	}
	switch {
	case len(emoji) > 0 && len(a.State) > 0:
		return emoji + " " + a.State
	case len(emoji) > 0:
		return emoji
	}
	return a.State
}

// streamingActivityValue renders a stream as a markdown link when the
// activity carries a URL, appending the game being streamed when known.
func streamingActivityValue(a *discordgo.Activity) string {
	if len(a.Name) == 0 {
		return ""
	}
	if len(a.URL) == 0 {
		return a.Name
	}
	if len(a.State) > 0 {
		return fmt.Sprintf("[%s | %s](%s)", a.Name, a.State, a.URL)
	}
	return fmt.Sprintf("[%s](%s)", a.Name, a.URL)
}

// listeningActivityValue renders a spotify-style listening activity as
// "<title> | <artist>". State holds all artists separated by "; ", but only
// the first one fits on a status line. The gateway does not surface the
// track id, so there is no link to attach.
func listeningActivityValue(a *discordgo.Activity) string {
	if len(a.Details) == 0 {
		return a.Name
	}
	artist := a.State
	if idx := strings.Index(artist, "; "); idx >= 0 {
		artist = artist[:idx]
	}
	if len(artist) > 0 {
		return a.Details + " | " + artist
	}
	return a.Details
}

// summarizeActivities builds one "<Label>: <value>" line per activity kind.
// The first record of each kind wins and kinds without a displayable value
// are skipped entirely.
func summarizeActivities(activities []*discordgo.Activity) string {
	first := make(map[discordgo.ActivityType]*discordgo.Activity, len(activities))
	for _, a := range activities {
		if a == nil {
			continue
		}
		if _, ok := first[a.Type]; !ok {
			first[a.Type] = a
		}
	}

	lines := make([]string, 0, len(activityOrder))
	for _, kind := range activityOrder {
		a, ok := first[kind]
		if !ok {
			continue
		}
		value := ""
		switch kind {
		case discordgo.ActivityTypeCustom:
			value = customActivityValue(a)
		case discordgo.ActivityTypeStreaming:
			value = streamingActivityValue(a)
		case discordgo.ActivityTypeListening:
			value = listeningActivityValue(a)
		default:
			value = a.Name
		}
		if len(value) > 0 {
			lines = append(lines, activityLabels[kind]+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

// hasStreamingActivity reports whether any activity is an actual stream,
// which discord surfaces as the purple "streaming" presence.
func hasStreamingActivity(activities []*discordgo.Activity) bool {
	for _, a := range activities {
		if a != nil && a.Type == discordgo.ActivityTypeStreaming && len(a.URL) > 0 {
			return true
		}
	}
	return false
}
