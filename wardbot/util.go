package wardbot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DiscordEpoch is the millisecond offset of discord snowflake IDs from the unix epoch
const DiscordEpoch uint64 = 1420070400000

// Pluralize converts i to a string, appending str and adding an 's' when i != 1
func Pluralize(i int64, str string) string {
	if i == 1 {
		return strconv.FormatInt(i, 10) + str
	}
	return strconv.FormatInt(i, 10) + str + "s"
}

// TimeDiff gets the largest nonzero time value and displays it
func TimeDiff(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds <= 60 {
		return Pluralize(seconds, " second")
	}
	if seconds <= 60*60 {
		return Pluralize((seconds+1)/60, " minute")
	}
	days := (seconds + 100) / 86400
	hours := (seconds + 10 - (days * 86400)) / 3600
	minutes := (seconds - (days * 86400) - (hours * 3600)) / 60

	if days == 0 && minutes > 2 {
		return Pluralize(hours, " hour") + " and " + Pluralize(minutes, " minute")
	}
	if days == 0 {
		return Pluralize(hours, " hour")
	}
	if days >= 365 && (days%365) == 0 {
		return Pluralize(days/365, " year")
	}
	if days >= 365 {
		return Pluralize(days/365, " year") + " and " + Pluralize(days%365, " day")
	}
	if hours > 1 {
		return Pluralize(days, " day") + " and " + Pluralize(hours, " hour")
	}
	return Pluralize(days, " day")
}

// PingAtoi extracts the internal ping ID and converts it to an integer
func PingAtoi(s string) uint64 {
	if len(s) > 2 && (s[:2] == "<#" || s[:2] == "<@") {
		return SBatoi(s[2 : len(s)-1])
	}
	return SBatoi(s)
}

// StripPing strips the ping or channel information and returns the resulting string
func StripPing(s string) string {
	if len(s) > 2 && (s[:2] == "<#" || s[:2] == "<@") {
		if len(s) >= 3 && (s[2:3] == "!" || s[2:3] == "&") {
			return s[3 : len(s)-1]
		}
		return s[2 : len(s)-1]
	}
	return s
}

// SBatoi converts a string to a uint64. Returns 0 if there is an error.
func SBatoi(s string) uint64 {
	if len(s) < 1 {
		return 0
	}
	if s[:1] == "!" || s[:1] == "&" {
		s = s[1:]
	}
	i, err := strconv.ParseUint(strings.Replace(s, "\u200B", "", -1), 10, 64)
	if err != nil {
		fmt.Println("Invalid number ", s, ":", err.Error())
		return 0
	}
	return i
}

// SBitoa converts a uint64 to a string
func SBitoa(i uint64) string {
	return strconv.FormatUint(i, 10)
}

// IsSpace returns true if the byte is considered whitespace in ASCII
func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

// ParseArguments splits a command string into quote-aware arguments, returning
// the arguments and the index of each argument in the original message content.
func ParseArguments(s string) ([]string, []int) {
	r := []string{}
	indices := []int{}
	l := len(s)
	for i := 0; i < l; i++ {
		c := s[i]
		if !IsSpace(c) {
			indices = append(indices, i+1) // This is i+1 because we send in m.Content[1:]
			var start int
			var end int
			if c == '"' && (i < 1 || s[i-1] != '\\') {
				i++
				start = i
				for i < l && (s[i] != '"' || s[i-1] == '\\') {
					i++
				}
				if s[i-1] == '\\' {
					end = i - 1
				} else {
					end = i
				}
			} else {
				start = i
				i++
				for i < l && !IsSpace(s[i]) && (s[i] != '"' || s[i-1] == '\\') {
					i++
				}
				end = i
			}
			r = append(r, s[start:end])
		}
	}
	return r, indices
}

func boolXOR(a bool, b bool) bool {
	return (a && !b) || (!a && b)
}

// SinceUTC returns the duration since the given UTC time
func SinceUTC(t time.Time) time.Duration {
	return time.Now().UTC().Sub(t)
}

// SnowflakeTime returns the timestamp encoded in a discord snowflake ID
func SnowflakeTime(id uint64) time.Time {
	return time.Unix(int64(((id>>22)+DiscordEpoch)/1000), 0)
}

// RemoveSliceString removes the first occurrence of the given string from the slice
func RemoveSliceString(s *[]string, item string) bool {
	for i := range *s {
		if (*s)[i] == item {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}
