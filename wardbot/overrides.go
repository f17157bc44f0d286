package wardbot

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// JoinDateOverride pins a member's displayed server join date to a fixed value
type JoinDateOverride struct {
	User   DiscordUser  `toml:"user"`
	Guild  DiscordGuild `toml:"guild"`
	Joined time.Time    `toml:"joined"`
}

type joinOverrideKey struct {
	user  DiscordUser
	guild DiscordGuild
}

// JoinOverrides is a data-driven table of join-date overrides loaded at startup
type JoinOverrides struct {
	JoinDates []JoinDateOverride `toml:"join_date"`
	lookup    map[joinOverrideKey]time.Time
}

// LoadJoinOverrides reads the override table from a TOML file. A missing file yields an empty table.
func LoadJoinOverrides(path string) (*JoinOverrides, error) {
	o := &JoinOverrides{}
	if _, err := os.Stat(path); err != nil {
		o.buildLookup()
		return o, nil
	}
	if _, err := toml.DecodeFile(path, o); err != nil {
		return nil, err
	}
	o.buildLookup()
	return o, nil
}

func (o *JoinOverrides) buildLookup() {
	o.lookup = make(map[joinOverrideKey]time.Time, len(o.JoinDates))
	for _, v := range o.JoinDates {
		o.lookup[joinOverrideKey{v.User, v.Guild}] = v.Joined
	}
}

// Get returns the override join date for a member, if one exists
func (o *JoinOverrides) Get(user DiscordUser, guild DiscordGuild) (time.Time, bool) {
	t, ok := o.lookup[joinOverrideKey{user, guild}]
	return t, ok
}
