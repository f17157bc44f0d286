package wardbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var errNotChannel = errors.New("string is not a valid channel")
var errNotRole = errors.New("string is not a valid role")
var errNotUser = errors.New("string is not a valid user")

// ChannelRegex matches a channel ping
var ChannelRegex = regexp.MustCompile("^<#([0-9]+)>$")

// RoleRegex matches a role ping
var RoleRegex = regexp.MustCompile("^<@&([0-9]+)>$")

// UserRegex matches a user ping
var UserRegex = regexp.MustCompile("<@!?([0-9]+)>")

// DiscordChannel stores a channel ID
type DiscordChannel string

// DiscordRole stores a role ID
type DiscordRole string

// DiscordUser stores a user ID
type DiscordUser string

// DiscordGuild stores a guild ID
type DiscordGuild string

const (
	ChannelEmpty     = DiscordChannel("")
	ChannelExclusion = DiscordChannel("!")
	RoleEmpty        = DiscordRole("")
	RoleExclusion    = DiscordRole("!")
	UserEmpty        = DiscordUser("")
	GuildEmpty       = DiscordGuild("")
)

// Display channel as a ping
func (ch DiscordChannel) Display() string {
	return fmt.Sprintf("<#%v>", ch)
}

// Display role as a ping
func (r DiscordRole) Display() string {
	return fmt.Sprintf("<@&%v>", r)
}

// Display user as a ping
func (u DiscordUser) Display() string {
	return fmt.Sprintf("<@%v>", u)
}

// Show channel name if available, or display ping
func (ch DiscordChannel) Show(info *GuildInfo) string {
	if channel, err := info.Bot.DG.State.Channel(string(ch)); err == nil {
		return "#" + channel.Name
	}
	return ch.Display()
}

// Show role name if available, or display ping
func (r DiscordRole) Show(info *GuildInfo) string {
	if role, err := info.Bot.DG.State.Role(info.ID, string(r)); err == nil {
		return "@" + role.Name
	}
	return r.Display()
}

// Convert channel to integer
func (ch DiscordChannel) Convert() (i uint64) {
	i, _ = strconv.ParseUint(string(ch), 10, 64)
	return
}

// Convert role to integer
func (r DiscordRole) Convert() (i uint64) {
	i, _ = strconv.ParseUint(string(r), 10, 64)
	return
}

// Convert user to integer
func (u DiscordUser) Convert() (i uint64) {
	i, _ = strconv.ParseUint(string(u), 10, 64)
	return
}

// Convert guild to integer
func (g DiscordGuild) Convert() (i uint64) {
	i, _ = strconv.ParseUint(string(g), 10, 64)
	return
}

func (ch DiscordChannel) String() string {
	return string(ch)
}

func (r DiscordRole) String() string {
	return string(r)
}

func (u DiscordUser) String() string {
	return string(u)
}

func (g DiscordGuild) String() string {
	return string(g)
}

// UnmarshalJSON is a custom unmarshal function for JSON
func (ch *DiscordChannel) UnmarshalJSON(d []byte) error {
	s := ""
	err := json.Unmarshal(d, &s)
	if err == nil {
		*ch = DiscordChannel(s)
	} else {
		var i uint64
		err = json.Unmarshal(d, &i)
		if err == nil {
			*ch = DiscordChannel(strconv.FormatUint(i, 10))
		}
	}
	return err
}

// UnmarshalJSON is a custom unmarshal function for JSON
func (r *DiscordRole) UnmarshalJSON(d []byte) error {
	s := ""
	err := json.Unmarshal(d, &s)
	if err == nil {
		*r = DiscordRole(s)
	} else {
		var i uint64
		err = json.Unmarshal(d, &i)
		if err == nil {
			*r = DiscordRole(strconv.FormatUint(i, 10))
		}
	}
	return err
}

// Equals channel id
func (ch DiscordChannel) Equals(s string) bool {
	return ch != ChannelEmpty && string(ch) == s
}

// Equals role id
func (r DiscordRole) Equals(s string) bool {
	return r != RoleEmpty && string(r) == s
}

// Equals user id
func (u DiscordUser) Equals(s string) bool {
	return u != UserEmpty && string(u) == s
}

// Equals guild id
func (g DiscordGuild) Equals(s string) bool {
	return g != GuildEmpty && string(g) == s
}

// NewDiscordChannel constructs a new DiscordChannel from an integer
func NewDiscordChannel(i uint64) DiscordChannel {
	return DiscordChannel(strconv.FormatUint(i, 10))
}

// NewDiscordRole constructs a new DiscordRole from an integer
func NewDiscordRole(i uint64) DiscordRole {
	return DiscordRole(strconv.FormatUint(i, 10))
}

// NewDiscordUser constructs a new DiscordUser from an integer
func NewDiscordUser(i uint64) DiscordUser {
	return DiscordUser(strconv.FormatUint(i, 10))
}

// NewDiscordGuild constructs a new DiscordGuild from an integer
func NewDiscordGuild(i uint64) DiscordGuild {
	return DiscordGuild(strconv.FormatUint(i, 10))
}

func findChannelByName(name string, guild *discordgo.Guild) []*discordgo.Channel {
	r := []*discordgo.Channel{}
	name = strings.ToLower(name)
	for _, v := range guild.Channels {
		if strings.ToLower(v.Name) == name {
			r = append(r, v)
		}
	}
	return r
}

// FindRole returns all roles in the guild with the given name
func FindRole(name string, guild *discordgo.Guild) []*discordgo.Role {
	r := []*discordgo.Role{}
	name = strings.ToLower(name)
	for _, v := range guild.Roles {
		if strings.ToLower(v.Name) == name {
			r = append(r, v)
		}
	}
	return r
}

// ParseChannel resolves multiple different channel tagging formats
func ParseChannel(s string, guild *discordgo.Guild) (DiscordChannel, error) {
	if len(s) == 0 {
		return ChannelEmpty, nil
	}
	if s == "!" {
		return ChannelExclusion, nil
	}
	if s[0] == '<' {
		matches := ChannelRegex.FindStringSubmatch(s)
		if len(matches) < 2 || len(matches[1]) == 0 {
			return ChannelEmpty, errNotChannel
		}
		s = matches[1]
	} else if guild != nil {
		var ch []*discordgo.Channel
		if s[0] == '#' {
			ch = findChannelByName(s[1:], guild)
		}
		if len(ch) == 0 {
			ch = findChannelByName(s, guild)
		}
		if len(ch) > 0 {
			if len(ch) > 1 {
				join := make([]string, len(ch))
				for k, v := range ch {
					join[k] = v.Name + " (" + v.ID + ")"
				}
				return ChannelEmpty, errors.New("could be any of the following: " + strings.Join(join, ", "))
			}
			s = ch[0].ID
		}
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil { // Check that it's a valid integer
		return ChannelEmpty, errNotChannel
	}
	return DiscordChannel(s), nil
}

// ParseRole resolves multiple different role tagging formats
func ParseRole(s string, guild *discordgo.Guild) (DiscordRole, error) {
	if len(s) == 0 {
		return RoleEmpty, nil
	}
	if s == "!" {
		return RoleExclusion, nil
	}
	if s[0] == '<' {
		matches := RoleRegex.FindStringSubmatch(s)
		if len(matches) < 2 || len(matches[1]) == 0 {
			return RoleEmpty, errNotRole
		}
		s = matches[1]
	} else if guild != nil {
		var r []*discordgo.Role
		if s[0] == '@' {
			r = FindRole(s[1:], guild)
		}
		if len(r) == 0 {
			r = FindRole(s, guild)
		}
		if len(r) > 0 {
			if len(r) > 1 {
				join := make([]string, len(r))
				for k, v := range r {
					join[k] = v.Name + " (" + v.ID + ")"
				}
				return RoleEmpty, errors.New("could be any of the following: " + strings.Join(join, ", "))
			}
			s = r[0].ID
		}
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil { // Check that it's a valid integer
		return RoleEmpty, errNotRole
	}
	return DiscordRole(s), nil
}

// ParseUser resolves multiple different user tagging formats
func ParseUser(s string, info *GuildInfo) (DiscordUser, error) {
	if len(s) == 0 {
		return UserEmpty, errNotUser
	}
	if s[0] == '<' {
		matches := UserRegex.FindStringSubmatch(s)
		if len(matches) < 2 || len(matches[1]) == 0 {
			return UserEmpty, errNotUser
		}
		s = matches[1]
	} else if info != nil {
		var IDs []uint64
		s = strings.ToLower(s)
		IDs = info.FindUsername(s)
		if len(IDs) == 0 {
			return UserEmpty, errNotUser
		}
		if len(IDs) > 1 {
			join := info.IDsToUsernames(IDs, true)
			return UserEmpty, errors.New("Could be any of the following users:\n" + info.Sanitize(strings.Join(join, "\n"), CleanCodeBlock))
		}
		return NewDiscordUser(IDs[0]), nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil { // Check that it's a valid integer
		return UserEmpty, errNotUser
	}
	return DiscordUser(s), nil
}

// DiscordGoSession overrides the discordgo session, allowing us to extend it and also lets us mock the base class methods for testing
type DiscordGoSession struct {
	discordgo.Session
}

// GetMember attempts to get a member from the guild by checking the state first before making the REST API call.
func (s *DiscordGoSession) GetMember(userID DiscordUser, guildID string) (*discordgo.Member, error) {
	m, err := s.State.Member(guildID, userID.String())
	if err == nil {
		return m, nil
	}
	return s.GuildMember(guildID, userID.String())
}

// GetMemberCreate creates a member if they don't exist, so it is guaranteed to return a Member
func (s *DiscordGoSession) GetMemberCreate(u *discordgo.User, guildID string) *discordgo.Member {
	m, err := s.State.Member(guildID, u.ID)
	if err == nil {
		return m
	}

	m, err = s.GuildMember(guildID, u.ID)
	if err != nil || m == nil {
		m = &discordgo.Member{GuildID: guildID, User: u, Roles: []string{}}
	}
	s.State.MemberAdd(m)
	return m
}

// SetNickname changes a member's nickname, where an empty string clears it
func (s *DiscordGoSession) SetNickname(guildID string, userID DiscordUser, nick string) error {
	return s.GuildMemberNickname(guildID, userID.String(), nick)
}

// UserHasAnyRole returns true if the user ID (as a string) has any of the role IDs given (as a map of strings)
func (s *DiscordGoSession) UserHasAnyRole(user DiscordUser, guildID string, roles map[DiscordRole]bool) bool {
	if len(roles) == 0 {
		return true
	}
	m, err := s.GetMember(user, guildID)
	_, reverse := roles[RoleExclusion]
	if err == nil {
		for _, v := range m.Roles {
			if _, ok := roles[DiscordRole(v)]; ok {
				return !reverse
			}
		}
	}
	return reverse
}

// UserPermissions gets all permissions for a user, ignoring channel specific overrides
func (s *DiscordGoSession) UserPermissions(userID DiscordUser, guildID string) (int64, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return 0, err
	}

	member, err := s.State.Member(guild.ID, userID.String())
	if err != nil {
		return 0, err
	}

	s.State.RLock()
	defer s.State.RUnlock()
	return GuildMemberPermissions(member, guild), nil
}

// GuildMemberPermissions computes a member's guild-wide permissions from its roles, ignoring channel overrides
func GuildMemberPermissions(member *discordgo.Member, guild *discordgo.Guild) (apermissions int64) {
	if member.User.ID == guild.OwnerID {
		return discordgo.PermissionAll
	}

	for _, role := range guild.Roles {
		if role.ID == guild.ID { // everyone role has the same ID as the guild
			apermissions |= role.Permissions
			break
		}
	}

	for _, role := range guild.Roles {
		for _, roleID := range member.Roles {
			if role.ID == roleID {
				apermissions |= role.Permissions
				break
			}
		}
	}

	if apermissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		apermissions |= discordgo.PermissionAll
	}
	return apermissions
}

// MemberTopRolePosition returns the highest role position a member holds, where the everyone role counts as 0
func MemberTopRolePosition(member *discordgo.Member, guild *discordgo.Guild) int {
	pos := 0
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Position > pos {
				pos = role.Position
			}
		}
	}
	return pos
}

// ReplaceAllMentions replaces mentions with usernames
func (s *DiscordGoSession) ReplaceAllMentions(str string, db *BotDB, guildID string) string {
	if len(guildID) > 0 {
		return UserRegex.ReplaceAllStringFunc(str, func(match string) string {
			m, err := s.State.Member(guildID, StripPing(match))
			if err != nil || m == nil {
				return match
			}
			if len(m.Nick) > 0 {
				return m.Nick
			}
			return m.User.Username
		})
	}

	return UserRegex.ReplaceAllStringFunc(str, func(match string) string {
		u, _, _ := db.GetUser(SBatoi(StripPing(match)))
		if u == nil {
			return match
		}
		return u.Username
	})
}
