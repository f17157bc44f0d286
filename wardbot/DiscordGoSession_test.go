package wardbot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func TestParseChannel(t *testing.T) {
	_, _, info := MockWardBot(t)
	guild, _ := info.GetGuild()

	ch, err := ParseChannel("", nil)
	Check(ch, ChannelEmpty, t)
	Check(err, nil, t)

	ch, err = ParseChannel("!", nil)
	Check(ch, ChannelExclusion, t)
	Check(err, nil, t)

	ch, err = ParseChannel("<#1234>", nil)
	Check(ch, DiscordChannel("1234"), t)
	Check(err, nil, t)

	ch, err = ParseChannel("1234", nil)
	Check(ch, DiscordChannel("1234"), t)
	Check(err, nil, t)

	if _, err = ParseChannel("notachannel", nil); err == nil {
		t.Error("expected an invalid channel error")
	}

	ch, err = ParseChannel("#general", guild)
	Check(ch, NewDiscordChannel(TestChannelID), t)
	Check(err, nil, t)

	ch, err = ParseChannel("general", guild)
	Check(ch, NewDiscordChannel(TestChannelID), t)
	Check(err, nil, t)
}

func TestParseRole(t *testing.T) {
	_, _, info := MockWardBot(t)
	guild, _ := info.GetGuild()

	r, err := ParseRole("<@&1234>", nil)
	Check(r, DiscordRole("1234"), t)
	Check(err, nil, t)

	r, err = ParseRole("!", nil)
	Check(r, RoleExclusion, t)
	Check(err, nil, t)

	r, err = ParseRole("@Mods", guild)
	Check(r, NewDiscordRole(TestModRoleID), t)
	Check(err, nil, t)

	r, err = ParseRole("mods", guild)
	Check(r, NewDiscordRole(TestModRoleID), t)
	Check(err, nil, t)

	if _, err = ParseRole("notarole", nil); err == nil {
		t.Error("expected an invalid role error")
	}
}

func TestParseUser(t *testing.T) {
	_, dbmock, info := MockWardBot(t)

	u, err := ParseUser("<@1234>", nil)
	Check(u, DiscordUser("1234"), t)
	Check(err, nil, t)

	u, err = ParseUser("<@!1234>", nil)
	Check(u, DiscordUser("1234"), t)
	Check(err, nil, t)

	u, err = ParseUser("1234", nil)
	Check(u, DiscordUser("1234"), t)
	Check(err, nil, t)

	if _, err = ParseUser("", nil); err == nil {
		t.Error("expected an invalid user error")
	}

	// Name lookups go through the database
	rows := sqlmock.NewRows([]string{"ID"}).AddRow(int64(TestModID))
	dbmock.ExpectQuery("SELECT DISTINCT M.ID FROM members").WithArgs(int64(TestGuildID), "moderator", "moderator", int64(20), int64(0)).WillReturnRows(rows)
	u, err = ParseUser("Moderator", info)
	Check(u, NewDiscordUser(TestModID), t)
	Check(err, nil, t)
}

func TestGuildMemberPermissions(t *testing.T) {
	_, _, info := MockWardBot(t)
	guild, _ := info.GetGuild()

	owner, _ := info.Bot.DG.State.Member(info.ID, SBitoa(TestServerOwnerID))
	Check(GuildMemberPermissions(owner, guild), int64(discordgo.PermissionAll), t)

	everyone := int64(discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks)
	mod, _ := info.Bot.DG.State.Member(info.ID, SBitoa(TestModID))
	Check(GuildMemberPermissions(mod, guild), everyone|discordgo.PermissionManageNicknames, t)

	user, _ := info.Bot.DG.State.Member(info.ID, SBitoa(TestUserID))
	Check(GuildMemberPermissions(user, guild), everyone, t)
}

func TestMemberTopRolePosition(t *testing.T) {
	_, _, info := MockWardBot(t)
	guild, _ := info.GetGuild()

	mod, _ := info.Bot.DG.State.Member(info.ID, SBitoa(TestModID))
	checkInt(MemberTopRolePosition(mod, guild), 10, t)

	user, _ := info.Bot.DG.State.Member(info.ID, SBitoa(TestUserID))
	checkInt(MemberTopRolePosition(user, guild), 0, t)
}

func TestGetMember(t *testing.T) {
	_, _, info := MockWardBot(t)
	dg := info.Bot.DG

	m, err := dg.GetMember(NewDiscordUser(TestModID), info.ID)
	Check(err, nil, t)
	checkString(m.Nick, "Mod", t)

	if _, err = dg.GetMember(DiscordUser("999999"), info.ID); err == nil {
		t.Error("expected an unknown member to error")
	}
}

func TestUserHasAnyRole(t *testing.T) {
	_, _, info := MockWardBot(t)
	dg := info.Bot.DG
	modrole := map[DiscordRole]bool{NewDiscordRole(TestModRoleID): true}

	Check(dg.UserHasAnyRole(NewDiscordUser(TestModID), info.ID, modrole), true, t)
	Check(dg.UserHasAnyRole(NewDiscordUser(TestUserID), info.ID, modrole), false, t)
	Check(dg.UserHasAnyRole(NewDiscordUser(TestUserID), info.ID, map[DiscordRole]bool{}), true, t)

	exclusion := map[DiscordRole]bool{RoleExclusion: true, NewDiscordRole(TestModRoleID): true}
	Check(dg.UserHasAnyRole(NewDiscordUser(TestModID), info.ID, exclusion), false, t)
	Check(dg.UserHasAnyRole(NewDiscordUser(TestUserID), info.ID, exclusion), true, t)
}

func TestSetNickname(t *testing.T) {
	_, _, info := MockWardBot(t)
	dg := info.Bot.DG

	mock.Expect(dg.GuildMemberNickname, info.ID, SBitoa(TestUserID), "NewNick")
	Check(dg.SetNickname(info.ID, NewDiscordUser(TestUserID), "NewNick"), nil, t)

	mock.Expect(dg.GuildMemberNickname, info.ID, SBitoa(TestUserID), "")
	Check(dg.SetNickname(info.ID, NewDiscordUser(TestUserID), ""), nil, t)

	if !mock.Check() {
		t.Errorf("Not all expected calls were made: %v", mock.history)
	}
}

func TestDiscordTypeDisplay(t *testing.T) {
	checkString(DiscordChannel("123").Display(), "<#123>", t)
	checkString(DiscordRole("123").Display(), "<@&123>", t)
	checkString(DiscordUser("123").Display(), "<@123>", t)
	Check(NewDiscordGuild(TestGuildID).Convert(), TestGuildID, t)
	Check(DiscordUser("123").Equals("123"), true, t)
	Check(UserEmpty.Equals(""), false, t)
}

func TestGetMemberCreate(t *testing.T) {
	_, _, info := MockWardBot(t)
	dg := info.Bot.DG

	m := dg.GetMemberCreate(&discordgo.User{ID: SBitoa(TestModID)}, info.ID)
	checkString(m.Nick, "Mod", t)

	// Unknown users get a synthetic member that is then cached
	u := &discordgo.User{ID: "999999", Username: "Stranger"}
	m = dg.GetMemberCreate(u, info.ID)
	checkString(m.User.Username, "Stranger", t)
	checkInt(len(m.Roles), 0, t)
	if _, err := dg.State.Member(info.ID, "999999"); err != nil {
		t.Error("expected the synthetic member to be cached")
	}
}
