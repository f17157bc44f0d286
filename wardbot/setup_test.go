package wardbot

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

// Fixture IDs for the mock guild
const (
	TestGuildID        uint64 = 10000
	TestSelfID         uint64 = 20000
	TestBotOwnerID     uint64 = 20001
	TestServerOwnerID  uint64 = 20002
	TestModID          uint64 = 20003
	TestUserID         uint64 = 20004
	TestChannelID      uint64 = 30000
	TestNoEmbedChannel uint64 = 30001
	TestVoiceChannelID uint64 = 30002
	TestDMChannelID    uint64 = 30003
	TestModRoleID      uint64 = 40000
	TestColorRoleID    uint64 = 40001
)

var mock *Mock
var mockNicknameErr error

// SessionMock exposes the session call recorder to external test packages
func SessionMock() *Mock { return mock }

func checkString(a string, b string, t *testing.T) bool {
	t.Helper()
	if a != b {
		t.Errorf("expected %s but got %s", b, a)
		return false
	}
	return true
}

func checkInt(a int, b int, t *testing.T) bool {
	t.Helper()
	if a != b {
		t.Errorf("expected %v but got %v", b, a)
		return false
	}
	return true
}

// Check verifies deep equality between the actual and expected value
func Check(a interface{}, b interface{}, t *testing.T) bool {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected %v but got %v", b, a)
		return false
	}
	return true
}

// The methods below shadow the promoted discordgo.Session methods during
// tests, so no actual REST calls are ever made.

func (s *DiscordGoSession) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	mock.Input(interface{}(s.ChannelMessageSend), channelID, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *DiscordGoSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	mock.Input(interface{}(s.ChannelMessageSendEmbed), channelID, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (s *DiscordGoSession) GuildMemberNickname(guildID string, userID string, nickname string) error {
	mock.Input(interface{}(s.GuildMemberNickname), guildID, userID, nickname)
	return mockNicknameErr
}

// Members not in the state cache simply don't exist during testing
func (s *DiscordGoSession) GuildMember(guildID string, userID string) (*discordgo.Member, error) {
	return nil, errors.New("member not found")
}

// Channels not in the state cache simply don't exist during testing
func (s *DiscordGoSession) Channel(channelID string) (*discordgo.Channel, error) {
	return nil, errors.New("channel not found")
}

func (s *DiscordGoSession) UserChannelCreate(recipientID string) (*discordgo.Channel, error) {
	mock.Input(interface{}(s.UserChannelCreate), recipientID)
	return &discordgo.Channel{ID: SBitoa(TestDMChannelID), Type: discordgo.ChannelTypeDM}, nil
}

type mockCommand struct {
	info   CommandInfo
	result string
	usepm  bool
	embed  *discordgo.MessageEmbed
}

func (c *mockCommand) Info() *CommandInfo { return &c.info }
func (c *mockCommand) Process(args []string, msg *discordgo.Message, indices []int, info *GuildInfo) (string, bool, *discordgo.MessageEmbed) {
	return c.result, c.usepm, c.embed
}
func (c *mockCommand) Usage(info *GuildInfo) *CommandUsage {
	return &CommandUsage{Desc: "Mock command"}
}

type mockModule struct{}

func (m *mockModule) Name() string                       { return "Mock" }
func (m *mockModule) Commands() []Command                { return []Command{} }
func (m *mockModule) Description(info *GuildInfo) string { return "Mock module" }

func mockDiscordGuild() *discordgo.Guild {
	base := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	return &discordgo.Guild{
		ID:      SBitoa(TestGuildID),
		Name:    "Test Guild",
		OwnerID: SBitoa(TestServerOwnerID),
		Roles: []*discordgo.Role{
			{ID: SBitoa(TestGuildID), Name: "@everyone", Position: 0, Permissions: discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks},
			{ID: SBitoa(TestModRoleID), Name: "Mods", Position: 10, Permissions: discordgo.PermissionManageNicknames},
			{ID: SBitoa(TestColorRoleID), Name: "Colored", Position: 5, Color: 0x3498db},
		},
		Members: []*discordgo.Member{
			{GuildID: SBitoa(TestGuildID), User: &discordgo.User{ID: SBitoa(TestSelfID), Username: "Ward", Discriminator: "1337"}, JoinedAt: base, Roles: []string{}},
			{GuildID: SBitoa(TestGuildID), User: &discordgo.User{ID: SBitoa(TestServerOwnerID), Username: "ServerOwner", Discriminator: "0001"}, JoinedAt: base.Add(-72 * time.Hour), Roles: []string{}},
			{GuildID: SBitoa(TestGuildID), User: &discordgo.User{ID: SBitoa(TestModID), Username: "Moderator", Discriminator: "0002", Avatar: "modavatar"}, Nick: "Mod", JoinedAt: base.Add(-48 * time.Hour), Roles: []string{SBitoa(TestModRoleID), SBitoa(TestColorRoleID)}},
			{GuildID: SBitoa(TestGuildID), User: &discordgo.User{ID: SBitoa(TestUserID), Username: "Normal", Discriminator: "0003"}, JoinedAt: base.Add(-24 * time.Hour), Roles: []string{}},
		},
		Channels: []*discordgo.Channel{
			{ID: SBitoa(TestChannelID), GuildID: SBitoa(TestGuildID), Name: "general", Type: discordgo.ChannelTypeGuildText},
			{ID: SBitoa(TestNoEmbedChannel), GuildID: SBitoa(TestGuildID), Name: "noembeds", Type: discordgo.ChannelTypeGuildText, PermissionOverwrites: []*discordgo.PermissionOverwrite{
				{ID: SBitoa(TestGuildID), Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionEmbedLinks},
			}},
			{ID: SBitoa(TestVoiceChannelID), GuildID: SBitoa(TestGuildID), Name: "voicechat", Type: discordgo.ChannelTypeGuildVoice},
		},
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: SBitoa(TestGuildID), ChannelID: SBitoa(TestVoiceChannelID), UserID: SBitoa(TestModID)},
		},
	}
}

// MockWardBot creates a bot context with a mocked database and discord state for testing
func MockWardBot(t *testing.T) (*WardBot, sqlmock.Sqlmock, *GuildInfo) {
	mock = NewMock(t)
	mockNicknameErr = nil

	mdb, dbmock, err := sqlmock.New()
	if err != nil {
		t.Fatal("sqlmock.New() failed: ", err)
	}
	db := &BotDB{db: mdb, lastattempt: time.Now().UTC(), log: NewZeroLogger(false)}
	db.Status.Set(true)
	for i := 0; i < 15; i++ {
		dbmock.ExpectPrepare(".*")
	}
	if err = db.LoadStatements(); err != nil {
		t.Fatal("LoadStatements() failed: ", err)
	}

	overrides, _ := LoadJoinOverrides("")
	bot := &WardBot{
		DB:            db,
		log:           NewZeroLogger(false),
		AppName:       "Ward",
		SelfID:        NewDiscordUser(TestSelfID),
		SelfName:      "Ward",
		SelfAvatar:    "selfavatar",
		Owner:         NewDiscordUser(TestBotOwnerID),
		DebugChannels: make(map[DiscordGuild]DiscordChannel),
		Overrides:     overrides,
		MaxConfigSize: MaxConfigSize,
		StartTime:     time.Now().UTC().Unix(),
		Guilds:        make(map[DiscordGuild]*GuildInfo),
	}

	bot.DG = &DiscordGoSession{discordgo.Session{State: discordgo.NewState(), Ratelimiter: discordgo.NewRatelimiter()}}
	guild := mockDiscordGuild()
	if err = bot.DG.State.GuildAdd(guild); err != nil {
		t.Fatal("GuildAdd failed: ", err)
	}
	bot.DG.State.ChannelAdd(&discordgo.Channel{ID: SBitoa(TestDMChannelID), Type: discordgo.ChannelTypeDM})

	info := NewGuildInfo(bot, guild)
	info.commandlimit.resize(10)
	info.Config.Basic.ModRole = NewDiscordRole(TestModRoleID)
	bot.Guilds[DiscordGuild(guild.ID)] = info
	return bot, dbmock, info
}
