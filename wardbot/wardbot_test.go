package wardbot

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func TestChannelIsPrivate(t *testing.T) {
	bot, _, _ := MockWardBot(t)

	_, private := bot.ChannelIsPrivate("heartbeat")
	Check(private, true, t)

	ch, private := bot.ChannelIsPrivate(NewDiscordChannel(TestChannelID))
	Check(private, false, t)
	if ch == nil {
		t.Fatal("expected the channel object")
	}
	checkString(ch.GuildID, SBitoa(TestGuildID), t)

	_, private = bot.ChannelIsPrivate(NewDiscordChannel(TestDMChannelID))
	Check(private, true, t)

	ch, private = bot.ChannelIsPrivate(DiscordChannel("999999"))
	Check(private, false, t)
	if ch != nil {
		t.Error("expected no channel object for an unknown channel")
	}
}

func TestProcessUser(t *testing.T) {
	bot, dbmock, _ := MockWardBot(t)
	u := &discordgo.User{ID: SBitoa(TestUserID), Username: "Normal", Discriminator: "0003", Avatar: "avatar"}

	dbmock.ExpectExec("CALL AddUser\\(\\?,\\?,\\?,\\?\\)").WithArgs(int64(TestUserID), "Normal", 3, "avatar").WillReturnResult(sqlmock.NewResult(0, 0))
	Check(bot.ProcessUser(u), NewDiscordUser(TestUserID), t)
	if err := dbmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProcessCommand(t *testing.T) {
	bot, dbmock, info := MockWardBot(t)
	channel := SBitoa(TestChannelID)
	info.AddCommand(&mockCommand{info: CommandInfo{Name: "ping"}}, &mockModule{})
	say := &mockCommand{info: CommandInfo{Name: "say"}, result: "hello"}
	info.AddCommand(say, &mockModule{})

	msg := &discordgo.Message{ChannelID: channel, Author: &discordgo.User{ID: SBitoa(TestUserID), Username: "Normal"}, Content: "!bogus"}
	mock.Expect(bot.DG.ChannelMessageSend, channel, fmt.Sprintf(StringMap[STRING_INVALID_COMMAND], "bogus", "!"))
	bot.ProcessCommand(msg, info, 1000)

	msg.Content = "!ping"
	dbmock.ExpectExec("INSERT INTO debuglog").WithArgs(int64(AuditTypeCommand), int64(TestUserID), "!ping", int64(TestGuildID)).WillReturnResult(sqlmock.NewResult(1, 1))
	bot.ProcessCommand(msg, info, 1000)

	// Aliases resolve before dispatch
	info.Config.Basic.Aliases["p"] = "ping"
	msg.Content = "!p"
	dbmock.ExpectExec("INSERT INTO debuglog").WithArgs(int64(AuditTypeCommand), int64(TestUserID), "!p", int64(TestGuildID)).WillReturnResult(sqlmock.NewResult(1, 1))
	bot.ProcessCommand(msg, info, 1000)

	// Command output goes back to the originating channel
	msg.Content = "!say"
	dbmock.ExpectExec("INSERT INTO debuglog").WithArgs(int64(AuditTypeCommand), int64(TestUserID), "!say", int64(TestGuildID)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.Expect(bot.DG.ChannelMessageSend, channel, "hello")
	bot.ProcessCommand(msg, info, 1000)

	// A PM command redirects its output to a direct message channel
	say.usepm = true
	dbmock.ExpectExec("INSERT INTO debuglog").WithArgs(int64(AuditTypeCommand), int64(TestUserID), "!say", int64(TestGuildID)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.Expect(bot.DG.UserChannelCreate, SBitoa(TestUserID))
	mock.Expect(bot.DG.ChannelMessageSend, SBitoa(TestDMChannelID), "hello")
	bot.ProcessCommand(msg, info, 1000)
	say.usepm = false

	if !mock.Check() {
		t.Errorf("Not all expected calls were made: %v", mock.history)
	}
	if err := dbmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProcessCommandRestrictions(t *testing.T) {
	bot, dbmock, info := MockWardBot(t)
	channel := SBitoa(TestChannelID)
	info.AddCommand(&mockCommand{info: CommandInfo{Name: "ping"}}, &mockModule{})
	msg := &discordgo.Message{ChannelID: channel, Author: &discordgo.User{ID: SBitoa(TestUserID), Username: "Normal"}, Content: "!ping"}

	// Commands bound to other channels are rejected
	info.Config.Modules.CommandChannels["ping"] = map[DiscordChannel]bool{"424242": true}
	mock.Expect(bot.DG.ChannelMessageSend, channel, "```\n"+StringMap[STRING_COMMAND_WRONG_CHANNEL]+"```")
	bot.ProcessCommand(msg, info, 1000)
	delete(info.Config.Modules.CommandChannels, "ping")
	info.lastlogerr = 0

	// Saturating the command limit rejects further commands
	for i := 0; i < 5; i++ {
		info.commandlimit.append(2000)
	}
	mock.Expect(bot.DG.ChannelMessageSend, channel, "```\nYou can't input commands that fast!```")
	bot.ProcessCommand(msg, info, 2000)
	info.lastlogerr = 0

	// Admins bypass both restrictions
	msg.Author = &discordgo.User{ID: SBitoa(TestServerOwnerID), Username: "ServerOwner"}
	info.Config.Modules.CommandChannels["ping"] = map[DiscordChannel]bool{"424242": true}
	dbmock.ExpectExec("INSERT INTO debuglog").WithArgs(int64(AuditTypeCommand), int64(TestServerOwnerID), "!ping", int64(TestGuildID)).WillReturnResult(sqlmock.NewResult(1, 1))
	bot.ProcessCommand(msg, info, 2000)

	if !mock.Check() {
		t.Errorf("Not all expected calls were made: %v", mock.history)
	}
	if err := dbmock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestAttachToGuild(t *testing.T) {
	bot, dbmock, _ := MockWardBot(t)
	bot.loader = func(g *GuildInfo) []Module { return []Module{&mockModule{}} }
	guild := mockDiscordGuild()
	guild.ID = "777777"
	guild.Members = nil
	guild.Channels = nil
	guild.VoiceStates = nil
	if err := bot.DG.State.GuildAdd(guild); err != nil {
		t.Fatal(err)
	}
	_ = dbmock

	bot.AttachToGuild(guild)
	info := bot.getGuild("777777")
	if info == nil {
		t.Fatal("expected the guild to be attached")
	}
	checkInt(len(info.Modules), 1, t)
	checkInt(len(info.commandlimit.times), 10, t)

	// Attaching again must not create a second GuildInfo
	bot.AttachToGuild(guild)
	bot.GuildsLock.RLock()
	checkInt(len(bot.Guilds), 2, t)
	bot.GuildsLock.RUnlock()
}

func TestDebugChannelGating(t *testing.T) {
	bot, _, info := MockWardBot(t)
	debug := NewDiscordChannel(TestNoEmbedChannel)
	bot.DebugChannels[DiscordGuild(info.ID)] = debug
	author := &discordgo.User{ID: SBitoa(TestUserID), Username: "Normal"}
	indebug := &discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: debug.String(), Author: author, Content: "!bogus"}}
	outside := &discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: SBitoa(TestChannelID), Author: author, Content: "!bogus"}}

	// Release builds ignore the debug channel entirely
	bot.onMessageCreate(&bot.DG.Session, indebug)

	// Debug builds respond only inside it
	bot.Debug = true
	bot.onMessageCreate(&bot.DG.Session, outside)
	mock.Expect(bot.DG.ChannelMessageSend, debug.String(), fmt.Sprintf(StringMap[STRING_INVALID_COMMAND], "bogus", "!"))
	bot.onMessageCreate(&bot.DG.Session, indebug)

	if !mock.Check() {
		t.Errorf("Not all expected calls were made: %v", mock.history)
	}
}
