package wardbot

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
)

// MaxConfigSize is the maximum size of a guild config file, in bytes
const MaxConfigSize = 1000000

// WardBot is the bot state context
type WardBot struct {
	DB            *BotDB
	DG            *DiscordGoSession
	log           logger
	Token         string
	AppName       string
	SelfID        DiscordUser
	SelfAvatar    string
	SelfName      string
	Owner         DiscordUser
	MainGuildID   DiscordGuild
	Debug         bool
	DebugChannels map[DiscordGuild]DiscordChannel
	Overrides     *JoinOverrides
	MaxConfigSize int
	StartTime     int64
	heartbeat     uint32
	quit          AtomicBool
	loader        func(*GuildInfo) []Module
	GuildsLock    sync.RWMutex
	Guilds        map[DiscordGuild]*GuildInfo
}

// New creates a bot, connects the database, and loads the join-date override table,
// but does not open the gateway connection.
func New(conf EnvConfig, loader func(*GuildInfo) []Module) (*WardBot, error) {
	log := NewZeroLogger(conf.Debug)
	bot := &WardBot{
		log:           log,
		Token:         conf.Token,
		AppName:       "Ward",
		Owner:         DiscordUser(conf.Owner),
		MainGuildID:   DiscordGuild(conf.MainGuild),
		Debug:         conf.Debug,
		DebugChannels: make(map[DiscordGuild]DiscordChannel),
		MaxConfigSize: MaxConfigSize,
		StartTime:     time.Now().UTC().Unix(),
		loader:        loader,
		Guilds:        make(map[DiscordGuild]*GuildInfo),
	}

	var err error
	bot.DB, err = dbLoad(log, "mysql", conf.DBConn)
	log.LogError("Error loading database: ", err) // The bot can run in No Database mode, so this is not fatal

	bot.Overrides, err = LoadJoinOverrides(conf.OverridePath)
	if err != nil {
		log.LogError("Error loading join date overrides: ", err)
		bot.Overrides, _ = LoadJoinOverrides("")
	}

	dg, err := discordgo.New("Bot " + conf.Token)
	if err != nil {
		return nil, err
	}
	bot.DG = &DiscordGoSession{*dg}
	bot.DG.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers | discordgo.IntentsGuildPresences
	bot.DG.State.TrackVoice = true
	bot.DG.State.TrackPresences = true

	bot.DG.AddHandler(bot.onReady)
	bot.DG.AddHandler(bot.onGuildCreate)
	bot.DG.AddHandler(bot.onGuildUpdate)
	bot.DG.AddHandler(bot.onMessageCreate)
	bot.DG.AddHandler(bot.onGuildMemberAdd)
	bot.DG.AddHandler(bot.onGuildMemberUpdate)
	bot.DG.AddHandler(bot.onGuildMemberRemove)
	bot.DG.AddHandler(bot.onUserUpdate)
	return bot, nil
}

// Connect opens the gateway connection and blocks until the bot is asked to shut down.
// Returns the process exit code.
func (bot *WardBot) Connect() int {
	if bot.DB.Status.Get() {
		bot.DB.LoadStatements()
	}
	if err := bot.DG.Open(); err != nil {
		bot.log.LogError("Error opening discord connection: ", err)
		return 1
	}
	defer bot.DG.Close()
	bot.log.Log(bot.AppName + " " + BotVersion.String() + " connected.")

	go bot.tick()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c
	bot.quit.Set(true)
	bot.log.Log("Shutting down...")
	bot.DB.Close()
	return 0
}

func (bot *WardBot) tick() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for !bot.quit.Get() {
		t := <-ticker.C
		bot.DB.CheckStatus()
		for _, info := range bot.guildSnapshot() {
			for _, h := range info.hooks.OnTick {
				if info.ProcessModule(ChannelEmpty, h) {
					h.OnTick(info, t.UTC())
				}
			}
		}
	}
}

func (bot *WardBot) guildSnapshot() []*GuildInfo {
	bot.GuildsLock.RLock()
	defer bot.GuildsLock.RUnlock()
	infos := make([]*GuildInfo, 0, len(bot.Guilds))
	for _, v := range bot.Guilds {
		infos = append(infos, v)
	}
	return infos
}

func (bot *WardBot) getGuild(guildID string) *GuildInfo {
	bot.GuildsLock.RLock()
	defer bot.GuildsLock.RUnlock()
	return bot.Guilds[DiscordGuild(guildID)]
}

// ChannelIsPrivate returns the channel object and true if the channel is a DM or group DM channel
func (bot *WardBot) ChannelIsPrivate(channelID DiscordChannel) (*discordgo.Channel, bool) {
	if channelID == "heartbeat" {
		return nil, true
	}
	ch, err := bot.DG.State.Channel(channelID.String())
	if err != nil { // Not in the state cache, ask discord directly
		ch, err = bot.DG.Channel(channelID.String())
		if err != nil {
			return nil, false
		}
		bot.DG.State.ChannelAdd(ch)
	}
	return ch, ch.Type == discordgo.ChannelTypeDM || ch.Type == discordgo.ChannelTypeGroupDM
}

// ProcessUser adds or updates a user in the database
func (bot *WardBot) ProcessUser(u *discordgo.User) DiscordUser {
	if bot.DB.CheckStatus() {
		discriminator, _ := strconv.Atoi(u.Discriminator)
		bot.DB.AddUser(SBatoi(u.ID), u.Username, discriminator, u.Avatar)
	}
	return DiscordUser(u.ID)
}

// AttachToGuild creates a GuildInfo for the guild if it doesn't exist, loading its
// config file and modules, and updates the database with the guild's member list.
func (bot *WardBot) AttachToGuild(g *discordgo.Guild) {
	bot.GuildsLock.RLock()
	guild, exists := bot.Guilds[DiscordGuild(g.ID)]
	bot.GuildsLock.RUnlock()
	if exists {
		guild.ProcessGuild(g)
		return
	}

	guild = NewGuildInfo(bot, g)
	if config, err := ioutil.ReadFile(g.ID + ".json"); err == nil {
		if err = json.Unmarshal(config, &guild.Config); err != nil {
			bot.log.LogError("Error loading config for "+g.Name+": ", err)
		}
	}
	guild.Config.FillConfig()
	guild.commandlimit.resize(10)

	guild.Modules = bot.loader(guild)
	for _, v := range guild.Modules {
		guild.RegisterModule(v)
		for _, c := range v.Commands() {
			guild.AddCommand(c, v)
		}
	}
	guild.Clean()

	if m, err := bot.DG.State.Member(g.ID, bot.SelfID.String()); err == nil {
		guild.BotNick = m.Nick
	}

	bot.GuildsLock.Lock()
	bot.Guilds[DiscordGuild(g.ID)] = guild
	bot.GuildsLock.Unlock()

	guild.ProcessGuild(g)
	bot.log.Log("Attached to guild: ", g.Name)
}

func (bot *WardBot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	bot.SelfID = DiscordUser(r.User.ID)
	bot.SelfName = r.User.Username
	bot.SelfAvatar = r.User.Avatar
	bot.log.Log("Ready message received, waiting for guilds...")
}

func (bot *WardBot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	bot.AttachToGuild(g.Guild)
}

func (bot *WardBot) onGuildUpdate(s *discordgo.Session, g *discordgo.GuildUpdate) {
	if info := bot.getGuild(g.ID); info != nil {
		info.ProcessGuild(g.Guild)
	}
}

func (bot *WardBot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	t := time.Now().UTC().Unix()

	ch, private := bot.ChannelIsPrivate(DiscordChannel(m.ChannelID))
	if private || ch == nil {
		return // All commands require a guild context
	}
	info := bot.getGuild(ch.GuildID)
	if info == nil {
		return
	}
	if boolXOR(bot.Debug, info.IsDebug(DiscordChannel(m.ChannelID))) {
		return // debug builds only respond to the debug channel, and release builds ignore it
	}

	for _, h := range info.hooks.OnMessageCreate {
		if info.ProcessModule(DiscordChannel(m.ChannelID), h) {
			h.OnMessageCreate(info, m.Message)
		}
	}

	if strings.HasPrefix(m.Content, info.Config.Basic.CommandPrefix) && len(m.Content) > len(info.Config.Basic.CommandPrefix) {
		bot.ProcessCommand(m.Message, info, t)
	}
}

// ProcessCommand parses a message that begins with the command prefix and dispatches it
func (bot *WardBot) ProcessCommand(m *discordgo.Message, info *GuildInfo, t int64) {
	prefix := info.Config.Basic.CommandPrefix
	ignore := info.checkOnCommand(m)
	args, indices := ParseArguments(m.Content[len(prefix):])
	if len(args) < 1 {
		return
	}
	arg := strings.ToLower(args[0])
	if alias, ok := info.Config.Basic.Aliases[arg]; ok {
		arg = alias
	}

	c, ok := info.commands[CommandID(arg)]
	if !ok {
		if !ignore {
			info.SendMessage(DiscordChannel(m.ChannelID), fmt.Sprintf(StringMap[STRING_INVALID_COMMAND], arg, prefix))
		}
		return
	}

	bot.DG.GetMemberCreate(m.Author, info.ID) // the author may not be cached yet on large guilds
	bypass, err := info.UserCanUseCommand(DiscordUser(m.Author.ID), c, ignore)
	if err != nil {
		info.SendError(DiscordChannel(m.ChannelID), err.Error())
		return
	}

	name := CommandID(strings.ToLower(c.Info().Name))
	if !bypass {
		if chmap := info.Config.Modules.CommandChannels[name]; len(chmap) > 0 {
			_, reverse := chmap[ChannelExclusion]
			_, allowed := chmap[DiscordChannel(m.ChannelID)]
			if allowed == reverse {
				info.SendError(DiscordChannel(m.ChannelID), StringMap[STRING_COMMAND_WRONG_CHANNEL])
				return
			}
		}
		if len(info.commandlimit.times) > 0 && info.commandlimit.check(5, 10, t) {
			info.SendError(DiscordChannel(m.ChannelID), "You can't input commands that fast!")
			return
		}
	}
	if len(info.commandlimit.times) > 0 {
		info.commandlimit.append(t)
	}

	if bot.DB.Status.Get() {
		bot.DB.Audit(AuditTypeCommand, m.Author, m.Content, SBatoi(info.ID))
	}

	result, usepm, embed := c.Process(args[1:], m, indices[1:], info)

	targetchannel := DiscordChannel(m.ChannelID)
	if usepm {
		if ch, err := bot.DG.UserChannelCreate(m.Author.ID); err == nil {
			bot.DG.State.ChannelAdd(ch)
			targetchannel = DiscordChannel(ch.ID)
		}
	}
	if len(result) > 0 {
		info.SendMessage(targetchannel, result)
	}
	if embed != nil {
		info.SendEmbed(targetchannel, embed)
	}
}

func (bot *WardBot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	info := bot.getGuild(m.GuildID)
	if info == nil {
		return
	}
	t := time.Now().UTC()
	for _, h := range info.hooks.OnGuildMemberAdd {
		if info.ProcessModule(ChannelEmpty, h) {
			h.OnGuildMemberAdd(info, m.Member, t)
		}
	}
	info.ProcessMember(m.Member)
}

// Hooks run before the database bookkeeping on member updates so modules can
// still read the previously recorded nickname.
func (bot *WardBot) onGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	info := bot.getGuild(m.GuildID)
	if info == nil {
		return
	}
	t := time.Now().UTC()
	for _, h := range info.hooks.OnGuildMemberUpdate {
		if info.ProcessModule(ChannelEmpty, h) {
			h.OnGuildMemberUpdate(info, m.Member, t)
		}
	}
	info.ProcessMember(m.Member)
}

func (bot *WardBot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	info := bot.getGuild(m.GuildID)
	if info == nil {
		return
	}
	t := time.Now().UTC()
	for _, h := range info.hooks.OnGuildMemberRemove {
		if info.ProcessModule(ChannelEmpty, h) {
			h.OnGuildMemberRemove(info, m.Member, t)
		}
	}
	if bot.DB.CheckStatus() {
		bot.DB.RemoveMember(SBatoi(m.User.ID), SBatoi(info.ID))
	}
}

// A user update is not guild-scoped, so hooks fire once, against the first
// guild the bot shares with the user.
func (bot *WardBot) onUserUpdate(s *discordgo.Session, u *discordgo.UserUpdate) {
	for _, info := range bot.guildSnapshot() {
		if _, err := bot.DG.State.Member(info.ID, u.ID); err == nil {
			for _, h := range info.hooks.OnUserUpdate {
				if info.ProcessModule(ChannelEmpty, h) {
					h.OnUserUpdate(info, u.User)
				}
			}
			break
		}
	}
	bot.ProcessUser(u.User)
}
