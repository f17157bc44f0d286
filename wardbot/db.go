package wardbot

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateEntry - Error 1062: Duplicate entry for unique key
var ErrDuplicateEntry = errors.New("Error 1062: Duplicate entry for unique key")

// ErrLockWaitTimeout - Error 1205: Lock wait timeout exceeded
var ErrLockWaitTimeout = errors.New("Error 1205: Lock wait timeout exceeded")

// NameHistoryCap is the number of recorded past names or nicknames retained per scope
const NameHistoryCap = 20

// BotDB contains the database connection and all database prepared statements exposed as functions
type BotDB struct {
	db                *sql.DB
	Status            AtomicBool
	lastattempt       time.Time
	log               logger
	driver            string
	conn              string
	statuslock        AtomicFlag
	sqlAddUser        *sql.Stmt
	sqlAddMember      *sql.Stmt
	sqlRemoveMember   *sql.Stmt
	sqlGetUser        *sql.Stmt
	sqlGetMember      *sql.Stmt
	sqlFindGuildUsers *sql.Stmt
	sqlFindUser       *sql.Stmt
	sqlGetTimeZone    *sql.Stmt
	sqlAddNameChange  *sql.Stmt
	sqlPruneNames     *sql.Stmt
	sqlGetPastNames   *sql.Stmt
	sqlAddNickChange  *sql.Stmt
	sqlPruneNicks     *sql.Stmt
	sqlGetPastNicks   *sql.Stmt
	sqlAudit          *sql.Stmt
}

func dbLoad(log logger, driver string, conn string) (*BotDB, error) {
	cdb, err := sql.Open(driver, conn)
	r := BotDB{
		db:          cdb,
		lastattempt: time.Now().UTC(),
		log:         log,
		driver:      driver,
		conn:        conn,
	}
	r.Status.Set(err == nil)
	if err != nil {
		return &r, err
	}

	r.db.SetMaxOpenConns(70)
	err = r.db.Ping()
	r.Status.Set(err == nil)
	return &r, err
}

// Close destroys the database connection
func (db *BotDB) Close() {
	if db.db != nil {
		db.db.Close()
		db.db = nil
	}
}

func (db *BotDB) standardErr(err error) error {
	if err == nil {
		return nil
	}
	if mysqlErr, ok := err.(*mysql.MySQLError); ok {
		switch mysqlErr.Number {
		case 1062:
			return ErrDuplicateEntry
		case 1205:
			return ErrLockWaitTimeout
		}
	}
	return err
}

// Prepare a sql statement and logs an error if it fails
func (db *BotDB) Prepare(s string) (*sql.Stmt, error) {
	statement, err := db.db.Prepare(s)
	if err != nil {
		fmt.Println("Preparing: ", s, "\nSQL Error: ", err.Error())
	}
	return statement, err
}

// DBReconnectTimeout is the reconnect time interval in seconds
const DBReconnectTimeout = time.Duration(30) * time.Second

// CheckStatus checks if the database connection has been lost
func (db *BotDB) CheckStatus() bool {
	if !db.Status.Get() {
		if db.statuslock.TestAndSet() { // If this was already true, bail out
			return false
		}
		defer db.statuslock.Clear()

		if db.Status.Get() { // If the database was already fixed, return true
			return true
		}

		if db.lastattempt.Add(DBReconnectTimeout).Before(time.Now().UTC()) {
			db.log.Log("Database failure detected! Attempting to reboot database connection...")
			db.lastattempt = time.Now().UTC()
			err := db.db.Ping()
			if err != nil {
				db.log.LogError("Reconnection failed! Another attempt will be made in "+TimeDiff(DBReconnectTimeout)+". Error: ", err)
				return false
			}
			err = db.LoadStatements() // If we re-establish connection, we must reload statements in case they were lost or never loaded in the first place
			db.log.LogError("LoadStatements failed: ", err)
			db.Status.Set(true) // Only after loading the statements do we set status to true
			db.log.Log("Reconnection succeeded, exiting out of No Database mode.")
		} else { // If not, just fail
			return false
		}
	}

	return true
}

// LoadStatements loads all prepared statements
func (db *BotDB) LoadStatements() error {
	var err error
	db.sqlAddUser, err = db.Prepare("CALL AddUser(?,?,?,?)")
	db.sqlAddMember, err = db.Prepare("CALL AddMember(?,?,?,?)")
	db.sqlRemoveMember, err = db.Prepare("DELETE FROM `members` WHERE Guild = ? AND ID = ?")
	db.sqlGetUser, err = db.Prepare("SELECT ID, Username, Discriminator, Avatar, LastSeen, Location FROM users WHERE ID = ?")
	db.sqlGetMember, err = db.Prepare("SELECT U.ID, U.Username, U.Discriminator, U.Avatar, U.LastSeen, M.Nickname, M.FirstSeen FROM members M RIGHT OUTER JOIN users U ON U.ID = M.ID WHERE M.ID = ? AND M.Guild = ?")
	db.sqlFindGuildUsers, err = db.Prepare("SELECT DISTINCT M.ID FROM members M INNER JOIN users U ON U.ID = M.ID WHERE M.Guild = ? AND (M.Nickname LIKE ? OR U.Username LIKE ?) LIMIT ? OFFSET ?")
	db.sqlFindUser, err = db.Prepare("SELECT DISTINCT U.ID FROM users U WHERE U.Discriminator = ? AND U.Username LIKE ? LIMIT ? OFFSET ?")
	db.sqlGetTimeZone, err = db.Prepare("SELECT Location FROM users WHERE ID = ?")
	db.sqlAddNameChange, err = db.Prepare("INSERT INTO pastnames (User, Name, Timestamp) VALUES (?, ?, UTC_TIMESTAMP())")
	db.sqlPruneNames, err = db.Prepare("DELETE FROM pastnames WHERE User = ? AND ID NOT IN (SELECT ID FROM (SELECT ID FROM pastnames WHERE User = ? ORDER BY Timestamp DESC, ID DESC LIMIT 20) T)")
	db.sqlGetPastNames, err = db.Prepare("SELECT Name FROM (SELECT Name, Timestamp, ID FROM pastnames WHERE User = ? ORDER BY Timestamp DESC, ID DESC LIMIT 20) T ORDER BY T.Timestamp ASC, T.ID ASC")
	db.sqlAddNickChange, err = db.Prepare("INSERT INTO pastnicks (User, Guild, Nickname, Timestamp) VALUES (?, ?, ?, UTC_TIMESTAMP())")
	db.sqlPruneNicks, err = db.Prepare("DELETE FROM pastnicks WHERE User = ? AND Guild = ? AND ID NOT IN (SELECT ID FROM (SELECT ID FROM pastnicks WHERE User = ? AND Guild = ? ORDER BY Timestamp DESC, ID DESC LIMIT 20) T)")
	db.sqlGetPastNicks, err = db.Prepare("SELECT Nickname FROM (SELECT Nickname, Timestamp, ID FROM pastnicks WHERE User = ? AND Guild = ? ORDER BY Timestamp DESC, ID DESC LIMIT 20) T ORDER BY T.Timestamp ASC, T.ID ASC")
	db.sqlAudit, err = db.Prepare("INSERT INTO debuglog (Type, User, Message, Timestamp, Guild) VALUE(?, ?, ?, UTC_TIMESTAMP(), ?)")
	return err
}

// Audit types
const (
	AuditTypeLog = iota
	AuditTypeAction
	AuditTypeCommand
)

func (db *BotDB) parseStringResults(q *sql.Rows) []string {
	r := make([]string, 0, 3)
	for q.Next() {
		p := ""
		err := q.Scan(&p)
		if err == nil {
			r = append(r, p)
		}
		db.log.LogError("Row scan error: ", err)
	}
	return r
}

// CheckError logs any unknown errors and pings the database to check if it's still there
func (db *BotDB) CheckError(name string, err error) error {
	if err != nil && err != sql.ErrNoRows && err != sql.ErrTxDone && err != ErrDuplicateEntry {
		if db.Status.Get() {
			db.log.LogError(name+" error: ", err)
		}
		if db.db.Ping() != nil {
			db.Status.Set(false)
		}
	}
	return err
}

// AddUser adds or updates user information
func (db *BotDB) AddUser(id uint64, username string, discriminator int, avatar string) {
	_, err := db.sqlAddUser.Exec(id, username, discriminator, avatar)
	db.CheckError("AddUser", err)
}

// AddMember adds or updates guild-specific user information
func (db *BotDB) AddMember(id uint64, guild uint64, firstseen time.Time, nickname string) {
	_, err := db.sqlAddMember.Exec(id, guild, firstseen, nickname)
	db.CheckError("AddMember", err)
}

// RemoveMember removes a user from a guild
func (db *BotDB) RemoveMember(id uint64, guild uint64) error {
	_, err := db.sqlRemoveMember.Exec(guild, id)
	err = db.standardErr(err)
	return db.CheckError("RemoveMember", err)
}

// GetUser gets the guild-independent information about a user (if it exists)
func (db *BotDB) GetUser(id uint64) (*discordgo.User, time.Time, *time.Location) {
	u := &discordgo.User{}
	var lastseen time.Time
	var loc sql.NullString
	var discriminator int
	err := db.sqlGetUser.QueryRow(id).Scan(&u.ID, &u.Username, &discriminator, &u.Avatar, &lastseen, &loc)
	if discriminator > 0 {
		u.Discriminator = strconv.Itoa(discriminator)
	}
	if err == sql.ErrNoRows || db.CheckError("GetUser", err) != nil {
		return nil, lastseen, nil
	}
	return u, lastseen, evalTimeZone(loc)
}

// GetMember gets all information about a user for the given guild
func (db *BotDB) GetMember(id uint64, guild uint64) (*discordgo.Member, time.Time) {
	m := &discordgo.Member{}
	m.User = &discordgo.User{}
	var lastseen time.Time
	var joinedat time.Time
	var discriminator int
	err := db.sqlGetMember.QueryRow(id, guild).Scan(&m.User.ID, &m.User.Username, &discriminator, &m.User.Avatar, &lastseen, &m.Nick, &joinedat)
	m.JoinedAt = joinedat
	if discriminator > 0 {
		m.User.Discriminator = strconv.Itoa(discriminator)
	}
	if err == sql.ErrNoRows {
		m.User, lastseen, _ = db.GetUser(id)
		if m.User == nil {
			return nil, lastseen
		}
		return m, lastseen
	}
	db.CheckError("GetMember", err)
	return m, lastseen
}

// FindGuildUsers returns all users in a guild that could satisfy the given name.
func (db *BotDB) FindGuildUsers(name string, maxresults uint64, offset uint64, guild uint64) []uint64 {
	q, err := db.sqlFindGuildUsers.Query(guild, name, name, maxresults, offset)
	if db.CheckError("FindGuildUsers", err) != nil {
		return []uint64{}
	}
	defer q.Close()
	r := make([]uint64, 0, 4)
	for q.Next() {
		var p uint64
		if err := q.Scan(&p); err == nil {
			r = append(r, p)
		}
	}
	return r
}

// FindUser returns all users with the given name and discriminator (which should be only one but cache errors can happen)
func (db *BotDB) FindUser(name string, discriminator int, maxresults uint64, offset uint64) []uint64 {
	q, err := db.sqlFindUser.Query(discriminator, name, maxresults, offset)
	if db.CheckError("FindUser", err) != nil {
		return []uint64{}
	}
	defer q.Close()
	r := make([]uint64, 0, 4)
	for q.Next() {
		var p uint64
		if err := q.Scan(&p); err == nil {
			r = append(r, p)
		}
	}
	return r
}

func evalTimeZone(loc sql.NullString) *time.Location {
	if loc.Valid && len(loc.String) > 0 {
		l, err := time.LoadLocation(loc.String)
		if err == nil {
			return l
		}
	}
	return nil
}

// GetTimeZone returns the evaluated timezone for the user
func (db *BotDB) GetTimeZone(user uint64) *time.Location {
	var loc sql.NullString
	err := db.sqlGetTimeZone.QueryRow(user).Scan(&loc)
	if db.CheckError("GetTimeZone", err) != nil {
		return nil
	}
	return evalTimeZone(loc)
}

// AddNameChange records a username a user is no longer using, pruning entries beyond the retention cap
func (db *BotDB) AddNameChange(user uint64, name string) {
	_, err := db.sqlAddNameChange.Exec(user, name)
	if db.CheckError("AddNameChange", err) != nil {
		return
	}
	_, err = db.sqlPruneNames.Exec(user, user)
	db.CheckError("PruneNames", err)
}

// GetPastNames returns up to the last 20 recorded usernames for a user, oldest first
func (db *BotDB) GetPastNames(user uint64) []string {
	q, err := db.sqlGetPastNames.Query(user)
	if db.CheckError("GetPastNames", err) != nil {
		return []string{}
	}
	defer q.Close()
	return db.parseStringResults(q)
}

// AddNickChange records a nickname a member is no longer using, pruning entries beyond the retention cap
func (db *BotDB) AddNickChange(user uint64, guild uint64, nick string) {
	_, err := db.sqlAddNickChange.Exec(user, guild, nick)
	if db.CheckError("AddNickChange", err) != nil {
		return
	}
	_, err = db.sqlPruneNicks.Exec(user, guild, user, guild)
	db.CheckError("PruneNicks", err)
}

// GetPastNicks returns up to the last 20 recorded nicknames for a member, oldest first
func (db *BotDB) GetPastNicks(user uint64, guild uint64) []string {
	q, err := db.sqlGetPastNicks.Query(user, guild)
	if db.CheckError("GetPastNicks", err) != nil {
		return []string{}
	}
	defer q.Close()
	return db.parseStringResults(q)
}

// Audit writes an entry into the audit log
func (db *BotDB) Audit(ty uint8, user *discordgo.User, message string, guild uint64) {
	var err error
	if user == nil {
		_, err = db.sqlAudit.Exec(ty, nil, message, guild)
	} else {
		_, err = db.sqlAudit.Exec(ty, SBatoi(user.ID), message, guild)
	}

	if err != nil && db.Status.Get() {
		fmt.Println("Logger failed to log to database! ", err.Error())
	}
}
