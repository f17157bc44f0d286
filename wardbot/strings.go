package wardbot

// All user-facing strings used by wardbot and its modules
const (
	STRING_INVALID_COMMAND = iota
	STRING_NO_SERVER
	STRING_DATABASE_ERROR
	STRING_COMMAND_DISABLED
	STRING_COMMAND_WRONG_CHANNEL
	STRING_NO_PERMISSIONS
	STRING_MEMBER_NOT_FOUND
	STRING_USERS_RENAME_LENGTH
	STRING_USERS_RENAME_HIERARCHY
	STRING_USERS_RENAME_FORBIDDEN
	STRING_USERS_RENAME_INVALID
	STRING_USERS_RENAME_UNEXPECTED
	STRING_USERS_RENAME_DONE
	STRING_USERS_RENAME_AUDIT
	STRING_USERS_NO_NAMES
	STRING_USERS_PAST_NAMES
	STRING_USERS_PAST_NICKNAMES
	STRING_USERS_CHILLING
	STRING_USERS_DAYS_AGO
	STRING_USERS_UNKNOWN
	STRING_USERS_JOINED_DISCORD
	STRING_USERS_JOINED_SERVER
	STRING_USERS_ROLES
	STRING_USERS_ROLES_OVERFLOW
	STRING_USERS_PREVIOUS_NAMES
	STRING_USERS_PREVIOUS_NICKNAMES
	STRING_USERS_VOICE_CHANNEL
	STRING_USERS_MEMBER_FOOTER
	STRING_USERS_SHARED_SERVERS
	STRING_USERS_JOIN_NOTICE
)

// StringMap is a map of all user-facing strings used by wardbot
var StringMap = map[int]string{
	STRING_INVALID_COMMAND:          "``%s`` is not a valid command.\nFor a list of valid commands, type %shelp.",
	STRING_NO_SERVER:                "This command can only be run inside a server.",
	STRING_DATABASE_ERROR:           "```\nA temporary database outage is preventing this command from being executed.```",
	STRING_COMMAND_DISABLED:         "That command is disabled on this server.",
	STRING_COMMAND_WRONG_CHANNEL:    "You can't use that command in this channel!",
	STRING_NO_PERMISSIONS:           "You don't have permission to run that command!",
	STRING_MEMBER_NOT_FOUND:         "Could not find any member matching ``%s`` on this server.",
	STRING_USERS_RENAME_LENGTH:      "Nicknames must be between 2 and 32 characters long.",
	STRING_USERS_RENAME_HIERARCHY:   "I do not have permission to rename that member. They may be higher than or equal to me in the role hierarchy.",
	STRING_USERS_RENAME_FORBIDDEN:   "I do not have permission to rename that member.",
	STRING_USERS_RENAME_INVALID:     "That nickname is invalid.",
	STRING_USERS_RENAME_UNEXPECTED:  "An unexpected error has occurred.",
	STRING_USERS_RENAME_DONE:        "Done.",
	STRING_USERS_RENAME_AUDIT:       "Moderator %s (%s): %s",
	STRING_USERS_NO_NAMES:           "That user doesn't have any recorded name or nickname change.",
	STRING_USERS_PAST_NAMES:         "**Past 20 names**:",
	STRING_USERS_PAST_NICKNAMES:     "**Past 20 nicknames**:",
	STRING_USERS_CHILLING:           "Chilling in %s status",
	STRING_USERS_DAYS_AGO:           "%s\n(%v days ago)",
	STRING_USERS_UNKNOWN:            "Unknown",
	STRING_USERS_JOINED_DISCORD:     "Joined Discord on",
	STRING_USERS_JOINED_SERVER:      "Joined this server on",
	STRING_USERS_ROLES:              "Roles",
	STRING_USERS_ROLES_OVERFLOW:     "and %d more roles not displayed due to embed limits.",
	STRING_USERS_PREVIOUS_NAMES:     "Previous Names",
	STRING_USERS_PREVIOUS_NICKNAMES: "Previous Nicknames",
	STRING_USERS_VOICE_CHANNEL:      "Current voice channel",
	STRING_USERS_MEMBER_FOOTER:      "Member #%d | User ID: %s",
	STRING_USERS_SHARED_SERVERS:     "%d shared servers",
	STRING_USERS_JOIN_NOTICE:        "%v created their account %s ago and just joined this server.",
}
