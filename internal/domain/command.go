package domain

type CommandType string

const (
	CommandTeamAdd        CommandType = "team_add"
	CommandTeamRemove     CommandType = "team_remove"
	CommandTeamList       CommandType = "team_list"
	CommandTeamClear      CommandType = "team_clear"
	CommandTeamAnalyze    CommandType = "team_analyze"
	CommandFavoriteToggle CommandType = "favorite_toggle"
	CommandFavoriteList   CommandType = "favorite_list"
	CommandFavoriteClear  CommandType = "favorite_clear"
	CommandDexInfo        CommandType = "dex_info"
	CommandDexList        CommandType = "dex_list"
	CommandCompare        CommandType = "compare"
	CommandRecent         CommandType = "recent"
	CommandHelp           CommandType = "help"
	CommandUnknown        CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandTeamAdd, CommandTeamRemove, CommandTeamList, CommandTeamClear, CommandTeamAnalyze,
		CommandFavoriteToggle, CommandFavoriteList, CommandFavoriteClear,
		CommandDexInfo, CommandDexList, CommandCompare, CommandRecent,
		CommandHelp, CommandUnknown:
		return true
	default:
		return false
	}
}
