package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/iris"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

var (
	controlCharsPattern = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

var (
	teamAliases     = []string{"팀", "파티", "team", "party"}
	favoriteAliases = []string{"즐겨찾기", "찜", "favorite", "fav"}
	dexAliases      = []string{"도감", "포켓몬", "dex", "pokedex", "pokemon"}
	compareAliases  = []string{"비교", "compare", "vs"}
	recentAliases   = []string{"최근", "기록", "recent", "history"}
	helpAliases     = []string{"도움말", "도움", "help", "명령어", "commands"}

	addAliases     = []string{"추가", "등록", "add"}
	removeAliases  = []string{"제거", "삭제", "빼기", "remove", "del", "delete"}
	listAliases    = []string{"목록", "보기", "list", "show"}
	clearAliases   = []string{"초기화", "비우기", "clear", "reset"}
	analyzeAliases = []string{"분석", "analyze", "analysis"}
)

// MessageAdapter converts KakaoTalk messages to bot commands
type MessageAdapter struct {
	prefix string
}

// NewMessageAdapter creates a new MessageAdapter
func NewMessageAdapter(prefix string) *MessageAdapter {
	return &MessageAdapter{prefix: prefix}
}

// ParsedCommand represents a parsed command
type ParsedCommand struct {
	Type       domain.CommandType
	Params     map[string]any
	RawMessage string
}

// ParseMessage parses a KakaoTalk message into a command
func (ma *MessageAdapter) ParseMessage(message *iris.Message) *ParsedCommand {
	if message == nil || message.Msg == "" {
		return ma.createUnknownCommand("")
	}

	text := strings.TrimSpace(message.Msg)
	if !strings.HasPrefix(text, ma.prefix) {
		return ma.createUnknownCommand(text)
	}

	commandText := ma.sanitize(text[len(ma.prefix):])
	parts := strings.Fields(commandText)
	if len(parts) == 0 {
		return ma.createUnknownCommand(text)
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch {
	case util.Contains(teamAliases, command):
		return ma.parseTeamCommand(args, text)
	case util.Contains(favoriteAliases, command):
		return ma.parseFavoriteCommand(args, text)
	case util.Contains(dexAliases, command):
		return ma.parseDexCommand(args, text)
	case util.Contains(compareAliases, command):
		return ma.parseCompareCommand(args, text)
	case util.Contains(recentAliases, command):
		params := map[string]any{"action": "list"}
		if len(args) > 0 && util.Contains(clearAliases, strings.ToLower(args[0])) {
			params["action"] = "clear"
		}
		return &ParsedCommand{Type: domain.CommandRecent, Params: params, RawMessage: text}
	case util.Contains(helpAliases, command):
		return &ParsedCommand{Type: domain.CommandHelp, Params: make(map[string]any), RawMessage: text}
	}

	// "!피카츄" is shorthand for a dex lookup.
	return &ParsedCommand{
		Type:       domain.CommandDexInfo,
		Params:     map[string]any{"query": commandText},
		RawMessage: text,
	}
}

func (ma *MessageAdapter) parseTeamCommand(args []string, rawMessage string) *ParsedCommand {
	if len(args) == 0 {
		return &ParsedCommand{
			Type:       domain.CommandTeamList,
			Params:     map[string]any{"action": "list"},
			RawMessage: rawMessage,
		}
	}

	subCmd := strings.ToLower(args[0])
	rest := strings.Join(args[1:], " ")

	switch {
	case util.Contains(addAliases, subCmd):
		return ma.queryCommand(domain.CommandTeamAdd, "add", rest, rawMessage)
	case util.Contains(removeAliases, subCmd):
		return ma.queryCommand(domain.CommandTeamRemove, "remove", rest, rawMessage)
	case util.Contains(listAliases, subCmd):
		return &ParsedCommand{
			Type:       domain.CommandTeamList,
			Params:     map[string]any{"action": "list"},
			RawMessage: rawMessage,
		}
	case util.Contains(clearAliases, subCmd):
		return &ParsedCommand{
			Type:       domain.CommandTeamClear,
			Params:     map[string]any{"action": "clear"},
			RawMessage: rawMessage,
		}
	case util.Contains(analyzeAliases, subCmd):
		return &ParsedCommand{
			Type:       domain.CommandTeamAnalyze,
			Params:     map[string]any{"action": "analyze"},
			RawMessage: rawMessage,
		}
	}

	// "!팀 피카츄" adds directly.
	return ma.queryCommand(domain.CommandTeamAdd, "add", strings.Join(args, " "), rawMessage)
}

func (ma *MessageAdapter) parseFavoriteCommand(args []string, rawMessage string) *ParsedCommand {
	if len(args) == 0 {
		return &ParsedCommand{
			Type:       domain.CommandFavoriteList,
			Params:     map[string]any{"action": "list"},
			RawMessage: rawMessage,
		}
	}

	subCmd := strings.ToLower(args[0])
	switch {
	case util.Contains(listAliases, subCmd):
		return &ParsedCommand{
			Type:       domain.CommandFavoriteList,
			Params:     map[string]any{"action": "list"},
			RawMessage: rawMessage,
		}
	case util.Contains(clearAliases, subCmd):
		return &ParsedCommand{
			Type:       domain.CommandFavoriteClear,
			Params:     map[string]any{"action": "clear"},
			RawMessage: rawMessage,
		}
	case util.Contains(addAliases, subCmd), util.Contains(removeAliases, subCmd):
		return ma.queryCommand(domain.CommandFavoriteToggle, "toggle", strings.Join(args[1:], " "), rawMessage)
	}

	return ma.queryCommand(domain.CommandFavoriteToggle, "toggle", strings.Join(args, " "), rawMessage)
}

func (ma *MessageAdapter) parseDexCommand(args []string, rawMessage string) *ParsedCommand {
	if len(args) == 0 {
		return &ParsedCommand{
			Type:       domain.CommandDexList,
			Params:     map[string]any{"page": 1},
			RawMessage: rawMessage,
		}
	}

	if util.Contains(listAliases, strings.ToLower(args[0])) {
		rest := args[1:]
		params := map[string]any{}
		// "!도감 목록 불꽃 2": an optional type filter comes before the page.
		if len(rest) > 0 && !isNumber(rest[0]) {
			params["type"] = typeFilterArg(rest[0])
			rest = rest[1:]
		}
		params["page"] = ma.parsePage(rest)
		return &ParsedCommand{
			Type:       domain.CommandDexList,
			Params:     params,
			RawMessage: rawMessage,
		}
	}

	return ma.queryCommand(domain.CommandDexInfo, "", strings.Join(args, " "), rawMessage)
}

func (ma *MessageAdapter) parseCompareCommand(args []string, rawMessage string) *ParsedCommand {
	names := make([]string, 0, 2)
	for _, arg := range args {
		if strings.EqualFold(arg, "vs") {
			continue
		}
		names = append(names, arg)
	}

	params := make(map[string]any)
	if len(names) >= 1 {
		params["left"] = names[0]
	}
	if len(names) >= 2 {
		params["right"] = strings.Join(names[1:], " ")
	}

	return &ParsedCommand{
		Type:       domain.CommandCompare,
		Params:     params,
		RawMessage: rawMessage,
	}
}

func (ma *MessageAdapter) queryCommand(cmdType domain.CommandType, action, query, rawMessage string) *ParsedCommand {
	params := make(map[string]any)
	if action != "" {
		params["action"] = action
	}
	if query = strings.TrimSpace(query); query != "" {
		params["query"] = query
	}
	return &ParsedCommand{Type: cmdType, Params: params, RawMessage: rawMessage}
}

// typeFilterArg accepts either the Korean label or the English type name.
// Validation is left to the command so it can reply with a hint.
func typeFilterArg(arg string) string {
	for t, label := range typeLabels {
		if arg == label {
			return string(t)
		}
	}
	return strings.ToLower(arg)
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// parsePage reads an optional page number, clamped to the configured range.
func (ma *MessageAdapter) parsePage(args []string) int {
	if len(args) == 0 {
		return 1
	}
	page, err := strconv.Atoi(args[0])
	if err != nil {
		return 1
	}
	return util.Clamp(page, 1, constants.PaginationConfig.MaxPage)
}

func (ma *MessageAdapter) createUnknownCommand(text string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		Params:     make(map[string]any),
		RawMessage: text,
	}
}

func (ma *MessageAdapter) sanitize(input string) string {
	withoutControl := controlCharsPattern.ReplaceAllString(input, " ")
	normalized := strings.TrimSpace(whitespacePattern.ReplaceAllString(withoutControl, " "))

	runes := []rune(normalized)
	if len(runes) > constants.InputLimits.MaxQueryLength {
		return strings.TrimSpace(string(runes[:constants.InputLimits.MaxQueryLength]))
	}
	return normalized
}
