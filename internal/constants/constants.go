package constants

import "time"

var CacheTTL = struct {
	Creature       time.Duration
	Species        time.Duration
	EvolutionChain time.Duration
	Ability        time.Duration
	CreatureList   time.Duration
	TypeMembers    time.Duration
	NotFound       time.Duration
}{
	Creature:       24 * time.Hour,   // 1일 - 포켓몬 기본 정보
	Species:        24 * time.Hour,   // 1일 - 종 정보
	EvolutionChain: 24 * time.Hour,   // 1일 - 진화 트리
	Ability:        24 * time.Hour,   // 1일 - 특성 설명
	CreatureList:   6 * time.Hour,    // 6시간 - 도감 목록 페이지
	TypeMembers:    24 * time.Hour,   // 1일 - 타입별 포켓몬 목록
	NotFound:       10 * time.Minute, // 10분 - 존재하지 않는 이름
}

var CacheKeys = struct {
	CreaturePrefix  string
	SpeciesPrefix   string
	EvolutionPrefix string
	AbilityPrefix   string
	ListPrefix      string
	TypePrefix      string
	FavoritesPrefix string
	RecentPrefix    string
}{
	CreaturePrefix:  "pokemon:",
	SpeciesPrefix:   "species:",
	EvolutionPrefix: "evolution:",
	AbilityPrefix:   "ability:",
	ListPrefix:      "pokemon-list:",
	TypePrefix:      "type-members:",
	FavoritesPrefix: "favorites:",
	RecentPrefix:    "recent:",
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var InputLimits = struct {
	MaxQueryLength int
}{
	MaxQueryLength: 100,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout:    5 * time.Minute,  // 429 Rate Limit 전용 타임아웃 (5분)
	HealthCheckInterval: 1 * time.Minute,  // Health Check 주기 (1분)
	HealthCheckTimeout:  10 * time.Second, // Health Check 타임아웃 (10초)
}

var PaginationConfig = struct {
	ItemsPerPage int
	MaxPage      int
}{
	ItemsPerPage: 20,  // 도감 목록 페이지당 항목 수
	MaxPage:      100, // 최대 페이지 번호
}

var APIConfig = struct {
	PokeAPIBaseURL   string
	PokeAPITimeout   time.Duration
	IrisTimeout      time.Duration
	ScraperBaseURL   string
	MaxRetryAttempts int
}{
	PokeAPIBaseURL:   "https://pokeapi.co/api/v2",
	PokeAPITimeout:   10 * time.Second,
	IrisTimeout:      10 * time.Second,
	ScraperBaseURL:   "https://pokemondb.net",
	MaxRetryAttempts: 3,
}

var TeamConfig = struct {
	RecentLimit     int
	ResolveParallel int
}{
	RecentLimit:     5, // 최근 본 포켓몬 최대 개수
	ResolveParallel: 4, // 즐겨찾기 동시 조회 수
}

var StringLimits = struct {
	FlavorText   int
	AbilityText  int
	MessageTotal int
}{
	FlavorText:   200,
	AbilityText:  150,
	MessageTotal: 3500,
}
