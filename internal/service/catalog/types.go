package catalog

// Raw PokeAPI payloads. Only the fields the bot reads are declared.

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		IsHidden bool          `json:"is_hidden"`
		Slot     int           `json:"slot"`
		Ability  namedResource `json:"ability"`
	} `json:"abilities"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

type pokemonListResponse struct {
	Count   int             `json:"count"`
	Results []namedResource `json:"results"`
}

type typeResponse struct {
	Name    string `json:"name"`
	Pokemon []struct {
		Slot    int           `json:"slot"`
		Pokemon namedResource `json:"pokemon"`
	} `json:"pokemon"`
}

type speciesResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Genera []struct {
		Genus    string        `json:"genus"`
		Language namedResource `json:"language"`
	} `json:"genera"`
	FlavorTextEntries []struct {
		FlavorText string        `json:"flavor_text"`
		Language   namedResource `json:"language"`
	} `json:"flavor_text_entries"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
	IsLegendary bool `json:"is_legendary"`
	IsMythical  bool `json:"is_mythical"`
}

type chainLink struct {
	Species   namedResource `json:"species"`
	EvolvesTo []chainLink   `json:"evolves_to"`
}

type evolutionChainResponse struct {
	ID    int       `json:"id"`
	Chain chainLink `json:"chain"`
}

type abilityResponse struct {
	Name          string `json:"name"`
	EffectEntries []struct {
		Effect      string        `json:"effect"`
		ShortEffect string        `json:"short_effect"`
		Language    namedResource `json:"language"`
	} `json:"effect_entries"`
	FlavorTextEntries []struct {
		FlavorText string        `json:"flavor_text"`
		Language   namedResource `json:"language"`
	} `json:"flavor_text_entries"`
}

// Species is the descriptive part of a pokedex entry.
type Species struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Genus             string `json:"genus"`
	FlavorText        string `json:"flavor_text"`
	EvolutionChainURL string `json:"evolution_chain_url"`
	IsLegendary       bool   `json:"is_legendary"`
	IsMythical        bool   `json:"is_mythical"`
}

// EvolutionStage is one species in an evolution chain.
type EvolutionStage struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// AbilityInfo holds the English description of an ability.
type AbilityInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListEntry is one row of a pokedex page.
type ListEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListPage is one page of the national pokedex.
type ListPage struct {
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Entries []ListEntry `json:"entries"`
}
