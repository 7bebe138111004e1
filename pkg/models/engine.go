package models

// Engine identifies one AI search surface.
type Engine string

const (
	EnginePerplexity Engine = "perplexity"
	EngineChatGPT    Engine = "chatgpt"
	EngineGoogle     Engine = "google"
	EngineClaude     Engine = "claude"
)

type EngineInfo struct {
	ID   Engine `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Logo string `json:"logo" yaml:"logo"`
}

// EngineCatalog is the fixed set of engines a user can grade against, in
// display order.
var EngineCatalog = []EngineInfo{
	{ID: EnginePerplexity, Name: "Perplexity", Logo: "/static/engines/perplexity.svg"},
	{ID: EngineChatGPT, Name: "ChatGPT Search", Logo: "/static/engines/chatgpt.svg"},
	{ID: EngineGoogle, Name: "Google SGE", Logo: "/static/engines/google.svg"},
	{ID: EngineClaude, Name: "Claude Search", Logo: "/static/engines/claude.svg"},
}

func LookupEngine(id Engine) (EngineInfo, bool) {
	for _, e := range EngineCatalog {
		if e.ID == id {
			return e, true
		}
	}
	return EngineInfo{}, false
}

func ContainsEngine(list []Engine, id Engine) bool {
	for _, e := range list {
		if e == id {
			return true
		}
	}
	return false
}
