package models

// ModelInfo describes a selectable language model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultModelID is used when a chat does not specify a model.
const DefaultModelID = "gemini-2.0-flash"

// Models is the catalog offered to clients.
var Models = []ModelInfo{
	{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Description: "Fast and efficient"},
	{ID: "gemini-pro", Name: "Gemini Pro", Description: "Advanced reasoning"},
	{ID: "gemini-ultra", Name: "Gemini Ultra", Description: "Most capable"},
}

// ModelName returns the display name for a model id, or "Unknown".
func ModelName(id string) string {
	for _, m := range Models {
		if m.ID == id {
			return m.Name
		}
	}
	return "Unknown"
}

// QuickPrompt is a canned prompt starter.
type QuickPrompt struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

var QuickPrompts = []QuickPrompt{
	{Title: "Explain Code", Prompt: "Please explain this code and how it works:"},
	{Title: "Write Email", Prompt: "Help me write a professional email about:"},
	{Title: "Summarize", Prompt: "Please summarize the following text:"},
	{Title: "Translate", Prompt: "Please translate this to English:"},
	{Title: "Debug Code", Prompt: "Help me debug this code issue:"},
	{Title: "Creative Writing", Prompt: "Help me write a creative story about:"},
}
