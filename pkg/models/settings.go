package models

// Settings is the flat client preference record. It has no identity and is
// replaced wholesale on load and save.
type Settings struct {
	AutoScroll     bool `json:"autoScroll"`
	SoundEnabled   bool `json:"soundEnabled"`
	FontSize       int  `json:"fontSize"`
	MessagePreview bool `json:"messagePreview"`
	CompactMode    bool `json:"compactMode"`
	ShowTimestamps bool `json:"showTimestamps"`
	AutoSave       bool `json:"autoSave"`
	VoiceEnabled   bool `json:"voiceEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoScroll:     true,
		SoundEnabled:   true,
		FontSize:       14,
		MessagePreview: true,
		CompactMode:    false,
		ShowTimestamps: true,
		AutoSave:       true,
		VoiceEnabled:   true,
	}
}
