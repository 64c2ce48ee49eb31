package job

import "sort"

// Built-in presets for the two tariff schedule document sets.
var presets = map[string]Definition{
	"chapters": {
		Label:        "Chapter",
		URLTemplate:  "https://hts.usitc.gov/reststop/file?release=currentRelease&filename=Chapter%20{{.ID}}",
		FileTemplate: "Chapter_{{.ID}}.pdf",
		OutputDir:    "hts_chapters",
		Start:        1,
		End:          99,
		Client:       "browser",
	},
	"general-notes": {
		Label:        "General Note",
		URLTemplate:  "https://hts.usitc.gov/reststop/file?release=currentRelease&filename=General%20Note%20{{.ID}}",
		FileTemplate: "General_Note_{{.ID}}.pdf",
		OutputDir:    "hts_general_notes",
		Start:        1,
		End:          36,
		Client:       "standard",
	},
}

// DefaultPreset is used when no profile is selected.
const DefaultPreset = "chapters"

// Preset returns a copy of the built-in definition registered under name.
func Preset(name string) (Definition, bool) {
	d, ok := presets[name]
	return d, ok
}

// PresetNames returns the sorted names of the built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
