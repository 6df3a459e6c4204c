package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the player colors. Bodies are indexed like the state.
type Theme struct {
	Name    string
	Bodies  [3]lipgloss.Color
	Trail   lipgloss.Color
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
}

var (
	// Sun, Earth, Moon as in the classic plots.
	ThemeSolar = Theme{
		Name:    "solar",
		Bodies:  [3]lipgloss.Color{"#ffa500", "#1e90ff", "#a0a0a0"},
		Trail:   lipgloss.Color("#555577"),
		Primary: lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Bodies:  [3]lipgloss.Color{"#ff00ff", "#00ffff", "#ffff00"},
		Trail:   lipgloss.Color("#444466"),
		Primary: lipgloss.Color("#ff00ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Warning: lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Bodies:  [3]lipgloss.Color{"#00ff00", "#88ff88", "#00cc00"},
		Trail:   lipgloss.Color("#005500"),
		Primary: lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Bodies:  [3]lipgloss.Color{"#ffffff", "#0088ff", "#cccccc"},
		Trail:   lipgloss.Color("#444444"),
		Primary: lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Warning: lipgloss.Color("#ffaa00"),
	}

	Themes = []Theme{
		ThemeSolar,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after current in Themes, wrapping around.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
