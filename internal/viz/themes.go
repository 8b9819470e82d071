package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the live view
type Theme struct {
	Name     string
	Chamber  lipgloss.Color
	Header   lipgloss.Color
	Label    lipgloss.Color
	Value    lipgloss.Color
	Muted    lipgloss.Color
	Loaded   lipgloss.Color
	FreeFall lipgloss.Color
	Warning  lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Chamber:  lipgloss.Color("#00ffff"),
		Header:   lipgloss.Color("#ff00ff"),
		Label:    lipgloss.Color("#888899"),
		Value:    lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666688"),
		Loaded:   lipgloss.Color("#ff8800"),
		FreeFall: lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Chamber:  lipgloss.Color("#00ff00"), // Green phosphor
		Header:   lipgloss.Color("#88ff88"),
		Label:    lipgloss.Color("#00cc00"),
		Value:    lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Loaded:   lipgloss.Color("#ffff00"),
		FreeFall: lipgloss.Color("#88ff88"),
		Warning:  lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Chamber:  lipgloss.Color("#ffffff"),
		Header:   lipgloss.Color("#ffffff"),
		Label:    lipgloss.Color("#888888"),
		Value:    lipgloss.Color("#cccccc"),
		Muted:    lipgloss.Color("#555555"),
		Loaded:   lipgloss.Color("#ffaa00"),
		FreeFall: lipgloss.Color("#0088ff"),
		Warning:  lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeCyberpunk, ThemeRetroGreen, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
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

func nextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
