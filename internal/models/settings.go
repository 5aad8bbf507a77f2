package models

// ThemeMode is the stored appearance preference.
type ThemeMode string

const (
	ThemeModeLight ThemeMode = "light"
	ThemeModeDark  ThemeMode = "dark"
	ThemeModeAuto  ThemeMode = "auto"
)

// Valid reports whether m is a known theme mode.
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeModeLight, ThemeModeDark, ThemeModeAuto:
		return true
	}
	return false
}
