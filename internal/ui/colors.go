package ui

// The Color helpers read the active theme on every call so that InitTheme
// and SetTheme take effect immediately. Names follow the dark theme's hue
// for each role.

// Paint wraps s in code and the theme's reset sequence. With NoColorTheme
// active s comes back unchanged.
func Paint(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + ColorReset()
}

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorCyan() string      { return GetCurrentTheme().Secondary }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
