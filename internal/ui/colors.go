package ui

// The Color* functions return the escape sequence of the active theme for a
// role. They return "" when colors are disabled, so callers can concatenate
// them unconditionally.

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Failure }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorMagenta returns the highlight color.
func ColorMagenta() string { return GetCurrentTheme().Highlight }

// ColorCyan returns the accent color.
func ColorCyan() string { return GetCurrentTheme().Accent }

// ColorGrey returns the muted color.
func ColorGrey() string { return GetCurrentTheme().Muted }

// ColorBold returns the bold attribute.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorReset clears all attributes.
func ColorReset() string { return GetCurrentTheme().Reset }

// IsColorEnabled reports whether the active theme emits escape codes.
func IsColorEnabled() bool { return GetCurrentTheme().Name != NoColorTheme.Name }
