// Package ui selects the color theme shared by the console output and the
// dashboard. Console code concatenates the Color* escapes; the dashboard
// builds lipgloss styles from CurrentPalette.
package ui
