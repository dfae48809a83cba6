package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The picker must stay readable on both light and dark terminal backgrounds, so
// colors are lipgloss.AdaptiveColor pairs and "faint" is only used on dark ones.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted lipgloss.TerminalColor = ac("240", "243")
	colorTitle lipgloss.TerminalColor = ac("#475569", "#cbd5e1")

	colorChipBg lipgloss.TerminalColor = ac("#16a34a", "#22c55e")
	colorChipFg lipgloss.TerminalColor = ac("#ffffff", "#052e16")

	// Armed chips: one more backspace removes the last one.
	colorChipArmedBg lipgloss.TerminalColor = ac("#fef08a", "#facc15")
	colorChipArmedFg lipgloss.TerminalColor = ac("#000000", "#000000")

	colorRemove   lipgloss.TerminalColor = ac("#c2410c", "#f97316")
	colorInputBg  lipgloss.TerminalColor = ac("254", "234")
	colorEmail    lipgloss.TerminalColor = ac("#1d4ed8", "#60a5fa")
	colorAvatar   lipgloss.TerminalColor = ac("#334155", "#e2e8f0")
	colorAvatarBg lipgloss.TerminalColor = ac("#e2e8f0", "#334155")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorTitle)
}

func styleChip(armed bool) lipgloss.Style {
	if armed {
		return lipgloss.NewStyle().Background(colorChipArmedBg).Foreground(colorChipArmedFg)
	}
	return lipgloss.NewStyle().Background(colorChipBg).Foreground(colorChipFg)
}

func styleChipRemove(armed bool) lipgloss.Style {
	return styleChip(armed).Foreground(colorRemove).Bold(true)
}

func styleAvatar() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAvatar).Background(colorAvatarBg).Bold(true)
}

func styleEmail() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorEmail)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the picker.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a TUI by accident, so only NO_COLOR is honored here.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector found.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) explicit theme (config tui.theme or CONTACTPICKER_TUI_THEME): light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference(theme string) {
	if v := strings.TrimSpace(os.Getenv("CONTACTPICKER_TUI_THEME")); v != "" {
		theme = v
	}
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
