package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestGlyphs_Preference(t *testing.T) {
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })

	setGlyphs(glyphSetUnicode)
	applyGlyphPreference("")
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs by default; got %v", got)
	}

	applyGlyphPreference(" ASCII ")
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected ascii glyphs; got %v", got)
	}
	if glyphRemove() != "x" || glyphEllipsis() != "..." {
		t.Fatalf("unexpected ascii glyphs %q %q", glyphRemove(), glyphEllipsis())
	}

	// Unknown values keep the current set.
	applyGlyphPreference("bogus")
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", got)
	}

	applyGlyphPreference("unicode")
	if glyphRemove() != "×" {
		t.Fatalf("expected unicode remove glyph, got %q", glyphRemove())
	}
}

func TestThemePreference_ArmedChipStandsOut(t *testing.T) {
	oldProfile := lipgloss.ColorProfile()
	oldBG := lipgloss.HasDarkBackground()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(oldProfile)
		lipgloss.SetHasDarkBackground(oldBG)
	})
	t.Setenv("CONTACTPICKER_TUI_THEME", "")
	t.Setenv("COLORFGBG", "")

	applyThemePreference("light")
	if lipgloss.HasDarkBackground() {
		t.Fatalf("expected light background after forcing light theme")
	}
	light := styleChip(false).Render("Ann")

	applyThemePreference("dark")
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("expected dark background after forcing dark theme")
	}
	dark := styleChip(false).Render("Ann")
	if light == dark {
		t.Fatalf("expected chip colors to follow the theme")
	}
	if styleChip(true).Render("Ann") == dark {
		t.Fatalf("expected armed chip to render differently")
	}

	// The env override wins over the configured theme.
	t.Setenv("CONTACTPICKER_TUI_THEME", "light")
	applyThemePreference("dark")
	if lipgloss.HasDarkBackground() {
		t.Fatalf("expected env theme to win")
	}

	t.Setenv("CONTACTPICKER_TUI_THEME", "")
	t.Setenv("COLORFGBG", "15;0")
	applyThemePreference("auto")
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("expected COLORFGBG bg=0 to mean dark")
	}
}

func TestFitLine_TruncatesWithEllipsis(t *testing.T) {
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })
	setGlyphs(glyphSetUnicode)

	got := fitLine("Ann Hartley  ann.hartley@example.com", 12)
	if lipgloss.Width(got) > 12 || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected fitLine output %q", got)
	}
	if fitLine("short", 20) != "short" {
		t.Fatalf("expected short lines untouched")
	}
}
