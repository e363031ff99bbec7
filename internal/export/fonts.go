package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// PostScript names of the embedded Go fonts, as pdfcpu registers them.
const (
	fontRegular = "GoRegular"
	fontBold    = "Go-Bold"
	fontItalic  = "Go-Italic"
	fontMono    = "GoMono"
)

var embeddedFonts = map[string][]byte{
	fontRegular: goregular.TTF,
	fontBold:    gobold.TTF,
	fontItalic:  goitalic.TTF,
	fontMono:    gomono.TTF,
}

// pdfcpu keeps its user fonts in package state, so installation is
// serialized process-wide.
var fontsMu sync.Mutex

// installFonts makes the embedded fonts available to pdfcpu from dir.
// Fonts already present in dir are not reinstalled.
func installFonts(dir string) error {
	fontsMu.Lock()
	defer fontsMu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("font dir: %w", err)
	}

	installed := false
	for name, ttf := range embeddedFonts {
		if _, err := os.Stat(filepath.Join(dir, name+".gob")); err == nil {
			continue
		}
		if err := font.InstallFontFromBytes(dir, name+".ttf", ttf); err != nil {
			return fmt.Errorf("install %s: %w", name, err)
		}
		installed = true
	}

	if !installed && font.UserFontDir == dir && fontsLoaded() {
		return nil
	}

	// Without this pdfcpu would point UserFontDir back at its own config dir.
	api.DisableConfigDir()
	font.UserFontDir = dir
	if err := font.LoadUserFonts(); err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	return nil
}

func fontsLoaded() bool {
	font.UserFontMetricsLock.RLock()
	defer font.UserFontMetricsLock.RUnlock()
	for name := range embeddedFonts {
		if _, ok := font.UserFontMetrics[name]; !ok {
			return false
		}
	}
	return true
}

// uncovered returns the distinct runes of text that fontName has no glyph
// for. Newlines are layout, not glyphs.
func uncovered(fontName, text string) []rune {
	font.UserFontMetricsLock.RLock()
	chars := font.UserFontMetrics[fontName].Chars
	font.UserFontMetricsLock.RUnlock()

	var missing []rune
	seen := make(map[rune]bool)
	for _, r := range text {
		if r == '\n' || seen[r] {
			continue
		}
		if _, ok := chars[uint32(r)]; !ok {
			seen[r] = true
			missing = append(missing, r)
		}
	}
	return missing
}
