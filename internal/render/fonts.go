package render

import (
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager loads a TrueType/OpenType font and hands out faces per size.
// Faces are cached; a font.Face is not safe for concurrent use, so each build
// should draw through its own manager (see Clone).
type FontManager struct {
	parsed *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFontManager creates a font manager for the font at customPath.
// If customPath is empty or unreadable, the embedded Go Regular font is used.
func NewFontManager(customPath string) (*FontManager, error) {
	var fontData []byte

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			log.Printf("Warning: could not load font %q, using default: %v", customPath, err)
		} else {
			fontData = data
		}
	}

	if fontData == nil {
		fontData = goregular.TTF
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &FontManager{
		parsed: parsed,
		faces:  make(map[float64]font.Face),
	}, nil
}

// Clone returns a manager sharing the parsed font but with its own face cache.
func (fm *FontManager) Clone() *FontManager {
	return &FontManager{
		parsed: fm.parsed,
		faces:  make(map[float64]font.Face),
	}
}

// Face returns a face at the given pixel size (72 DPI, so points equal pixels).
func (fm *FontManager) Face(size float64) (font.Face, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if face, ok := fm.faces[size]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	fm.faces[size] = face
	return face, nil
}
