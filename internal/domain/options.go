package domain

import "strings"

// MetalColor selects the metal finish the gateway should render.
type MetalColor string

const (
	MetalSilver   MetalColor = "silver"
	MetalGold     MetalColor = "gold"
	MetalRoseGold MetalColor = "rose-gold"
)

// StoneColor selects the gemstone treatment.
type StoneColor string

const (
	StoneOriginal StoneColor = "original"
	StoneDiamond  StoneColor = "diamond"
	StoneRuby     StoneColor = "ruby"
	StoneSapphire StoneColor = "sapphire"
	StoneEmerald  StoneColor = "emerald"
	StoneAmethyst StoneColor = "amethyst"
)

// Background selects the studio surface behind the piece.
type Background string

const (
	BackgroundWhite   Background = "white"
	BackgroundMarble  Background = "marble"
	BackgroundBlack   Background = "black"
	BackgroundNatural Background = "natural"
)

// Intensity selects the polish grade.
type Intensity string

const (
	IntensityNatural Intensity = "natural"
	IntensityPro     Intensity = "pro"
	IntensityUltra   Intensity = "ultra-sparkle"
)

// AspectRatio constrains the output composition.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectStory     AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// RetouchOptions is the style configuration applied to every item of a run.
type RetouchOptions struct {
	Background  Background  `json:"background"`
	Intensity   Intensity   `json:"intensity"`
	MetalColor  MetalColor  `json:"metal_color"`
	StoneColor  StoneColor  `json:"stone_color"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
}

// DefaultRetouchOptions mirrors the studio's initial selection.
func DefaultRetouchOptions() RetouchOptions {
	return RetouchOptions{
		Background:  BackgroundWhite,
		Intensity:   IntensityPro,
		MetalColor:  MetalSilver,
		StoneColor:  StoneOriginal,
		AspectRatio: AspectSquare,
	}
}

// Normalize sanitizes free-form input into supported values, falling back to
// the defaults for anything unrecognized.
func (o *RetouchOptions) Normalize() {
	o.Background = normalizeChoice(o.Background, BackgroundWhite,
		BackgroundWhite, BackgroundMarble, BackgroundBlack, BackgroundNatural)
	o.Intensity = normalizeChoice(o.Intensity, IntensityPro,
		IntensityNatural, IntensityPro, IntensityUltra)
	o.MetalColor = normalizeChoice(o.MetalColor, MetalSilver,
		MetalSilver, MetalGold, MetalRoseGold)
	o.StoneColor = normalizeChoice(o.StoneColor, StoneOriginal,
		StoneOriginal, StoneDiamond, StoneRuby, StoneSapphire, StoneEmerald, StoneAmethyst)
	o.AspectRatio = normalizeChoice(o.AspectRatio, AspectSquare,
		AspectSquare, AspectPortrait, AspectLandscape, AspectStory, AspectWide)
}

func normalizeChoice[T ~string](value, fallback T, allowed ...T) T {
	needle := T(strings.ToLower(strings.TrimSpace(string(value))))
	for _, candidate := range allowed {
		if needle == candidate {
			return candidate
		}
	}
	return fallback
}

// MetalLabel returns the catalog label for a metal finish.
func MetalLabel(m MetalColor) string {
	switch m {
	case MetalGold:
		return "18K Yellow Gold"
	case MetalRoseGold:
		return "Rose Gold"
	default:
		return "Fine Silver"
	}
}

// StoneLabel returns the catalog label for a gemstone treatment.
func StoneLabel(s StoneColor) string {
	switch s {
	case StoneDiamond:
		return "Pure Diamond"
	case StoneRuby:
		return "Royal Ruby"
	case StoneSapphire:
		return "Blue Sapphire"
	case StoneEmerald:
		return "Green Emerald"
	case StoneAmethyst:
		return "Purple Amethyst"
	default:
		return "Original Gem"
	}
}

// BackgroundLabel returns the catalog label for a studio surface.
func BackgroundLabel(b Background) string {
	switch b {
	case BackgroundMarble:
		return "Italian Marble"
	case BackgroundBlack:
		return "Noir Black"
	case BackgroundNatural:
		return "Soft Mist"
	default:
		return "High-Key White"
	}
}

// IntensityLabel returns the catalog label for a polish grade.
func IntensityLabel(i Intensity) string {
	switch i {
	case IntensityNatural:
		return "Natural Look"
	case IntensityUltra:
		return "Maximum Fire"
	default:
		return "E-com Polish"
	}
}
