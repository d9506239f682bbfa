package gemini

import (
	"strings"

	"luxelens/internal/domain"
)

var metalDescriptions = map[domain.MetalColor]string{
	domain.MetalSilver:   "bright, flawless silver or white gold with sharp, high-contrast chrome-like mirror reflections and cold highlights",
	domain.MetalGold:     "rich, deeply saturated 18k yellow gold with warm honey tones, brilliant metallic luster, and realistic golden glints",
	domain.MetalRoseGold: "premium pink-toned rose gold with warm copper-like metallic reflections and soft luxury sheen",
}

var stoneDescriptions = map[domain.StoneColor]string{
	domain.StoneOriginal: "enhance and amplify the current gemstones with maximum internal fire, clarity, and brilliant crystalline dispersion",
	domain.StoneDiamond:  "transform stones into flawless D-grade brilliant-cut diamonds with intense white fire, rainbow dispersion, and sharp facets",
	domain.StoneRuby:     "convert stones into deep, rich pigeon-blood rubies with a vivid crimson internal glow and crystalline perfection",
	domain.StoneSapphire: "convert stones into royal cornflower blue sapphires with velvety depth and brilliant crystalline facets",
	domain.StoneEmerald:  "convert stones into vivid, saturated forest green emeralds with luminous internal clarity and rich grass-green tones",
	domain.StoneAmethyst: "convert stones into deep siberian purple amethysts with brilliant violet and lilac light refractions",
}

var intensityDescriptions = map[domain.Intensity]string{
	domain.IntensityNatural: "a restrained, natural polish that keeps the piece believable",
	domain.IntensityPro:     "an e-commerce grade polish with clean highlights and balanced contrast",
	domain.IntensityUltra:   "maximum sparkle with pronounced light flares and dramatic facet fire",
}

const videoInstruction = "A cinematic slow-motion rotation of this jewelry piece, showcasing brilliant reflections and sparkles, studio lighting, depth of field, hyper-realistic detail, luxury atmosphere."

// BuildRetouchInstruction composes the catalog-retouch brief sent alongside
// the source image.
func BuildRetouchInstruction(opts domain.RetouchOptions) string {
	opts.Normalize()

	metal, ok := metalDescriptions[opts.MetalColor]
	if !ok {
		metal = "high-quality precious metal"
	}
	stone := stoneDescriptions[opts.StoneColor]
	finish := intensityDescriptions[opts.Intensity]

	parts := []string{
		"Retouch this jewelry photograph for a high-end luxury brand catalog.",
		"BACKGROUND & SHADOW: Replace background with a high-end studio " + string(opts.Background) + " surface. Add a soft, anatomically correct professional drop shadow where the piece touches the ground.",
		"GEMSTONE TRANSFORMATION: " + stone + ". Gemstones must look hyper-realistic, with multi-faceted light refraction, internal brilliance, and sharp edges.",
		"LUXURY METAL POLISH: Refine and re-render the metal to look like " + metal + ". Remove all imperfections, fingerprints, phone reflections, and noise.",
		"POLISH GRADE: Apply " + finish + ".",
		"LIGHTING: Use professional studio lighting setup: two-point key lighting to accentuate the jewelry shape and facets.",
		"IMAGE QUALITY: Output must be ultra-sharp, high-contrast, and in " + string(opts.AspectRatio) + " aspect ratio.",
		"The final image must look like it was shot by a world-class jewelry photographer. RETURN ONLY THE RETOUCHED IMAGE.",
	}
	return strings.Join(parts, "\n")
}
