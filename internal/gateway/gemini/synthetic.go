package gemini

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"luxelens/internal/domain"
	"luxelens/internal/gateway"
)

// syntheticRetouch renders a deterministic placeholder derived from the
// source bytes and options so repeated runs produce identical assets.
func (c *Client) syntheticRetouch(src domain.ImagePayload, opts domain.RetouchOptions) domain.ImagePayload {
	seed := deterministicSeed(src.Data, string(opts.MetalColor), string(opts.StoneColor), string(opts.Background))
	width, height := aspectDimensions(opts.AspectRatio)

	c.logger.Debug().
		Str("seed", seed).
		Str("aspect", string(opts.AspectRatio)).
		Msg("gemini: rendering synthetic retouch")

	return domain.ImagePayload{
		Data: renderPlaceholder(width, height, seed),
		MIME: "image/png",
	}
}

func (c *Client) syntheticVideo(src domain.ImagePayload) *gateway.Video {
	seed := deterministicSeed(src.Data, c.videoModel)
	c.logger.Debug().Str("seed", seed).Msg("gemini: returning synthetic video reference")
	return &gateway.Video{
		URL:    fmt.Sprintf("https://cdn.example.com/synthetic/%s/%s.mp4", c.videoModel, seed),
		MIME:   "video/mp4",
		Length: 8,
	}
}

func renderPlaceholder(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripe := height / 12
	if stripe < 16 {
		stripe = 16
	}
	for y := 0; y < height; y += stripe * 2 {
		end := y + stripe
		if end > height {
			end = height
		}
		draw.Draw(img, image.Rect(0, y, width, end), &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func aspectDimensions(aspect domain.AspectRatio) (int, int) {
	switch aspect {
	case domain.AspectWide:
		return 1920, 1080
	case domain.AspectStory:
		return 1080, 1920
	case domain.AspectPortrait:
		return 768, 1024
	case domain.AspectLandscape:
		return 1024, 768
	default:
		return 1024, 1024
	}
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "d4af37d4af37"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: parseHexByte(segment[0:2]),
		G: parseHexByte(segment[2:4]),
		B: parseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(data []byte, parts ...string) string {
	hasher := sha256.New()
	hasher.Write(data)
	hasher.Write([]byte{'|'})
	hasher.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
