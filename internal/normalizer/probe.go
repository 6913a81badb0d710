package normalizer

import (
	"fmt"
	"image"
	"io"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// Prober resolves the pixel dimensions of an encoded image.
type Prober interface {
	Probe(r io.Reader) (width, height int, err error)
}

// ConfigProber reads only the image header via image.DecodeConfig.
type ConfigProber struct{}

// Probe returns the stored dimensions without decoding pixel data.
func (ConfigProber) Probe(r io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// OrientedProber decodes the full image and applies its EXIF orientation,
// so a portrait photo stored sideways reports its display dimensions.
type OrientedProber struct{}

// Probe returns display dimensions after auto-orientation.
func (OrientedProber) Probe(r io.Reader) (int, int, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// ProberFor returns OrientedProber when oriented is set, ConfigProber otherwise.
func ProberFor(oriented bool) Prober {
	if oriented {
		return OrientedProber{}
	}
	return ConfigProber{}
}
