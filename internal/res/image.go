package res

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Image is a logo ready for embedding: PNG, JPG or GIF bytes and the pixel size.
type Image struct {
	Data   []byte
	Type   string
	Width  int
	Height int
}

// Aspect returns height over width.
func (i *Image) Aspect() float64 {
	if i.Width == 0 {
		return 0
	}
	return float64(i.Height) / float64(i.Width)
}

// Image converts the resource into an embeddable image. PNG, JPEG and GIF pass
// through; BMP, TIFF and WebP are re-encoded as PNG; SVG is rasterized to
// svgWidth pixels wide.
func (r *Resource) Image(svgWidth int) (*Image, error) {
	if r.Type != ResourceTypeImage {
		return nil, failure.Validationf("decode image", "%s is not an image", r.URL)
	}
	if r.MimeType == "image/svg+xml" || sniffSVG(r.Data) {
		return rasterizeSVG(r.Data, svgWidth)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(r.Data))
	if err != nil {
		return nil, failure.Validation("decode image", fmt.Errorf("%s: %w", r.URL, err))
	}
	switch format {
	case "png":
		return &Image{Data: r.Data, Type: "PNG", Width: cfg.Width, Height: cfg.Height}, nil
	case "jpeg":
		return &Image{Data: r.Data, Type: "JPG", Width: cfg.Width, Height: cfg.Height}, nil
	case "gif":
		return &Image{Data: r.Data, Type: "GIF", Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(r.Data))
	if err != nil {
		return nil, failure.Validation("decode image", fmt.Errorf("%s: %w", r.URL, err))
	}
	return encodePNG(img)
}

func sniffSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(string(head), "<svg")
}

func rasterizeSVG(data []byte, width int) (*Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, failure.Validation("rasterize svg", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, failure.Validationf("rasterize svg", "missing or empty viewBox")
	}
	if width <= 0 {
		width = int(math.Ceil(vw))
	}
	height := int(math.Ceil(float64(width) * vh / vw))

	icon.SetTarget(0, 0, float64(width), float64(height))
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return encodePNG(rgba)
}

func encodePNG(img image.Image) (*Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return &Image{Data: buf.Bytes(), Type: "PNG", Width: b.Dx(), Height: b.Dy()}, nil
}
