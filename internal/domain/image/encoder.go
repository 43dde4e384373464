package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/errors"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

// Encoder turns a validated upload into its base64 transport form. Sources
// above the downscale threshold are resized to the configured maximum long
// edge and re-encoded as JPEG before base64; this is lossy and one-way.
type Encoder struct {
	config *config.UploadConfig
	logger *utils.Logger
}

func NewEncoder(cfg *config.UploadConfig, logger *utils.Logger) *Encoder {
	return &Encoder{config: cfg, logger: logger}
}

// Encode produces the EncodedPayload for img. It never fails for
// well-formed input under the downscale threshold; a decode failure on the
// downscale path surfaces as a validate-kind error, to be treated like a
// validation failure by callers.
func (e *Encoder) Encode(ctx context.Context, img *UploadedImage) (*EncodedPayload, error) {
	if img == nil || len(img.Raw) == 0 {
		return nil, errors.New(errors.KindEncode, "encode", "missing image payload")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.KindEncode, "encode", "encoding cancelled", err)
	}

	threshold := e.config.DownscaleThreshold
	if threshold <= 0 {
		threshold = config.DefaultDownscaleThreshold
	}

	if img.Size <= threshold {
		return &EncodedPayload{
			Base64: base64.StdEncoding.EncodeToString(img.Raw),
			Format: img.Format,
			Width:  img.Width,
			Height: img.Height,
		}, nil
	}

	return e.downscale(img)
}

func (e *Encoder) downscale(img *UploadedImage) (*EncodedPayload, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Raw))
	if err != nil {
		return nil, errors.Wrap(errors.KindValidate, "encode",
			"the image could not be decoded for downscaling", err)
	}

	bounds := decoded.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	targetW, targetH := fitWithin(width, height, e.config.MaxDimension)

	scaled := decoded
	if targetW < width || targetH < height {
		dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), decoded, bounds, xdraw.Over, nil)
		scaled = dst
	}

	quality := e.config.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(errors.KindEncode, "encode", "re-encode downscaled image", err)
	}

	e.logger.DebugTag("IMAGE", "downscaled %dx%d -> %dx%d (%d -> %d bytes)",
		width, height, targetW, targetH, img.Size, buf.Len())

	return &EncodedPayload{
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Format: "jpeg",
		Width:  targetW,
		Height: targetH,
	}, nil
}

// fitWithin scales (w, h) down so the long edge is at most maxDim,
// preserving aspect ratio. Images already within bounds are untouched.
func fitWithin(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		scaled := h * maxDim / w
		if scaled < 1 {
			scaled = 1
		}
		return maxDim, scaled
	}
	scaled := w * maxDim / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxDim
}
