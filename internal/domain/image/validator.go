package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/errors"
)

// Validator checks a user-selected file before anything else in the
// pipeline runs. It is a pure decision function: no I/O, no mutation.
type Validator struct {
	config *config.UploadConfig
}

func NewValidator(cfg *config.UploadConfig) *Validator {
	return &Validator{config: cfg}
}

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
}

// FormatFromMIME maps a declared MIME type to the validator's canonical
// format name. Unknown types map to "".
func FormatFromMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return ""
	}
}

// Validate approves or rejects a file by declared MIME type, size and
// decodability. Rejections carry a user-facing message naming the specific
// violation.
func (v *Validator) Validate(name string, raw []byte, declaredMIME string) (*UploadedImage, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.KindValidate, "validate", "the selected file is empty")
	}

	format := FormatFromMIME(declaredMIME)
	if format == "" || !v.isTypeAllowed(declaredMIME) {
		return nil, errors.New(errors.KindValidate, "validate",
			fmt.Sprintf("unsupported file type %q: please select a JPEG, PNG, GIF or WEBP image", declaredMIME))
	}

	maxSize := v.config.MaxFileSize
	if maxSize <= 0 {
		maxSize = config.DefaultMaxFileSize
	}
	if int64(len(raw)) > maxSize {
		return nil, errors.New(errors.KindValidate, "validate",
			fmt.Sprintf("image is too large: %d bytes exceeds the %d MiB limit",
				len(raw), maxSize/(1024*1024)))
	}

	if !v.matchesSignature(raw, format) {
		return nil, errors.New(errors.KindValidate, "validate",
			fmt.Sprintf("file content does not match the declared %s type", format))
	}

	cfg, actualFormat, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.KindValidate, "validate",
			"the image appears to be corrupt and could not be decoded", err)
	}
	if actualFormat != "" {
		format = actualFormat
	}

	return &UploadedImage{
		Name:   name,
		Raw:    raw,
		MIME:   declaredMIME,
		Format: format,
		Size:   int64(len(raw)),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func (v *Validator) isTypeAllowed(mime string) bool {
	allowed := v.config.AllowedTypes
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	for _, a := range allowed {
		if strings.ToLower(a) == mime {
			return true
		}
	}
	return false
}

func (v *Validator) matchesSignature(raw []byte, format string) bool {
	signature, ok := imageSignatures[format]
	if !ok {
		return true
	}
	if len(raw) < len(signature) {
		return false
	}
	return bytes.Equal(signature, raw[:len(signature)])
}
