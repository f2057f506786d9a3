package report

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	apperrors "roadfix/internal/errors"
)

// Photo is an image attached to a report.
type Photo struct {
	Name string
	Data []byte
}

// PhotoOptions bounds what is uploaded.
type PhotoOptions struct {
	MaxBytes     int // upload limit after preparation
	MaxDimension int // longest edge in pixels
	JPEGQuality  int
}

// LoadPhoto reads an image file from disk.
//
// Files larger than four times the upload limit are refused without
// reading them; anything smaller may still shrink enough after
// re-encoding.
func LoadPhoto(path string, opts PhotoOptions) (*Photo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewValidationError("photo", fmt.Sprintf("Cannot open photo: %v", err))
	}
	if info.IsDir() {
		return nil, apperrors.NewValidationError("photo", "Photo path is a directory")
	}
	if opts.MaxBytes > 0 && info.Size() > int64(opts.MaxBytes)*4 {
		return nil, tooLarge(opts.MaxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return &Photo{Name: filepath.Base(path), Data: data}, nil
}

// Prepare checks that p is a decodable image and shrinks it for upload.
//
// Flow:
//  1. Decode (JPEG, PNG, GIF, TIFF, BMP), honoring EXIF orientation
//  2. Keep the original bytes if within both limits
//  3. Otherwise downscale to MaxDimension and re-encode as JPEG
//  4. Reject if still above MaxBytes
//
// Returns the upload-ready photo with a unique file name.
func Prepare(p *Photo, opts PhotoOptions, now time.Time) (*Photo, error) {
	if p == nil || len(p.Data) == 0 {
		return nil, apperrors.NewValidationError("photo", "Please upload a photo of the damage")
	}

	img, err := imaging.Decode(bytes.NewReader(p.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewValidationError("photo", "Photo must be a JPEG, PNG or GIF image")
	}

	bounds := img.Bounds()
	oversized := opts.MaxDimension > 0 && (bounds.Dx() > opts.MaxDimension || bounds.Dy() > opts.MaxDimension)
	heavy := opts.MaxBytes > 0 && len(p.Data) > opts.MaxBytes

	if !oversized && !heavy {
		return &Photo{Name: UploadName(p.Name, now), Data: p.Data}, nil
	}

	if oversized {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}
	data, err := encodeJPEG(img, opts.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("re-encode photo: %w", err)
	}
	if opts.MaxBytes > 0 && len(data) > opts.MaxBytes {
		return nil, tooLarge(opts.MaxBytes)
	}

	name := strings.TrimSuffix(p.Name, filepath.Ext(p.Name)) + ".jpg"
	return &Photo{Name: UploadName(name, now), Data: data}, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tooLarge(maxBytes int) error {
	if maxBytes < 1024*1024 {
		return apperrors.NewValidationError("photo", fmt.Sprintf("File too large (max %dKB)", maxBytes/1024))
	}
	return apperrors.NewValidationError("photo", fmt.Sprintf("File too large (max %dMB)", maxBytes/(1024*1024)))
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UploadName builds "<date>-<uuid>-<sanitized name>" so uploads from
// different devices never collide on the server.
func UploadName(original string, now time.Time) string {
	base := filepath.Base(strings.TrimSpace(original))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "photo.jpg"
	}
	return fmt.Sprintf("%s-%s-%s", now.Format("20060102"), uuid.NewString(), base)
}
