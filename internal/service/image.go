package service

import (
	"bytes"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const maxImageDimension = 500

// preparedImage is an image normalized for upload.
type preparedImage struct {
	Name    string
	Content []byte
}

// prepareImage checks that file is a JPEG, PNG or GIF and shrinks it to fit a
// 500x500 box, keeping the aspect ratio.
func prepareImage(file *multipart.FileHeader, maxSize int64) (preparedImage, error) {
	content, err := readLimited(file, maxSize)
	if err != nil {
		return preparedImage{}, err
	}

	detected := mimetype.Detect(content)
	var format imaging.Format
	switch {
	case detected.Is("image/png"):
		format = imaging.PNG
	case detected.Is("image/jpeg"):
		format = imaging.JPEG
	case detected.Is("image/gif"):
		format = imaging.GIF
	default:
		return preparedImage{}, ErrInvalidImage
	}

	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return preparedImage{}, ErrInvalidImage
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return preparedImage{}, err
	}

	base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	if base == "" || base == "." {
		base = "image"
	}
	return preparedImage{Name: base + detected.Extension(), Content: buf.Bytes()}, nil
}
