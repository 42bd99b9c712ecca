package seo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/nhgweb/seo/content"
)

const (
	maxImageWidth = 2000
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processImage decodes an image from src, resizes it down to maxImageWidth
// when wider, and encodes it as JPEG. The returned ImageRef carries the
// final pixel dimensions, which the social tag and structured-data
// builders rely on.
func processImage(src io.Reader, alt string) (content.ImageRef, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return content.ImageRef{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return content.ImageRef{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return content.ImageRef{
		Width:  w,
		Height: h,
		Alt:    alt,
		Mime:   "image/jpeg",
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// uniqueUploadName appends a counter while the candidate filename exists
// on disk.
func (a *App) uniqueUploadName(base string) string {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	candidate := base + ".jpg"
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter+1)
	}
}

// handleImageUpload stores an uploaded image under the static uploads
// directory and records it as an attachment, making it addressable as a
// featured, gallery or term image.
func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	ref, data, err := processImage(src, strings.TrimSpace(c.FormValue("alt")))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	filename := a.uniqueUploadName(slugifyFilename(file.Filename))

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	ref.URL = a.Config.URL + "/public/" + uploadsSubdir + "/" + filename
	id, err := a.Store.SaveAttachment(ref)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":     id,
		"url":    ref.URL,
		"width":  ref.Width,
		"height": ref.Height,
	})
}
