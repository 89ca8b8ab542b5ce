package imageprep

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Rect is a crop rectangle in displayed (orientation-corrected) pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Operation describes one transform. Zero fields are skipped; the result is
// always re-encoded as JPEG at Quality (0..1].
type Operation struct {
	Crop     *Rect
	MaxWidth int
	Quality  float64
}

// Manipulator applies an Operation to the image at src and writes the result
// to a new file, returning its path. The source is never modified.
type Manipulator interface {
	Manipulate(ctx context.Context, src string, op Operation) (string, error)
}

// JPEGManipulator is the default Manipulator. Derived files are written into
// Dir (os.TempDir() when empty).
type JPEGManipulator struct {
	Dir string
}

func (m *JPEGManipulator) Manipulate(ctx context.Context, src string, op Operation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := decodeFile(src)
	if err != nil {
		return "", err
	}

	if op.Crop != nil {
		img, err = crop(img, *op.Crop)
		if err != nil {
			return "", err
		}
	}

	if op.MaxWidth > 0 {
		img = fitWidth(img, op.MaxWidth)
	}

	dir := m.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	out := filepath.Join(dir, "medclarify-"+uuid.NewString()+".jpg")

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", out, err)
	}

	if err := jpeg.Encode(f, flatten(img), &jpeg.Options{Quality: jpegQuality(op.Quality)}); err != nil {
		f.Close()
		os.Remove(out)
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}

	return out, nil
}

// decodeFile returns the image upright: an EXIF orientation tag is applied
// here so crop rectangles and width limits refer to displayed pixels.
func decodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func crop(img image.Image, r Rect) (image.Image, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid crop size %dx%d", r.Width, r.Height)
	}

	b := img.Bounds()
	area := r.bounds().Add(b.Min).Intersect(b)
	if area.Empty() {
		return nil, fmt.Errorf("crop %+v lies outside image bounds %v", r, b.Size())
	}

	dst := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.Draw(dst, dst.Bounds(), img, area.Min, draw.Src)
	return dst, nil
}

// fitWidth scales img down so it is at most width pixels wide, keeping the
// aspect ratio. Narrower images are returned untouched.
func fitWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}

	height := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// flatten composites img over white, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	switch {
	case n < 1:
		return 1
	case n > 100:
		return 100
	default:
		return n
	}
}
