package uploads

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// thumbSize bounds the longer side of the image the hash is computed from.
const thumbSize = 64

// ComputeBlurHash decodes the image at path and returns its BlurHash with
// 4x3 components.
func ComputeBlurHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= thumbSize && h <= thumbSize {
		return img
	}

	if w >= h {
		h = max(1, h*thumbSize/w)
		w = thumbSize
	} else {
		w = max(1, w*thumbSize/h)
		h = thumbSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Placeholders returns BlurHashes for the photos that are stored images.
// Photos outside upload storage and non-image files are skipped. Results
// are memoized per file. Returns nil when nothing matched.
func (s *Storage) Placeholders(photos []string) map[string]string {
	var out map[string]string
	for _, photo := range photos {
		hash := s.placeholder(photo)
		if hash == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[photo] = hash
	}
	return out
}

func (s *Storage) placeholder(photo string) string {
	path, err := s.resolve(photo)
	if err != nil {
		return ""
	}
	name := filepath.Base(path)

	s.mu.RLock()
	hash, ok := s.placeholders[name]
	s.mu.RUnlock()
	if ok {
		return hash
	}

	if _, err := os.Stat(path); err != nil {
		return ""
	}

	hash, err = ComputeBlurHash(path)
	if err != nil {
		s.logger.Debug("no placeholder for upload", "name", name, "error", err)
		hash = ""
	}

	s.mu.Lock()
	s.placeholders[name] = hash
	s.mu.Unlock()

	return hash
}
