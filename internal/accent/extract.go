// Package accent computes the panel's accent color from artwork.
package accent

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrNoPixels is returned when an image has no opaque pixels to sample.
var ErrNoPixels = errors.New("no opaque pixels")

// Options tunes the clustering.
type Options struct {
	// Clusters is the number of k-means clusters.
	Clusters int
	// Iterations bounds the k-means refinement passes.
	Iterations int
	// MaxSamples caps how many pixels are sampled.
	MaxSamples int
}

// DefaultOptions returns the stock clustering parameters.
func DefaultOptions() Options {
	return Options{Clusters: 4, Iterations: 8, MaxSamples: 4096}
}

type lab struct{ l, a, b float64 }

func (p lab) dist2(q lab) float64 {
	dl, da, db := p.l-q.l, p.a-q.a, p.b-q.b
	return dl*dl + da*da + db*db
}

// Dominant returns the centroid of the most populated color cluster of img.
// Clustering happens in CIE L*a*b* so the grouping follows perceived color.
func Dominant(img image.Image, opts Options) (colorful.Color, error) {
	if opts.Clusters <= 0 {
		opts.Clusters = 1
	}
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}
	samples := sample(img, opts.MaxSamples)
	if len(samples) == 0 {
		return colorful.Color{}, ErrNoPixels
	}

	k := opts.Clusters
	if k > len(samples) {
		k = len(samples)
	}
	centers := seed(samples, k)

	assign := make([]int, len(samples))
	counts := make([]int, k)
	for iter := 0; iter < opts.Iterations; iter++ {
		changed := false
		for i, s := range samples {
			best := 0
			for j := 1; j < k; j++ {
				if s.dist2(centers[j]) < s.dist2(centers[best]) {
					best = j
				}
			}
			if iter == 0 || assign[i] != best {
				changed = true
			}
			assign[i] = best
		}
		if !changed {
			break
		}

		sums := make([]lab, k)
		for j := range counts {
			counts[j] = 0
		}
		for i, s := range samples {
			c := assign[i]
			sums[c].l += s.l
			sums[c].a += s.a
			sums[c].b += s.b
			counts[c]++
		}
		for j := range centers {
			if counts[j] == 0 {
				continue
			}
			n := float64(counts[j])
			centers[j] = lab{sums[j].l / n, sums[j].a / n, sums[j].b / n}
		}
	}

	for j := range counts {
		counts[j] = 0
	}
	for _, c := range assign {
		counts[c]++
	}
	best := 0
	for j := 1; j < k; j++ {
		if counts[j] > counts[best] {
			best = j
		}
	}
	c := centers[best]
	return colorful.Lab(c.l, c.a, c.b).Clamped(), nil
}

// seed picks k starting centers by farthest-point traversal.
func seed(samples []lab, k int) []lab {
	centers := make([]lab, 0, k)
	centers = append(centers, samples[0])
	nearest := make([]float64, len(samples))
	for i, s := range samples {
		nearest[i] = s.dist2(samples[0])
	}
	for len(centers) < k {
		far := 0
		for i := range samples {
			if nearest[i] > nearest[far] {
				far = i
			}
		}
		c := samples[far]
		centers = append(centers, c)
		for i, s := range samples {
			if d := s.dist2(c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centers
}

func sample(img image.Image, max int) []lab {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 {
		return nil
	}
	stride := 1
	if max > 0 && total > max {
		stride = total / max
	}

	out := make([]lab, 0, total/stride+1)
	for i := 0; i < total; i += stride {
		x := bounds.Min.X + i%bounds.Dx()
		y := bounds.Min.Y + i/bounds.Dx()
		px := img.At(x, y)
		if _, _, _, a := px.RGBA(); a < 0x8000 {
			continue
		}
		c, ok := colorful.MakeColor(px)
		if !ok {
			continue
		}
		l, aa, b := c.Lab()
		out = append(out, lab{l, aa, b})
	}
	return out
}

// LoadFile decodes the image at path.
func LoadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork %s: %w", path, err)
	}
	return img, nil
}
