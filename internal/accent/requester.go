package accent

import (
	"image"
	"log/slog"
	"sync"
)

// Loader produces the image for one accent request.
type Loader func() (image.Image, error)

// Requester runs extractions in the background and hands each result to
// apply. Every request bumps a generation; a result is applied only when
// its generation is still the newest, so a slow superseded request can
// never overwrite a later color.
type Requester struct {
	mu     sync.Mutex
	gen    uint64
	apply  func(hex string)
	opts   Options
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRequester creates a Requester that delivers colors to apply.
func NewRequester(apply func(hex string), opts Options, logger *slog.Logger) *Requester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Requester{apply: apply, opts: opts, logger: logger}
}

// Request starts extracting the dominant color of the image load returns.
// It returns the generation assigned to the request.
func (r *Requester) Request(load Loader) uint64 {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(gen, load)
	}()
	return gen
}

// SetOptions changes the clustering options for later requests.
func (r *Requester) SetOptions(opts Options) {
	r.mu.Lock()
	r.opts = opts
	r.mu.Unlock()
}

// Generation returns the newest generation handed out.
func (r *Requester) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Wait blocks until all started requests have finished.
func (r *Requester) Wait() {
	r.wg.Wait()
}

func (r *Requester) run(gen uint64, load Loader) {
	img, err := load()
	if err != nil {
		r.logger.Warn("accent extraction failed", "generation", gen, "error", err)
		return
	}
	r.mu.Lock()
	opts := r.opts
	r.mu.Unlock()
	c, err := Dominant(img, opts)
	if err != nil {
		r.logger.Warn("accent extraction failed", "generation", gen, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		r.logger.Debug("dropping superseded accent", "generation", gen, "current", r.gen)
		return
	}
	r.apply(c.Hex())
}
