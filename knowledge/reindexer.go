package knowledge

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

// DocumentSource supplies the current set of documents to index.
type DocumentSource func() []string

// Reindexer rebuilds an Index on a cron schedule and swaps it in atomically.
// The one-time indexing at construction is the normal path; the scheduler is
// opt-in via Start for knowledge bases whose backing document changes.
type Reindexer struct {
	source   DocumentSource
	embedder Embedder
	opts     IndexOptions
	logger   *log.Logger

	scheduler *cron.Cron

	mu      sync.RWMutex
	current *Index
}

// NewReindexer builds the initial index synchronously kicking off its
// background embedding pass, and registers the rebuild job. schedule uses the
// standard cron format ("@every 10m", "0 3 * * *").
func NewReindexer(schedule string, source DocumentSource, embedder Embedder, opts IndexOptions) (*Reindexer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[REINDEX] ", log.LstdFlags)
	}

	r := &Reindexer{
		source:    source,
		embedder:  embedder,
		opts:      opts,
		logger:    logger,
		scheduler: cron.New(),
		current:   NewIndex(embedder, source(), opts),
	}

	if _, err := r.scheduler.AddFunc(schedule, r.rebuild); err != nil {
		return nil, fmt.Errorf("invalid reindex schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins scheduled rebuilding.
func (r *Reindexer) Start() {
	r.scheduler.Start()
}

// Stop halts scheduled rebuilding. The current index stays usable.
func (r *Reindexer) Stop() {
	r.scheduler.Stop()
}

// Current returns the most recently published index.
func (r *Reindexer) Current() *Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Reindexer) rebuild() {
	r.logger.Printf("Rebuilding knowledge index")
	next := NewIndex(r.embedder, r.source(), r.opts)

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
}
