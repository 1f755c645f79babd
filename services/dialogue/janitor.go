package dialogue

import (
	"context"
	"sync"
	"time"

	"hotelbot/utils"

	"go.uber.org/zap"
)

// DefaultJanitorInterval is how often idle conversations are swept.
const DefaultJanitorInterval = 5 * time.Minute

// Janitor evicts conversations from a MemoryBackend once they have been idle
// longer than the TTL. Redis-backed stores expire keys themselves.
type Janitor struct {
	backend  *MemoryBackend
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewJanitor(backend *MemoryBackend, ttl, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{
		backend:  backend,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the sweep loop. Calling Start on a running janitor is a no-op.
func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})
	j.running = true
	go j.run(runCtx, j.done)
}

// Stop cancels the loop and waits for it to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	cancel, done := j.cancel, j.done
	j.mu.Unlock()

	cancel()
	<-done
}

func (j *Janitor) run(ctx context.Context, done chan struct{}) {
	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Conversation janitor stopping")
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep performs one eviction pass and returns the number of states removed.
func (j *Janitor) Sweep() int {
	if j.ttl <= 0 {
		return 0
	}
	removed := j.backend.EvictIdle(j.now().Add(-j.ttl))
	remaining := j.backend.Len()
	utils.ConversationsTracked.Set(float64(remaining))
	if removed > 0 {
		j.logger.Info("Evicted idle conversations",
			zap.Int("removed", removed),
			zap.Int("remaining", remaining))
	}
	return removed
}
