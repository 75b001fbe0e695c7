package services

import (
	"context"
	"log"
	"sync"
	"time"

	"alfredoptarigan/resume-analyzer/internal/repositories"
)

// CleanupWorker releases stored uploads: immediately on failed requests,
// after a grace delay on successful ones, and periodically for anything
// older than the configured max age. Deletion failures are only logged.
type CleanupWorker interface {
	Start(ctx context.Context)
	Stop()
	ReleaseNow(ctx context.Context, key string) error
	ReleaseAfter(key string, delay time.Duration)
	Pending() int
}

type CleanupOptions struct {
	Concurrency   int
	MaxAge        time.Duration
	SweepInterval time.Duration
}

type cleanupWorker struct {
	storage    StorageService
	uploadRepo repositories.UploadRepository
	opts       CleanupOptions

	jobQueue chan string
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	scheduled map[string]*time.Timer
}

func NewCleanupWorker(storage StorageService, uploadRepo repositories.UploadRepository, opts CleanupOptions) CleanupWorker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &cleanupWorker{
		storage:    storage,
		uploadRepo: uploadRepo,
		opts:       opts,
		jobQueue:   make(chan string, 100),
		stopChan:   make(chan struct{}),
		scheduled:  make(map[string]*time.Timer),
	}
}

// Start implements CleanupWorker.
func (w *cleanupWorker) Start(ctx context.Context) {
	log.Printf("🚀 Starting cleanup worker with %d concurrent workers\n", w.opts.Concurrency)

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processDeletions(ctx, i+1)
	}

	if w.opts.SweepInterval > 0 && w.opts.MaxAge > 0 {
		w.wg.Add(1)
		go w.sweepOldUploads(ctx)
	}

	log.Println("✅ Cleanup worker started successfully")
}

// Stop implements CleanupWorker. Scheduled deletions are executed before
// the workers exit.
func (w *cleanupWorker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping cleanup worker...")

		w.mu.Lock()
		pending := make([]string, 0, len(w.scheduled))
		for key, timer := range w.scheduled {
			if timer.Stop() {
				pending = append(pending, key)
			}
		}
		w.scheduled = make(map[string]*time.Timer)
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, key := range pending {
			w.release(ctx, key)
		}

		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Cleanup worker stopped")
	})
}

// ReleaseNow implements CleanupWorker.
func (w *cleanupWorker) ReleaseNow(ctx context.Context, key string) error {
	w.unschedule(key)
	return w.release(ctx, key)
}

// ReleaseAfter implements CleanupWorker.
func (w *cleanupWorker) ReleaseAfter(key string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.scheduled[key]; ok {
		existing.Stop()
	}
	w.scheduled[key] = time.AfterFunc(delay, func() {
		w.unschedule(key)
		w.enqueue(key)
	})
	log.Printf("⏳ Upload %s scheduled for deletion in %s\n", key, delay)
}

// Pending implements CleanupWorker.
func (w *cleanupWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.scheduled)
}

func (w *cleanupWorker) unschedule(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.scheduled[key]; ok {
		timer.Stop()
		delete(w.scheduled, key)
	}
}

// enqueue hands key to the workers, or deletes it inline once Stop has run
// since nothing drains the queue after that.
func (w *cleanupWorker) enqueue(key string) {
	select {
	case <-w.stopChan:
		w.releaseStopped(key)
		return
	default:
	}

	select {
	case w.jobQueue <- key:
	case <-w.stopChan:
		w.releaseStopped(key)
	}
}

func (w *cleanupWorker) releaseStopped(key string) {
	log.Printf("⚠️  Cleanup worker stopped, deleting %s inline\n", key)
	w.release(context.Background(), key)
}

func (w *cleanupWorker) release(ctx context.Context, key string) error {
	if err := w.storage.Delete(ctx, key); err != nil {
		log.Printf("❌ Failed to delete upload %s: %v\n", key, err)
		return err
	}
	if w.uploadRepo != nil {
		if err := w.uploadRepo.MarkDeleted(ctx, key); err != nil {
			log.Printf("⚠️  Upload %s deleted but registry not updated: %v\n", key, err)
		}
	}
	log.Printf("🗑️  Upload %s deleted\n", key)
	return nil
}

func (w *cleanupWorker) processDeletions(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.drainQueue(ctx)
			return
		case key := <-w.jobQueue:
			w.release(ctx, key)
		}
	}
}

func (w *cleanupWorker) drainQueue(ctx context.Context) {
	for {
		select {
		case key := <-w.jobQueue:
			w.release(ctx, key)
		default:
			return
		}
	}
}

func (w *cleanupWorker) sweepOldUploads(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.SweepInterval)
	defer ticker.Stop()

	log.Printf("🔄 Sweeping uploads older than %s every %s\n", w.opts.MaxAge, w.opts.SweepInterval)

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepNow(ctx)
		}
	}
}

// SweepNow removes uploads older than MaxAge and reports how many were removed.
func (w *cleanupWorker) SweepNow(ctx context.Context) int {
	cutoff := time.Now().Add(-w.opts.MaxAge)
	removed, err := w.storage.SweepOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("⚠️  Failed to sweep old uploads: %v\n", err)
	}
	if w.uploadRepo != nil {
		if _, err := w.uploadRepo.MarkDeletedBefore(ctx, cutoff); err != nil {
			log.Printf("⚠️  Failed to update upload registry after sweep: %v\n", err)
		}
	}
	if removed > 0 {
		log.Printf("🧹 Cleanup completed. Removed %d files older than %s\n", removed, w.opts.MaxAge)
	}
	return removed
}
