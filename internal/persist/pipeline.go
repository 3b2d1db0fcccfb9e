// Package persist serializes label mutations through a single background
// writer so sidecar files on disk never see concurrent or partial updates.
//
// Mutations are queued in arrival order and applied to the in-memory store
// immediately; the dirty items they touch are only written back to disk when a
// flush command passes through the same queue. Because one goroutine owns both
// the apply and the write, a flush observes every mutation enqueued before it.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"mosaic/internal/config"
	"mosaic/internal/fileutil"
	"mosaic/internal/labels"
	"mosaic/internal/logging"
	"mosaic/internal/metrics"
	"mosaic/internal/sidecar"
)

// DefaultQueueSize bounds the mutation queue when the caller does not choose
// a capacity. Senders block once the queue is full.
const DefaultQueueSize = 1024

// ErrStopped is returned by Set and Flush after the pipeline has shut down.
var ErrStopped = errors.New("persist: pipeline stopped")

type commandKind int

const (
	kindSet commandKind = iota
	kindFlush
)

type command struct {
	kind  commandKind
	item  string
	label string
	value labels.Value
	done  chan error
}

// Pipeline owns the ordered mutation queue and the background persister that
// drains it. All writes to the label store and to sidecar files flow through
// here; readers use the store directly.
type Pipeline struct {
	store  *labels.Store
	root   string
	logger *slog.Logger

	cmds chan command

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	quit    chan struct{}
	wg      sync.WaitGroup

	// dirty is touched only by the run goroutine.
	dirty map[string]struct{}
}

// New creates a pipeline writing sidecar files under the config's media root.
func New(cfg *config.Config, store *labels.Store, logger *slog.Logger) *Pipeline {
	queueSize := cfg.Pipeline.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Pipeline{
		store:  store,
		root:   cfg.Paths.MediaDir,
		logger: logging.NewComponentLogger(logger, "persister"),
		cmds:   make(chan command, queueSize),
		dirty:  make(map[string]struct{}),
	}
}

// Start launches the background persister.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("persist: pipeline already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.quit = make(chan struct{})
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(runCtx)
	return nil
}

// Stop drains queued mutations, performs a final flush, and waits for the
// persister to exit. Senders blocked on a full queue are released with
// ErrStopped.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	quit := p.quit
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	close(quit)
	cancel()
	p.wg.Wait()
}

// Set queues a tri-state assignment for item/label. The store is updated and
// the item marked dirty once the background persister dequeues the command;
// no file is written until the next flush.
func (p *Pipeline) Set(item, label string, value labels.Value) error {
	if err := p.enqueue(command{kind: kindSet, item: item, label: label, value: value}); err != nil {
		return err
	}
	metrics.RecordMutation()
	return nil
}

// Flush queues a flush command and waits until the persister has written
// every item dirtied by mutations enqueued before it.
func (p *Pipeline) Flush(ctx context.Context) error {
	done := make(chan error, 1)
	if err := p.enqueue(command{kind: kindFlush, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) enqueue(cmd command) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrStopped
	}
	quit := p.quit
	p.mu.Unlock()

	select {
	case p.cmds <- cmd:
		return nil
	case <-quit:
		return ErrStopped
	}
}

func (p *Pipeline) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case cmd := <-p.cmds:
			p.handle(cmd)
		case <-ctx.Done():
			p.drain()
			return
		}
	}
}

// drain consumes every command still queued at shutdown, then writes whatever
// is left dirty so no acknowledged mutation is lost.
func (p *Pipeline) drain() {
	for {
		select {
		case cmd := <-p.cmds:
			p.handle(cmd)
		default:
			if err := p.flushDirty(); err != nil {
				p.logger.Error("final flush failed", logging.Error(err))
			}
			return
		}
	}
}

func (p *Pipeline) handle(cmd command) {
	switch cmd.kind {
	case kindSet:
		p.applySet(cmd)
	case kindFlush:
		err := p.flushDirty()
		if cmd.done != nil {
			cmd.done <- err
		}
	}
}

func (p *Pipeline) applySet(cmd command) {
	label, err := p.store.RegisterLabel(cmd.label)
	if err != nil {
		p.logger.Warn("dropping mutation for invalid label",
			logging.String(logging.FieldLabel, cmd.label),
			logging.Error(err))
		return
	}
	p.store.RegisterItem(cmd.item)
	if err := p.store.SetValue(cmd.item, label, cmd.value); err != nil {
		p.logger.Warn("dropping mutation",
			logging.String(logging.FieldItem, cmd.item),
			logging.String(logging.FieldLabel, label),
			logging.Error(err))
		return
	}
	p.dirty[cmd.item] = struct{}{}
	metrics.SetDirtyItems(len(p.dirty))
}

func (p *Pipeline) flushDirty() error {
	if len(p.dirty) == 0 {
		return nil
	}
	start := time.Now()
	total := len(p.dirty)
	var errs []error
	for item := range p.dirty {
		if err := p.writeRecord(item); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item, err))
			p.logger.Error("failed to persist record",
				logging.String(logging.FieldItem, item),
				logging.Error(err))
			continue
		}
		delete(p.dirty, item)
	}
	metrics.SetDirtyItems(len(p.dirty))
	if len(errs) > 0 {
		metrics.ObserveFlush("error", time.Since(start).Seconds())
		return errors.Join(errs...)
	}
	metrics.ObserveFlush("ok", time.Since(start).Seconds())
	p.logger.Debug("flushed records", logging.Int(logging.FieldCount, total))
	return nil
}

// writeRecord encodes the item's current record and replaces its sidecar
// file atomically. Items with no assignments still get an empty file so a
// later load does not resurrect stale values from a previous write.
func (p *Pipeline) writeRecord(item string) error {
	rec, err := p.store.Record(item)
	if err != nil {
		return err
	}
	path := sidecar.PathFor(filepath.Join(p.root, filepath.FromSlash(item)))
	return fileutil.WriteAtomic(path, []byte(sidecar.Encode(rec)), 0o644)
}
