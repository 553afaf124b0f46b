package core

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"soporte.ai/dashboard/internal/store"
)

var (
	ErrNoFileStaged   = errors.New("no file staged for upload")
	ErrUploadInFlight = errors.New("an upload is already in flight")
)

type UploadOutcome int

const (
	UploadIdle UploadOutcome = iota
	UploadInFlight
	UploadSucceeded
	UploadFailed
)

func (o UploadOutcome) String() string {
	switch o {
	case UploadIdle:
		return "idle"
	case UploadInFlight:
		return "in_flight"
	case UploadSucceeded:
		return "succeeded"
	case UploadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Uploader delivers one document to the ingestion endpoint.
type Uploader interface {
	Upload(ctx context.Context, filename string, content []byte) error
}

// UploadSnapshot is a point-in-time copy of the controller state.
type UploadSnapshot struct {
	File    *store.StagedFile
	Outcome UploadOutcome
}

type UploadOption func(*UploadController)

func WithUploadLogger(logger *zap.Logger) UploadOption {
	return func(c *UploadController) {
		c.logger = logger
	}
}

// WithUploadObserver registers fn to receive a snapshot after every state
// change. fn runs on the goroutine that caused the change.
func WithUploadObserver(fn func(UploadSnapshot)) UploadOption {
	return func(c *UploadController) {
		c.observer = fn
	}
}

// UploadController stages a single document and submits it at most once at
// a time.
type UploadController struct {
	uploader Uploader
	logger   *zap.Logger
	observer func(UploadSnapshot)

	mu      sync.Mutex
	staged  *store.StagedFile
	stageID uint64 // Bumped on every SelectFile so a late result can tell the file was replaced
	outcome UploadOutcome
}

func NewUploadController(uploader Uploader, opts ...UploadOption) *UploadController {
	c := &UploadController{
		uploader: uploader,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectFile replaces the staged file and clears any previous result. The
// file is not validated here; restricting type and size is the caller's job.
// While an upload is in flight the outcome stays InFlight until it resolves.
func (c *UploadController) SelectFile(file store.StagedFile) {
	c.mu.Lock()
	staged := file.Clone()
	c.staged = &staged
	c.stageID++
	if c.outcome != UploadInFlight {
		c.outcome = UploadIdle
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("File staged", zap.String("file", file.Name), zap.Int("bytes", file.Size()))
	c.notify(snap)
}

// Submit uploads the staged file. It returns ErrNoFileStaged or
// ErrUploadInFlight without touching the network when the guard fails;
// otherwise it blocks until the request resolves and returns the outcome.
// Transport and status failures are reported through the outcome, not the
// error.
func (c *UploadController) Submit(ctx context.Context) (UploadOutcome, error) {
	c.mu.Lock()
	if c.outcome == UploadInFlight {
		c.mu.Unlock()
		return UploadInFlight, ErrUploadInFlight
	}
	if c.staged == nil {
		outcome := c.outcome
		c.mu.Unlock()
		return outcome, ErrNoFileStaged
	}
	file := c.staged.Clone()
	submittedID := c.stageID
	c.outcome = UploadInFlight
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)

	err := c.uploader.Upload(ctx, file.Name, file.Content)

	c.mu.Lock()
	if err != nil {
		c.outcome = UploadFailed
	} else {
		c.outcome = UploadSucceeded
		if c.stageID == submittedID {
			c.staged = nil
		}
	}
	outcome := c.outcome
	snap = c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Upload failed", zap.String("file", file.Name), zap.Error(err))
	} else {
		c.logger.Info("Upload succeeded", zap.String("file", file.Name), zap.Int("bytes", file.Size()))
	}
	c.notify(snap)
	return outcome, nil
}

func (c *UploadController) Snapshot() UploadSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *UploadController) snapshotLocked() UploadSnapshot {
	snap := UploadSnapshot{Outcome: c.outcome}
	if c.staged != nil {
		f := c.staged.Clone()
		snap.File = &f
	}
	return snap
}

func (c *UploadController) notify(snap UploadSnapshot) {
	if c.observer != nil {
		c.observer(snap)
	}
}
