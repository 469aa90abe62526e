package progress

import (
	"sync"

	"github.com/otherjamesbrown/minute-cli/pkg/logging"
)

// Verbose reports progress as structured log lines, including debug detail.
type Verbose struct {
	mu    sync.Mutex
	log   logging.Logger
	stage string
}

// NewVerbose creates a verbose reporter logging through log.
func NewVerbose(log logging.Logger) *Verbose {
	if log == nil {
		log = logging.Nop()
	}
	return &Verbose{log: log}
}

func (r *Verbose) logger() logging.Logger {
	if r.stage != "" {
		return r.log.With(logging.F("stage", r.stage))
	}
	return r.log
}

func (r *Verbose) Start(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Info(msg)
}

func (r *Verbose) Update(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Info(msg)
}

func (r *Verbose) UpdateWithCount(msg string, current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Info(msg, logging.F("current", current), logging.F("total", total))
}

func (r *Verbose) Succeed(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Info(msg, logging.F("result", "ok"))
}

func (r *Verbose) Fail(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Error(msg, logging.F("result", "failed"))
}

func (r *Verbose) Debug(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Debug(msg)
}

func (r *Verbose) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger().Info(msg)
}

func (r *Verbose) SetStage(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = stage
	r.log.Debug("entering stage", logging.F("stage", stage))
}

func (r *Verbose) CurrentStage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}
