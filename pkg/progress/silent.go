package progress

import "sync"

// Silent discards all progress output. Stage tracking still works so
// error reporting can name the failing stage.
type Silent struct {
	mu    sync.Mutex
	stage string
}

// NewSilent creates a silent reporter.
func NewSilent() *Silent {
	return &Silent{}
}

func (r *Silent) Start(string)                  {}
func (r *Silent) Update(string)                 {}
func (r *Silent) UpdateWithCount(string, int, int) {}
func (r *Silent) Succeed(string)                {}
func (r *Silent) Fail(string)                   {}
func (r *Silent) Debug(string)                  {}
func (r *Silent) Info(string)                   {}

func (r *Silent) SetStage(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = stage
}

func (r *Silent) CurrentStage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}
