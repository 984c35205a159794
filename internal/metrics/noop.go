package metrics

import "time"

// NoopRecorder discards all metric events.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncAuthCacheHit()                     {}
func (n *NoopRecorder) IncAuthCacheMiss()                    {}
func (n *NoopRecorder) IncTokenIssued()                      {}
func (n *NoopRecorder) IncRecipeCreated()                    {}
func (n *NoopRecorder) IncRecipeUpdated()                    {}
func (n *NoopRecorder) IncRecipeDeleted()                    {}
func (n *NoopRecorder) ObserveImageUpload(_ time.Duration)   {}
