package filesystem

// Observer records filesystem retry metrics. The implementation lives in the
// metrics package so that filesystem does not import it.
type Observer interface {
	// retryOp is the operation: "stat", "open", "readdir", "write".
	// volume is the resolved label (e.g., "source", "min", "mid", "catalog").
	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

type nopObserver struct{}

func (nopObserver) ObserveRetryAttempt(string, string)           {}
func (nopObserver) ObserveRetrySuccess(string, string)           {}
func (nopObserver) ObserveRetryFailure(string, string)           {}
func (nopObserver) ObserveRetryDuration(string, string, float64) {}
func (nopObserver) ObserveStaleError(string, string)             {}

// defaultObserver is the package-level observer set at startup.
var defaultObserver Observer = nopObserver{}

// SetObserver sets the package-level metrics observer.
// Passing nil restores the no-op observer.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
