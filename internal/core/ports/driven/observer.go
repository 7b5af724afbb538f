package driven

import "time"

// OperationObserver receives the outcome of each lifecycle operation.
type OperationObserver interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
}
