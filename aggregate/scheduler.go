package aggregate

// Scheduler queues tasks for concurrent execution. An ants pool
// satisfies the interface. Tasks must eventually run exactly once;
// Submit returning an error means the task was not accepted and the
// caller runs it itself.
type Scheduler interface {
	Submit(task func()) error
}
