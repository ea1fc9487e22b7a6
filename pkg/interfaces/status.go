package interfaces

// StatusSink receives progress updates for the surrounding job
type StatusSink interface {
	// Write records a human-readable message with a completion percentage (0-100)
	Write(message string, percent int) error
}
