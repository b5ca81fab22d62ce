package interfaces

import "io"

// Repository aggregates the structured-store repositories. The session
// buffer is deliberately not part of it: session data is ephemeral and
// always lives in process memory regardless of the durable backend.
type Repository interface {
	Fragment() FragmentRepository
	Profile() ProfileRepository
	InteractionLog() InteractionLogRepository

	io.Closer
}
