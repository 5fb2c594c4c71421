package server

// Server is the lifecycle contract of the gateway transport.
type Server interface {
	// RunServer serves requests until SIGINT, SIGTERM or SIGQUIT arrives and
	// then shuts down gracefully.
	RunServer()

	// Shutdown stops accepting connections and drains the open ones.
	Shutdown()
}
