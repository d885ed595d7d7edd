//go:build !pi

package driver

// DefaultBackend simulates the GPIO block, for development away from the Pi.
const DefaultBackend = BackendSim
