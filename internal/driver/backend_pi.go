//go:build pi

package driver

// DefaultBackend drives the real GPIO block.
const DefaultBackend = BackendMem
