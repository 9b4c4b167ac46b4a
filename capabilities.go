package transcode

import "sync"

// Capabilities records which optional kinds the environment provides.
// Bytes and Text are always available. A value is resolved once and then
// only read.
type Capabilities struct {
	Blob bool
	Push bool
	Pull bool
}

var detectCapabilities = sync.OnceValue(func() Capabilities {
	// Blobs and both stream flavors are plain interfaces here, so every
	// Go process has them. Embedders that want to forbid a kind construct
	// the Engine with their own Capabilities value instead.
	return Capabilities{Blob: true, Push: true, Pull: true}
})

// DetectCapabilities returns the capability set of the running process.
func DetectCapabilities() Capabilities { return detectCapabilities() }

// Has reports whether kind k is available.
func (c Capabilities) Has(k Kind) bool {
	switch k {
	case KindBytes, KindText:
		return true
	case KindBlob:
		return c.Blob
	case KindPush:
		return c.Push
	case KindPull:
		return c.Pull
	}
	return false
}
