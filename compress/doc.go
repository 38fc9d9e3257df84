// Package compress provides codecs for the opaque pre-serialised sensor-stream
// bytes pathway described by the envelope package.
//
// The envelope's wire format accepts opaque, already-wire-encoded bytes for a
// sensor stream batch and embeds them verbatim (see envelope.Body). A producer
// that buffers many batches before handing them to the envelope, or a backend
// bucket store that persists fragments between requests, may want to shrink
// that intermediate payload. This package supplies four interchangeable
// algorithms for that purpose:
//
//   - None:  no compression, zero overhead.
//   - Zstd:  best ratio, moderate speed; good for cold storage.
//   - S2:    balanced ratio and speed; good for hot-path ingestion.
//   - LZ4:   fastest decompression; good for read-heavy query paths.
//
// This is independent of, and unrelated to, the outer transport-level deflate
// wrapper a caller applies to the whole envelope before sending it over the
// wire — that wrapper is entirely outside this module's scope.
package compress
