// Package transcode converts binary payloads between the shapes they take in
// a program: byte slices, lazily read blobs, encoded text, and push or pull
// streams.
//
// Every conversion works in bounded windows of Options.ChunkSize bytes, so a
// blob or stream is never held in memory twice. Values without a direct
// conversion edge pivot through []byte.
//
//	s, err := transcode.ToBase64(ctx, transcode.Text{Value: "ab"}, nil) // "YWI="
package transcode
