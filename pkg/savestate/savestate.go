// Package savestate serializes the orchestrator and its components into a
// single buffer, the way the teacher's internal/types.State/Stater pair
// does, and stamps the result with an xxhash digest so a truncated or
// foreign-version buffer is rejected instead of silently corrupting state
// on Load. Migrating a digest-mismatched save across emulator versions is
// explicitly out of scope (spec.md Non-goals); a version mismatch is fatal.
package savestate

import (
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash"
	"github.com/kestrelcore/goboy/internal/types"
)

// Version is bumped whenever the on-disk layout of a Stater changes.
const Version uint32 = 1

var ErrVersionMismatch = errors.New("savestate: version mismatch")
var ErrDigestMismatch = errors.New("savestate: digest mismatch (corrupt or truncated save)")

// Save serializes every Stater in components into a single framed buffer:
// [version:4][digest:8][payload].
func Save(components ...types.Stater) []byte {
	s := types.NewState()
	for _, c := range components {
		c.Save(s)
	}
	payload := s.Bytes()

	digest := xxhash.Sum64(payload)

	out := make([]byte, 4+8+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], Version)
	binary.LittleEndian.PutUint64(out[4:12], digest)
	copy(out[12:], payload)
	return out
}

// Load verifies the framing and digest of raw, then replays the payload
// into components in the same order they were passed to Save.
func Load(raw []byte, components ...types.Stater) error {
	if len(raw) < 12 {
		return ErrDigestMismatch
	}
	version := binary.LittleEndian.Uint32(raw[0:4])
	if version != Version {
		return ErrVersionMismatch
	}
	digest := binary.LittleEndian.Uint64(raw[4:12])
	payload := raw[12:]
	if xxhash.Sum64(payload) != digest {
		return ErrDigestMismatch
	}

	s := types.StateFromBytes(payload)
	for _, c := range components {
		c.Load(s)
	}
	return nil
}
