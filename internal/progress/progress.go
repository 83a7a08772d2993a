// Package progress defines the consumer-visible progress vocabulary for an
// acquisition: the closed set of phase identifiers, the event type carried on
// an operation's stream, and the mapping that translates builder-internal
// identifiers into consumer-facing ones.
//
// The vocabulary translation is kept separate from the coordinator's control
// flow so both can be tested on their own.
package progress

import "strings"

// Phase identifies a stage of acquisition. The consumer-visible set is
// closed; anything outside it is a programming error.
type Phase string

const (
	// PhaseHead fires before any asynchronous work resolves, and completes
	// when the download inspects its first archive entry.
	PhaseHead         Phase = "head"
	PhaseHeadComplete Phase = "head:complete"
	PhaseHeadFail     Phase = "head:fail"

	// PhaseDownloadBinary events carry per-entry metadata for the prebuilt
	// binary download.
	PhaseDownloadBinary         Phase = "download-binary"
	PhaseDownloadBinaryComplete Phase = "download-binary:complete"
	PhaseDownloadBinaryFail     Phase = "download-binary:fail"

	// PhaseCheckBinary brackets the verification run of a downloaded binary.
	PhaseCheckBinary         Phase = "check-binary"
	PhaseCheckBinaryComplete Phase = "check-binary:complete"
	PhaseCheckBinaryFail     Phase = "check-binary:fail"

	// PhaseCheckStack carries the resolved toolchain path and version once
	// the build path is activated.
	PhaseCheckStack         Phase = "check-stack"
	PhaseCheckStackComplete Phase = "check-stack:complete"

	// PhaseDownloadSource events are the builder's internal source download,
	// re-tagged so consumers can tell them apart from the binary download.
	PhaseDownloadSource         Phase = "download-source"
	PhaseDownloadSourceComplete Phase = "download-source:complete"

	// PhaseSetup brackets toolchain setup; setup output lines use PhaseSetup
	// with the Line payload set.
	PhaseSetup         Phase = "setup"
	PhaseSetupComplete Phase = "setup:complete"

	// PhaseBuild events carry compiler output lines; PhaseBuildComplete is
	// the builder's terminal success event.
	PhaseBuild         Phase = "build"
	PhaseBuildComplete Phase = "build:complete"
)

// Builder-internal identifiers for the source download. These never reach a
// consumer; RewriteBuilderPhase substitutes them on the way out.
const (
	PhaseDownload         Phase = "download"
	PhaseDownloadComplete Phase = "download:complete"
)

// consumerPhases is the closed set of identifiers a consumer may observe.
var consumerPhases = map[Phase]struct{}{
	PhaseHead:                   {},
	PhaseHeadComplete:           {},
	PhaseHeadFail:               {},
	PhaseDownloadBinary:         {},
	PhaseDownloadBinaryComplete: {},
	PhaseDownloadBinaryFail:     {},
	PhaseCheckBinary:            {},
	PhaseCheckBinaryComplete:    {},
	PhaseCheckBinaryFail:        {},
	PhaseCheckStack:             {},
	PhaseCheckStackComplete:     {},
	PhaseDownloadSource:         {},
	PhaseDownloadSourceComplete: {},
	PhaseSetup:                  {},
	PhaseSetupComplete:          {},
	PhaseBuild:                  {},
	PhaseBuildComplete:          {},
}

// Valid reports whether p belongs to the consumer-visible phase set.
func (p Phase) Valid() bool {
	_, ok := consumerPhases[p]
	return ok
}

// String returns the identifier string.
func (p Phase) String() string {
	return string(p)
}

// Entry describes one archive entry inspected during a download.
type Entry struct {
	Path string // entry path inside the archive
	Size int64  // uncompressed size in bytes
}

// Event is a single progress notification on an acquisition stream.
// Exactly one payload field is set depending on Phase:
//   - Err for *:fail events
//   - Entry for download-binary and download-source events
//   - Line for setup and build output
//   - StackPath/StackVersion for check-stack
type Event struct {
	Phase        Phase
	Err          error
	Line         string
	Entry        *Entry
	StackPath    string
	StackVersion string
}

// RewriteBuilderPhase maps a builder-emitted identifier onto the consumer
// vocabulary. Identifiers containing the literal "download" marker refer to
// the builder's internal source download and are rewritten to the
// download-source family; everything else passes through unchanged.
func RewriteBuilderPhase(p Phase) Phase {
	s := string(p)
	if strings.Contains(s, "download") {
		return Phase(strings.Replace(s, "download", "download-source", 1))
	}
	return p
}
