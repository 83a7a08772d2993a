package main

import (
	"fmt"

	"github.com/MercerHollowell/getpurs/internal/progress"
)

// renderEvent maps a progress event to a console line. An empty return
// means the event is not worth a line of its own.
func renderEvent(ev progress.Event) string {
	switch ev.Phase {
	case progress.PhaseHead:
		return "Looking for a prebuilt purs binary..."
	case progress.PhaseHeadComplete:
		return "Release found"
	case progress.PhaseHeadFail:
		return fmt.Sprintf("No prebuilt binary for this platform (%v); building from source", ev.Err)

	case progress.PhaseDownloadBinary:
		if ev.Entry != nil {
			return fmt.Sprintf("  %s (%d bytes)", ev.Entry.Path, ev.Entry.Size)
		}
		return ""
	case progress.PhaseDownloadBinaryComplete:
		return "Binary downloaded"
	case progress.PhaseDownloadBinaryFail:
		return fmt.Sprintf("Download failed (%v); building from source", ev.Err)

	case progress.PhaseCheckBinary:
		return "Verifying the downloaded binary..."
	case progress.PhaseCheckBinaryComplete:
		return "Binary works"
	case progress.PhaseCheckBinaryFail:
		return fmt.Sprintf("Downloaded binary does not run (%v); building from source", ev.Err)

	case progress.PhaseCheckStack:
		return fmt.Sprintf("Using stack %s (%s)", ev.StackVersion, ev.StackPath)

	case progress.PhaseDownloadSource:
		return ""
	case progress.PhaseDownloadSourceComplete:
		return "Compiler source downloaded"

	case progress.PhaseSetup:
		if ev.Line != "" {
			return "  " + ev.Line
		}
		return "Setting up the build toolchain (this can take a while)..."
	case progress.PhaseSetupComplete:
		return "Toolchain ready"

	case progress.PhaseBuild:
		if ev.Line != "" {
			return "  " + ev.Line
		}
		return "Building purs from source..."
	case progress.PhaseBuildComplete:
		return "Build complete"
	}
	return ""
}
