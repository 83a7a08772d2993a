// Package acquire orchestrates obtaining the PureScript compiler binary.
// The fast path downloads a prebuilt release binary; when that proves
// unusable on the native platform, the slow path builds the compiler from
// source with the Haskell stack toolchain. The toolchain probe runs
// concurrently with the download so the fallback decision never waits on a
// probe that was going to be needed anyway.
//
// All progress from both subsystems is multiplexed into a single ordered
// event stream, and every operation terminates exactly once.
package acquire

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/MercerHollowell/getpurs/internal/build"
	"github.com/MercerHollowell/getpurs/internal/download"
	"github.com/MercerHollowell/getpurs/internal/fsx"
	"github.com/MercerHollowell/getpurs/internal/platform"
	"github.com/MercerHollowell/getpurs/internal/progress"
	"github.com/MercerHollowell/getpurs/internal/toolchain"
)

// Deps are the coordinator's collaborators. Tests substitute fakes; real
// callers use Start, which wires the production implementations.
type Deps struct {
	// Fetch downloads the prebuilt binary into the destination directory.
	Fetch func(ctx context.Context, destDir string, opts download.Options) (string, error)
	// Build compiles the compiler from source into the destination directory.
	Build func(ctx context.Context, destDir string, opts build.Options, emit func(progress.Event) bool) (string, error)
	// Probe locates the build toolchain and resolves its version.
	Probe func(ctx context.Context, opts toolchain.Options) (*toolchain.Info, error)
	// Prepare validates that the final binary path is writable.
	Prepare func(path string) error
	// Verify checks that a downloaded binary runs on this host.
	Verify func(ctx context.Context, path string, limits Limits) error
}

// DefaultDeps returns the production collaborators.
func DefaultDeps() Deps {
	client := download.NewClient()
	builder := build.New(client)
	return Deps{
		Fetch:   client.FetchBinary,
		Build:   builder.Build,
		Probe:   toolchain.Probe,
		Prepare: fsx.PrepareWrite,
		Verify:  VerifyBinary,
	}
}

// Start validates the request and launches an acquisition. It returns
// synchronously; progress arrives on the operation's event stream, and the
// head event is already buffered when Start returns. A malformed request
// fails with an *ArgumentError before anything is spawned.
func Start(ctx context.Context, req Request) (*Operation, error) {
	return StartWith(ctx, req, DefaultDeps())
}

// StartWith is Start with explicit collaborators.
func StartWith(ctx context.Context, req Request, deps Deps) (*Operation, error) {
	res, err := req.resolve()
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithCancel(ctx)
	op := &Operation{
		id:     uuid.NewString(),
		events: make(chan progress.Event, 1),
		done:   make(chan struct{}),
		ctx:    opCtx,
		cancel: cancel,
		log:    res.log,
	}

	// The buffer holds exactly the head event, so it is observable even by
	// a consumer that cancels immediately after Start.
	op.events <- progress.Event{Phase: progress.PhaseHead}

	res.log.Info("acquisition started",
		"op", op.id,
		"dest", res.dest,
		"platform", res.platform,
		"version", res.version,
		"native", res.native,
	)

	go op.run(res, deps)
	return op, nil
}

// fetchMsg carries download-goroutine progress into the event loop. Exactly
// one field group is set per message.
type fetchMsg struct {
	head  bool            // the release asset was confirmed to exist
	entry *progress.Entry // one archive entry is being streamed

	done    bool // terminal: fetch finished
	path    string
	err     error
	prepErr bool // err came from the destination check, not the download
}

type stackMsg struct {
	info *toolchain.Info
	err  error
}

// run is the operation's event loop. It is the only goroutine that touches
// the decision state, so the fallback barrier needs no locking.
func (o *Operation) run(req *resolved, deps Deps) {
	defer func() {
		// Reap any child still in flight, then release the consumer.
		o.cancel()
		close(o.events)
		close(o.done)
	}()

	fetchCh := make(chan fetchMsg)
	stackCh := make(chan stackMsg, 1)

	go o.probeStack(req, deps, stackCh)
	go o.fetchBinary(req, deps, fetchCh)

	var (
		stack    stackMsg
		finished bool
	)

	finish := func(path string, err error) {
		if finished {
			return
		}
		finished = true
		o.path, o.err = path, err
		if err != nil {
			o.log.Error("acquisition failed", "op", o.id, "error", err)
		} else {
			o.log.Info("acquisition succeeded", "op", o.id, "path", path)
		}
	}

	// The fallback decision waits for two arrivals: the fast path resolving
	// to a non-fatal failure, and the toolchain probe completing. Whichever
	// lands second triggers the decision.
	fallback := newBarrier(2, func() {
		if finished {
			return
		}
		if stack.err != nil {
			finish("", &PhaseError{Phase: progress.PhaseCheckStack, Err: stack.err})
			return
		}
		o.log.Info("falling back to source build",
			"op", o.id, "stack", stack.info.Path, "stackVersion", stack.info.Version)
		if !o.emit(progress.Event{
			Phase:        progress.PhaseCheckStack,
			StackPath:    stack.info.Path,
			StackVersion: stack.info.Version,
		}) {
			finish("", o.ctx.Err())
			return
		}
		if !o.emit(progress.Event{Phase: progress.PhaseCheckStackComplete}) {
			finish("", o.ctx.Err())
			return
		}
		path, err := o.buildFromSource(req, deps, stack.info)
		finish(path, err)
	})

	for !finished {
		select {
		case <-o.ctx.Done():
			finish("", o.ctx.Err())

		case st := <-stackCh:
			stack = st
			if st.err != nil {
				o.log.Debug("toolchain probe failed", "op", o.id, "error", st.err)
			} else {
				o.log.Debug("toolchain probe succeeded",
					"op", o.id, "stack", st.info.Path, "stackVersion", st.info.Version)
			}
			fallback.arrive()

		case m := <-fetchCh:
			switch {
			case m.head:
				if !o.emit(progress.Event{Phase: progress.PhaseHeadComplete}) {
					finish("", o.ctx.Err())
				}
			case m.entry != nil:
				if !o.emit(progress.Event{Phase: progress.PhaseDownloadBinary, Entry: m.entry}) {
					finish("", o.ctx.Err())
				}
			case m.done:
				o.resolveFetch(req, deps, m, fallback, finish)
			}
		}
	}
}

// probeStack runs the toolchain version probe and reports the result.
func (o *Operation) probeStack(req *resolved, deps Deps, out chan<- stackMsg) {
	info, err := deps.Probe(o.ctx, toolchain.Options{
		Timeout:   req.limits.Timeout,
		MaxOutput: req.limits.MaxOutput,
	})
	select {
	case out <- stackMsg{info: info, err: err}:
	case <-o.ctx.Done():
	}
}

// fetchBinary runs the fast path and streams its milestones into the loop.
func (o *Operation) fetchBinary(req *resolved, deps Deps, out chan<- fetchMsg) {
	send := func(m fetchMsg) bool {
		select {
		case out <- m:
			return true
		case <-o.ctx.Done():
			return false
		}
	}

	if err := deps.Prepare(filepath.Join(req.dest, req.fetchName)); err != nil {
		send(fetchMsg{done: true, err: err, prepErr: true})
		return
	}

	headSent := false
	path, err := deps.Fetch(o.ctx, req.dest, download.Options{
		Platform:    req.platform,
		Arch:        req.arch,
		Version:     req.version,
		BaseURL:     req.baseURL,
		TargetName:  req.fetchName,
		Keyring:     req.keyring,
		ChecksumURL: req.checksumURL,
		Filter: func(p string, e download.Entry) bool {
			// The first entry proves the asset exists: the head milestone.
			if !headSent {
				headSent = true
				if !send(fetchMsg{head: true}) {
					return false
				}
			}
			send(fetchMsg{entry: &progress.Entry{Path: p, Size: e.Size}})
			return true
		},
	})
	send(fetchMsg{done: true, path: path, err: err})
}

// resolveFetch classifies the fast path's terminal result: success (after
// verification on the native platform), fatal failure, or fallback trigger.
func (o *Operation) resolveFetch(req *resolved, deps Deps, m fetchMsg, fallback *barrier, finish func(string, error)) {
	if m.err == nil {
		if !o.emit(progress.Event{Phase: progress.PhaseDownloadBinaryComplete}) {
			finish("", o.ctx.Err())
			return
		}
		if !req.native {
			// A cross-platform binary cannot run here; install it as-is.
			finish(m.path, nil)
			return
		}
		if !o.emit(progress.Event{Phase: progress.PhaseCheckBinary}) {
			finish("", o.ctx.Err())
			return
		}
		if verr := deps.Verify(o.ctx, m.path, req.limits); verr != nil {
			if o.ctx.Err() != nil {
				finish("", o.ctx.Err())
				return
			}
			o.log.Warn("downloaded binary failed verification", "op", o.id, "error", verr)
			if !o.emit(progress.Event{Phase: progress.PhaseCheckBinaryFail, Err: verr}) {
				finish("", o.ctx.Err())
				return
			}
			fallback.arrive()
			return
		}
		if !o.emit(progress.Event{Phase: progress.PhaseCheckBinaryComplete}) {
			finish("", o.ctx.Err())
			return
		}
		finish(m.path, nil)
		return
	}

	if o.ctx.Err() != nil {
		finish("", o.ctx.Err())
		return
	}

	// A missing release asset (or an unusable destination) means the fetch
	// attempt never got under way: that is a head failure. Anything else is a
	// download or extraction problem. Native requests downgrade both to
	// fallback triggers; cross-platform requests terminate with a
	// download-binary error because no build can replace a foreign binary.
	tag := progress.PhaseDownloadBinary
	failEvent := progress.PhaseDownloadBinaryFail
	if m.prepErr || errors.Is(m.err, download.ErrUnsupportedPlatform) {
		tag = progress.PhaseHead
		failEvent = progress.PhaseHeadFail
	}

	if !req.native {
		finish("", &PhaseError{Phase: progress.PhaseDownloadBinary, Err: m.err})
		return
	}
	if m.prepErr {
		finish("", &PhaseError{Phase: tag, Err: m.err})
		return
	}

	o.log.Warn("prebuilt binary unavailable", "op", o.id, "phase", tag, "error", m.err)
	if !o.emit(progress.Event{Phase: failEvent, Err: m.err}) {
		finish("", o.ctx.Err())
		return
	}
	fallback.arrive()
}

// buildFromSource runs the slow path. Builder phases are rewritten into the
// consumer's namespace, and the produced binary is renamed to its final name
// before the terminal build:complete event is forwarded, so a consumer that
// reacts to it finds the file already in place.
func (o *Operation) buildFromSource(req *resolved, deps Deps, info *toolchain.Info) (string, error) {
	finalPath := filepath.Join(req.dest, req.buildName)
	produced := filepath.Join(req.dest, platform.BinaryName(platform.Native()))

	var renameErr error
	emit := func(ev progress.Event) bool {
		ev.Phase = progress.RewriteBuilderPhase(ev.Phase)
		if ev.Phase == progress.PhaseBuildComplete && produced != finalPath {
			if err := fsx.MoveFile(produced, finalPath); err != nil {
				renameErr = err
				return false
			}
		}
		return o.emit(ev)
	}

	_, err := deps.Build(o.ctx, req.dest, build.Options{
		Stack:     info.Path,
		Platform:  platform.Native(),
		Version:   req.version,
		SourceDir: req.sourceDir,
		SourceURL: req.sourceURL,
		Args:      req.buildArgs,
	}, emit)

	switch {
	case renameErr != nil:
		return "", &PhaseError{Phase: progress.PhaseBuild, Err: renameErr}
	case err != nil:
		if o.ctx.Err() != nil {
			return "", o.ctx.Err()
		}
		var berr *build.Error
		if errors.As(err, &berr) {
			return "", &PhaseError{Phase: progress.RewriteBuilderPhase(berr.Phase), Err: berr.Err}
		}
		return "", &PhaseError{Phase: progress.PhaseBuild, Err: err}
	default:
		return finalPath, nil
	}
}
