package main

import (
	"github.com/rs/zerolog"

	"github.com/nnyyxxxx/fht-compositor/internal/shell"
)

// logTransport stands in for a wire protocol: configures are logged and
// per-client output refs are minted deterministically, first bind first.
// Every client is treated as having bound every output.
type logTransport struct {
	log  zerolog.Logger
	refs map[refKey]shell.OutputRef
	next shell.OutputRef
}

type refKey struct {
	client shell.ClientID
	output string
}

func newLogTransport(log zerolog.Logger) *logTransport {
	return &logTransport{
		log:  log,
		refs: make(map[refKey]shell.OutputRef),
		next: 1,
	}
}

func (t *logTransport) SendConfigure(surface shell.SurfaceID) {
	t.log.Debug().Uint64("surface", uint64(surface)).Msg("configure")
}

func (t *logTransport) ClientOutputs(client shell.ClientID, output *shell.Output) []shell.OutputRef {
	if output == nil {
		return nil
	}
	key := refKey{client: client, output: output.Name()}
	ref, ok := t.refs[key]
	if !ok {
		ref = t.next
		t.next++
		t.refs[key] = ref
	}
	return []shell.OutputRef{ref}
}
