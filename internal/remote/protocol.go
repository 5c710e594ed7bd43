// Package remote serves CPU engines over a websocket and provides a Backend
// whose engines render on such a server.
//
// Each message is one JSON object. The client sends a Request and waits for
// the matching Response before sending the next one.
package remote

import (
	"errors"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

type Op string

const (
	OpModes  Op = "modes"
	OpCreate Op = "create"
	OpRender Op = "render"
)

// Path is the websocket endpoint served by Serve.
const Path = "/ws"

type Request struct {
	Op      Op              `json:"op"`
	Canvas  string          `json:"canvas,omitempty"`
	Params  *fractal.Params `json:"params,omitempty"`
	Threads int             `json:"threads,omitempty"`
}

// Response answers one Request. Frame holds PNG bytes after a render.
type Response struct {
	Error   string                    `json:"error,omitempty"`
	Seconds float64                   `json:"seconds,omitempty"`
	Frame   []byte                    `json:"frame,omitempty"`
	Modes   []fractal.PaintModeOption `json:"modes,omitempty"`
}

var (
	// ErrRemote wraps an error reported by the server.
	ErrRemote = errors.New("remote: server error")

	// ErrNoEngine is reported when rendering before create.
	ErrNoEngine = errors.New("remote: no engine on this connection")
)
