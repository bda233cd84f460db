package core

import (
	"github.com/go-drift/flywire/pkg/errors"
	"github.com/go-drift/flywire/pkg/tree"
)

type names map[string]bool

func (n names) Has(name string) bool { return n[name] }

var primitives = names{"Frame": true, "Label": true, "Button": true}

// probe is a stateful component recording its lifecycle.
type probe struct {
	StateBase
	text       string
	mounts     int
	unmounts   int
	mountErr   error
	mountPanic any
	log        *[]string
}

func (p *probe) OnMount(*Context) error {
	p.mounts++
	if p.log != nil {
		*p.log = append(*p.log, "mount "+p.text)
	}
	if p.mountPanic != nil {
		panic(p.mountPanic)
	}
	return p.mountErr
}

func (p *probe) OnUnmount() {
	p.unmounts++
	if p.log != nil {
		*p.log = append(*p.log, "unmount "+p.text)
	}
	p.StateBase.OnUnmount()
}

func (p *probe) Render(tree.Props) tree.Descriptor {
	return tree.T("Label", p.text)
}

type captureHandler struct {
	cycles []*errors.CycleError
	panics []*errors.PanicError
	mounts []*errors.MountHookError
}

func (h *captureHandler) HandleError(err *errors.CycleError) { h.cycles = append(h.cycles, err) }
func (h *captureHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }
func (h *captureHandler) HandleMountError(err *errors.MountHookError) { h.mounts = append(h.mounts, err) }
