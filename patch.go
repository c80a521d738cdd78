package tomledit

import (
	"log/slog"

	"github.com/kevinwang15/tomledit/tomldoc"
)

// Patcher parses documents and applies instruction batches to them.
// A Patcher holds no per-document state and may be shared.
type Patcher struct {
	log    *slog.Logger
	strict bool
}

type PatcherOption func(*Patcher)

// WithLogger sets the logger that receives one debug record per applied
// instruction.
func WithLogger(l *slog.Logger) PatcherOption {
	return func(p *Patcher) { p.log = l }
}

// Strict controls whether documents are also checked by a full TOML
// decoder after parsing. It is on by default.
func Strict(v bool) PatcherOption {
	return func(p *Patcher) { p.strict = v }
}

func NewPatcher(opts ...PatcherOption) *Patcher {
	p := &Patcher{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	return p
}

var defaultPatcher = NewPatcher()

// Patch applies the comma separated paths and values to text and returns
// the updated document. See [Plan] for the format of paths and values.
func Patch(text, paths, values string) (string, error) {
	return defaultPatcher.Patch(text, paths, values)
}

// Normalize parses text and serializes it again.
func Normalize(text string) (string, error) {
	return defaultPatcher.Normalize(text)
}

func (p *Patcher) parse(text string) (*tomldoc.Document, error) {
	doc, err := tomldoc.Parse([]byte(text), tomldoc.Strict(p.strict))
	if err != nil {
		p.log.Debug("parse failed", "error", err)
		return nil, parseErr(err)
	}
	return doc, nil
}

func (p *Patcher) Normalize(text string) (string, error) {
	doc, err := p.parse(text)
	if err != nil {
		return "", err
	}
	return doc.String(), nil
}

func (p *Patcher) Patch(text, paths, values string) (string, error) {
	doc, err := p.parse(text)
	if err != nil {
		return "", err
	}
	ins, err := Plan(paths, values)
	if err != nil {
		return "", err
	}
	p.ApplyAll(doc, ins)
	return doc.String(), nil
}

// ApplyAll applies instructions to doc in the given order. Instructions
// returned by [Plan] are already sorted.
func (p *Patcher) ApplyAll(doc *tomldoc.Document, ins []Instruction) {
	defer lockDoc(doc)()
	a := newApplier(doc, p.log)
	for _, in := range ins {
		a.apply(in)
	}
	p.log.Debug("patch applied", "instructions", len(ins))
}
