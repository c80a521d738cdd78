package tomledit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/kevinwang15/tomledit/tomldoc"
)

// jsonOp is a JSON Patch operation resolved against the document.
type jsonOp struct {
	kind  string
	ptr   string
	path  Path
	value *Scalar
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// parsePointer turns a JSON pointer into a path. Array indices are not
// special: every reference token names a table key.
func parsePointer(ptr string) (Path, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("%w: JSON pointer %q must start with '/'", ErrMalformedPath, ptr)
	}
	toks := strings.Split(ptr[1:], "/")
	for i, tok := range toks {
		if tok == "" {
			return nil, fmt.Errorf("%w: JSON pointer %q has an empty reference token", ErrMalformedPath, ptr)
		}
		toks[i] = pointerUnescaper.Replace(tok)
	}
	return Path(toks), nil
}

func decodeScalar(raw []byte) (Scalar, error) {
	if len(raw) == 0 {
		return Scalar{}, fmt.Errorf("%w: missing value", ErrNonScalar)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Scalar{}, err
	}
	if v == nil {
		return Scalar{}, fmt.Errorf("%w: null", ErrNonScalar)
	}
	return ScalarOf(v)
}

func planJSONPatch(patch jsonpatch.Patch, base Path) ([]jsonOp, error) {
	ops := make([]jsonOp, 0, len(patch))
	for i, op := range patch {
		kind := op.Kind()
		ptr, err := op.Path()
		if err != nil {
			return nil, fmt.Errorf("tomledit: operation %d: %w", i, err)
		}
		rel, err := parsePointer(ptr)
		if err != nil {
			return nil, fmt.Errorf("tomledit: operation %d: %w", i, err)
		}
		path := append(slices.Clone(base), rel...)
		if len(path) == 0 {
			return nil, fmt.Errorf("%w: operation %d targets the document root", ErrMalformedPath, i)
		}
		jo := jsonOp{kind: kind, ptr: ptr, path: path}
		switch kind {
		case "add", "replace", "test":
			var raw []byte
			if rv := op["value"]; rv != nil {
				raw = []byte(*rv)
			}
			v, err := decodeScalar(raw)
			if err != nil {
				return nil, fmt.Errorf("tomledit: operation %d (%s %s): %w", i, kind, ptr, err)
			}
			jo.value = &v
		case "remove":
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, kind)
		}
		ops = append(ops, jo)
	}
	return ops, nil
}

// applyJSON applies operations in order. Unlike a batch from Plan, JSON
// Patch operations are sequential and see each other's effects.
func (a *applier) applyJSON(ops []jsonOp) error {
	for i, op := range ops {
		cur := Resolve(a.doc, op.path)
		switch op.kind {
		case "add":
			a.apply(Instruction{Index: i, Path: op.path, Value: op.value})
		case "replace":
			if cur == nil {
				return fmt.Errorf("%w: %s", ErrNotFound, op.ptr)
			}
			a.apply(Instruction{Index: i, Path: op.path, Value: op.value})
		case "remove":
			if cur == nil {
				return fmt.Errorf("%w: %s", ErrNotFound, op.ptr)
			}
			a.apply(Instruction{Index: i, Path: op.path})
		case "test":
			v, ok := cur.(*tomldoc.Value)
			if !ok || !op.value.Equal(v) {
				return fmt.Errorf("%w: %s is not %s", ErrTestFailed, op.ptr, op.value)
			}
		}
	}
	return nil
}

// ApplyJSONPatchAtPath applies an RFC 6902 patch whose pointers are
// relative to the table at base. Supported operations are add, replace,
// remove and test, with scalar values only. The document is left untouched
// when any operation fails.
func ApplyJSONPatchAtPath(doc *tomldoc.Document, patch jsonpatch.Patch, base Path) error {
	return defaultPatcher.applyJSONPatch(doc, patch, base)
}

func ApplyJSONPatch(doc *tomldoc.Document, patch jsonpatch.Patch) error {
	return ApplyJSONPatchAtPath(doc, patch, nil)
}

func ApplyJSONPatchBytes(doc *tomldoc.Document, patch []byte) error {
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return err
	}
	return ApplyJSONPatch(doc, p)
}

func (p *Patcher) applyJSONPatch(doc *tomldoc.Document, patch jsonpatch.Patch, base Path) error {
	ops, err := planJSONPatch(patch, base)
	if err != nil {
		return err
	}
	defer lockDoc(doc)()

	// Dry run on a copy first; test and remove may fail halfway through.
	clone, err := tomldoc.Parse(doc.Bytes(), tomldoc.Strict(false))
	if err != nil {
		return parseErr(err)
	}
	if err := newApplier(clone, nil).applyJSON(ops); err != nil {
		return err
	}
	return newApplier(doc, p.log).applyJSON(ops)
}

// PatchJSON applies an RFC 6902 patch document to text.
func (p *Patcher) PatchJSON(text string, patch []byte) (string, error) {
	doc, err := p.parse(text)
	if err != nil {
		return "", err
	}
	jp, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return "", fmt.Errorf("tomledit: %w", err)
	}
	ops, err := planJSONPatch(jp, nil)
	if err != nil {
		return "", err
	}
	if err := newApplier(doc, p.log).applyJSON(ops); err != nil {
		return "", err
	}
	return doc.String(), nil
}

func PatchJSON(text string, patch []byte) (string, error) {
	return defaultPatcher.PatchJSON(text, patch)
}
