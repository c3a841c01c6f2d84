// Package labels loads the class taxonomy used to name model outputs.
//
// The label file is a flat JSON object mapping label-id to display label.
// Key order in the file is significant: the i-th key names the i-th entry of
// the model's output vector, so the file is parsed with a streaming decoder
// instead of into a Go map.
package labels

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

type Dictionary struct {
	ids  []string
	byID map[string]string
}

func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open labels")
	}
	defer f.Close()

	dict, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse labels %s", path)
	}
	return dict, nil
}

// Parse reads a JSON object of string values. A repeated key keeps the
// position of its first occurrence and the value of its last.
func Parse(r io.Reader) (*Dictionary, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("expected a JSON object, got %v", tok)
	}

	d := &Dictionary{byID: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "read label id")
		}
		id, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("expected a string key, got %v", tok)
		}

		var label string
		if err := dec.Decode(&label); err != nil {
			return nil, errors.Wrapf(err, "label %q must be a string", id)
		}

		if _, seen := d.byID[id]; !seen {
			d.ids = append(d.ids, id)
		}
		d.byID[id] = label
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "read closing token")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after label object")
	}
	if len(d.ids) == 0 {
		return nil, errors.New("label dictionary is empty")
	}

	return d, nil
}

func (d *Dictionary) Len() int {
	return len(d.ids)
}

// IDAt returns the label-id at position i in file order.
func (d *Dictionary) IDAt(i int) (string, bool) {
	if i < 0 || i >= len(d.ids) {
		return "", false
	}
	return d.ids[i], true
}

func (d *Dictionary) Label(id string) (string, bool) {
	label, ok := d.byID[id]
	return label, ok
}

func (d *Dictionary) IDs() []string {
	out := make([]string, len(d.ids))
	copy(out, d.ids)
	return out
}
