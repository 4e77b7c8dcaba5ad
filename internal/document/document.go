// Package document implements the hierarchical key-value documents used for
// plugin layouts and coordinate tags. Documents are YAML files addressed by
// dotted key paths ("coordinate-tags.path") and keep the key order found on
// disk.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned by Load when the file has no content.
var ErrEmpty = errors.New("document is empty")

type Document struct {
	path string
	enc  encoding.Encoding

	mu   sync.RWMutex
	root *yaml.Node
}

// New returns an empty document that will be saved to path.
func New(path string, enc encoding.Encoding) *Document {
	return &Document{
		path: path,
		enc:  enc,
		root: newMapping(),
	}
}

// Load reads the document at path. Missing files and files without content
// are errors.
func Load(path string, enc encoding.Encoding) (*Document, error) {
	d := New(path, enc)

	err := d.load()
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Open behaves like Load but treats a missing or empty file as an empty
// document.
func Open(path string, enc encoding.Encoding) (*Document, error) {
	d, err := Load(path, enc)
	if errors.Is(err, ErrEmpty) || errors.Is(err, fs.ErrNotExist) {
		return New(path, enc), nil
	}
	return d, err
}

func (d *Document) load() error {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", d.path, err)
	}

	data, err := decode(raw, d.enc)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", d.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s: %w", d.path, ErrEmpty)
	}

	var doc yaml.Node
	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", d.path, err)
	}

	// A file holding only comments parses to a document without content
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fmt.Errorf("%s: %w", d.path, ErrEmpty)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level must be a mapping", d.path)
	}

	d.root = root
	return nil
}

// Path returns the file backing this document.
func (d *Document) Path() string {
	return d.path
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.lookup(key) != nil
}

// Keys returns the child keys of the section at key, in document order.
// An empty key lists the top level.
func (d *Document) Keys(section string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	node := d.root
	if section != "" {
		node = d.lookup(section)
	}
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// String returns the scalar stored at key.
func (d *Document) String(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	node := d.lookup(key)
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return "", false
	}
	return node.Value, true
}

// Bool returns the boolean stored at key.
func (d *Document) Bool(key string) (bool, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	node := d.lookup(key)
	if node == nil || node.Kind != yaml.ScalarNode {
		return false, false
	}

	var b bool
	if err := node.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}

// StringList returns the scalar entries of the sequence at key. Entries that
// are not scalars are skipped.
func (d *Document) StringList(key string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	node := d.lookup(key)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}

	list := make([]string, 0, len(node.Content))
	for _, n := range node.Content {
		n = resolve(n)
		if n.Kind != yaml.ScalarNode {
			continue
		}
		list = append(list, n.Value)
	}
	return list
}

// ListEntry is one mapping entry of a sequence. Index is its position in
// the sequence as stored, counting skipped entries.
type ListEntry struct {
	Index  int
	Fields map[string]any
}

// MapList returns the mapping entries of the sequence at key. Entries that
// are not mappings are skipped.
func (d *Document) MapList(key string) ([]map[string]any, error) {
	entries, err := d.MapEntries(key)
	if err != nil {
		return nil, err
	}

	list := make([]map[string]any, len(entries))
	for i, e := range entries {
		list[i] = e.Fields
	}
	return list, nil
}

// MapEntries is MapList keeping each entry's position in the sequence, for
// use with SetListField.
func (d *Document) MapEntries(key string) ([]ListEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	node := d.lookup(key)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil, nil
	}

	list := make([]ListEntry, 0, len(node.Content))
	for i, n := range node.Content {
		n = resolve(n)
		if n.Kind != yaml.MappingNode {
			continue
		}

		m := map[string]any{}
		if err := n.Decode(&m); err != nil {
			return nil, fmt.Errorf("decoding %s[%d]: %w", key, i, err)
		}
		list = append(list, ListEntry{Index: i, Fields: m})
	}
	return list, nil
}

// Set stores value at key, creating intermediate sections as needed. A nil
// value removes the key.
func (d *Document) Set(key string, value any) error {
	if value == nil {
		d.Remove(key)
		return nil
	}

	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	parts := strings.Split(key, ".")
	node := d.root
	for _, part := range parts[:len(parts)-1] {
		child := mappingValue(node, part)
		if child == nil || child.Kind != yaml.MappingNode {
			child = newMapping()
			setMappingValue(node, part, child)
		}
		node = child
	}
	setMappingValue(node, parts[len(parts)-1], &n)

	return nil
}

// SetListField stores value under field in the index-th mapping of the
// sequence at key. Other fields keep their order.
func (d *Document) SetListField(key string, index int, field string, value any) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("encoding %s[%d].%s: %w", key, index, field, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	seq := d.lookup(key)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return fmt.Errorf("%s is not a list", key)
	}
	if index < 0 || index >= len(seq.Content) {
		return fmt.Errorf("%s has no entry %d", key, index)
	}

	entry := resolve(seq.Content[index])
	if entry.Kind != yaml.MappingNode {
		return fmt.Errorf("%s[%d] is not a section", key, index)
	}
	setMappingValue(entry, field, &n)

	return nil
}

// Remove deletes key and everything below it. It reports whether the key
// existed.
func (d *Document) Remove(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	parent := d.root
	idx := strings.LastIndex(key, ".")
	if idx >= 0 {
		parent = d.lookup(key[:idx])
	}
	if parent == nil || parent.Kind != yaml.MappingNode {
		return false
	}

	name := key[idx+1:]
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == name {
			parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Save writes the document back to its file.
func (d *Document) Save() error {
	d.mu.RLock()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(d.root)
	if err == nil {
		err = enc.Close()
	}
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", d.path, err)
	}

	data, err := encode(buf.Bytes(), d.enc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", d.path, err)
	}

	return atomicWrite(d.path, data, 0644)
}

// lookup must be called with mu held.
func (d *Document) lookup(key string) *yaml.Node {
	node := d.root
	for _, part := range strings.Split(key, ".") {
		if node == nil || node.Kind != yaml.MappingNode {
			return nil
		}
		node = mappingValue(node, part)
	}
	return node
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
