package document

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

const layoutYAML = `maps:
  - id: arena1
    path: maps/a1
  - id: arena2
    alias: Second Arena
    path: maps/a2
    weather: rain
scripts:
  - id: hello
    path: scripts/hello.lua
coordinate-tags:
  path: tags.yml
install-sample: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := map[string]struct {
		content string
		missing bool
		expErr  string
	}{
		"valid layout": {
			content: layoutYAML,
		},
		"empty file": {
			content: "",
			expErr:  "document is empty",
		},
		"whitespace only": {
			content: "  \n\n",
			expErr:  "document is empty",
		},
		"comments only": {
			content: "# nothing here\n",
			expErr:  "document is empty",
		},
		"top level sequence": {
			content: "- a\n- b\n",
			expErr:  "top level must be a mapping",
		},
		"invalid yaml": {
			content: "maps: [unclosed\n",
			expErr:  "parsing",
		},
		"missing file": {
			missing: true,
			expErr:  "reading",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(name, " ", "_")+".yml")
			if !tt.missing {
				writeFile(t, tmpDir, filepath.Base(path), tt.content)
			}

			_, err := Load(path, nil)
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestOpen_MissingOrEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	d, err := Open(filepath.Join(tmpDir, "absent.yml"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "keys", len(d.Keys("")), 0)

	path := writeFile(t, tmpDir, "empty.yml", "")
	d, err = Open(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "keys", len(d.Keys("")), 0)
}

func TestDocument_Getters(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.yml", layoutYAML)
	d, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "keys", strings.Join(d.Keys(""), ","), "maps,scripts,coordinate-tags,install-sample")

	tagPath, ok := d.String("coordinate-tags.path")
	testutil.AssertEqual(t, "tag path found", ok, true)
	testutil.AssertEqual(t, "tag path", tagPath, "tags.yml")

	_, ok = d.String("coordinate-tags.missing")
	testutil.AssertEqual(t, "missing found", ok, false)

	_, ok = d.String("maps")
	testutil.AssertEqual(t, "sequence as string", ok, false)

	b, ok := d.Bool("install-sample")
	testutil.AssertEqual(t, "bool found", ok, true)
	testutil.AssertEqual(t, "bool", b, true)

	testutil.AssertEqual(t, "has maps", d.Has("maps"), true)
	testutil.AssertEqual(t, "has nested", d.Has("coordinate-tags.path"), true)
	testutil.AssertEqual(t, "has absent", d.Has("worlds"), false)

	maps, err := d.MapList("maps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "map count", len(maps), 2)
	testutil.AssertEqual(t, "map id", maps[0]["id"], any("arena1"))
	testutil.AssertEqual(t, "extra field", maps[1]["weather"], any("rain"))
}

func TestDocument_SetAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yml")
	d := New(path, nil)

	err := d.Set("BLOCK.spawn.arena1", []string{"10,64,-3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = d.Set("BLOCK.spawn.arena2", []string{"0,0,0", "1,1,1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "maps", strings.Join(d.Keys("BLOCK.spawn"), ","), "arena1,arena2")
	testutil.AssertEqual(t, "list", strings.Join(d.StringList("BLOCK.spawn.arena2"), "|"), "0,0,0|1,1,1")

	// Overwrite keeps position
	err = d.Set("BLOCK.spawn.arena1", []string{"5,5,5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "maps after overwrite", strings.Join(d.Keys("BLOCK.spawn"), ","), "arena1,arena2")
	testutil.AssertEqual(t, "overwritten", strings.Join(d.StringList("BLOCK.spawn.arena1"), "|"), "5,5,5")

	testutil.AssertEqual(t, "remove map", d.Remove("BLOCK.spawn.arena1"), true)
	testutil.AssertEqual(t, "remove again", d.Remove("BLOCK.spawn.arena1"), false)
	testutil.AssertEqual(t, "maps after remove", strings.Join(d.Keys("BLOCK.spawn"), ","), "arena2")

	err = d.Set("BLOCK.spawn", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "tags after nil set", len(d.Keys("BLOCK")), 0)
}

func TestDocument_SetListField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.yml", layoutYAML)

	d, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = d.SetListField("maps", 0, "alias", "arena1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maps, err := d.MapList("maps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "alias", maps[0]["alias"], any("arena1"))
	testutil.AssertEqual(t, "untouched", maps[1]["alias"], any("Second Arena"))

	tests := map[string]struct {
		key    string
		index  int
		expErr string
	}{
		"not a list":   {key: "coordinate-tags", index: 0, expErr: "is not a list"},
		"out of range": {key: "maps", index: 2, expErr: "has no entry"},
		"missing key":  {key: "nope", index: 0, expErr: "is not a list"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := d.SetListField(tt.key, tt.index, "alias", "x")
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestDocument_MapEntriesKeepIndex(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layout.yml", "maps:\n  - junk\n  - id: a\n    alias: x\n  - id: b\n")

	d, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := d.MapEntries("maps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "entries", len(entries), 2)
	testutil.AssertEqual(t, "first index", entries[0].Index, 1)
	testutil.AssertEqual(t, "second index", entries[1].Index, 2)
	testutil.AssertEqual(t, "second id", entries[1].Fields["id"], any("b"))

	err = d.SetListField("maps", entries[1].Index, "alias", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	maps, err := d.MapList("maps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "kept alias", maps[0]["alias"], any("x"))
	testutil.AssertEqual(t, "set alias", maps[1]["alias"], any("b"))

	err = d.SetListField("maps", 0, "alias", "z")
	testutil.AssertErrorContains(t, err, "is not a section")
}

func TestDocument_SaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "layout.yml", layoutYAML)

	d, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = d.Set("coordinate-tags.path", "other.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = d.Save()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("temp file left behind: %v", err)
	}

	reloaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := reloaded.String("coordinate-tags.path")
	testutil.AssertEqual(t, "tag path", got, "other.yml")
	testutil.AssertEqual(t, "key order", strings.Join(reloaded.Keys(""), ","), "maps,scripts,coordinate-tags,install-sample")

	scripts, err := reloaded.MapList("scripts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "script count", len(scripts), 1)
}

func TestDocument_Charset(t *testing.T) {
	enc, err := Charset("ISO-8859-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "latin.yml")
	d := New(path, enc)
	err = d.Set("name", "café")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = d.Save()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "latin-1 byte", strings.Contains(string(raw), "caf\xe9"), true)

	reloaded, err := Load(path, enc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := reloaded.String("name")
	testutil.AssertEqual(t, "name", got, "café")

	_, err = Charset("no-such-charset")
	if err == nil {
		t.Error("expected error for unknown charset")
	}
}
