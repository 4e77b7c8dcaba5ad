package commands

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-errors"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

// ExpandTemplate expands a template string using the provided data.
// The data can be any struct - templates access fields via {{ .FieldName }}.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	return execute(tmpl, data)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// DefaultMessages are the replies of the game and coord commands, as
// templates over Reply.
var DefaultMessages = map[string]string{
	"unknown-command":   `Unknown command: {{ .Command }}`,
	"usage":             `Usage: {{ .Usage }}`,
	"unexpected-error":  `An unexpected error occurred.`,
	"game-not-found":    `{{ .Error }}`,
	"game-faulty":       `Game {{ .Name }} is misconfigured: {{ .Error }}`,
	"game-started":      `Started {{ .Name }} (#{{ .ID }}) with map: {{ .Map }}`,
	"game-stopped":      `The game has been stopped.`,
	"game-not-running":  `No game is running with id {{ .ID }}.`,
	"game-list-empty":   `No game is running.`,
	"game-list-entry":   `#{{ .ID }} {{ .Name }}{{ with .Map }} on {{ . }}{{ end }}{{ if .CanJoin }} (joinable){{ end }}`,
	"map-not-found":     `{{ .Name }} has no map {{ .Map }}.`,
	"map-failed":        `Unable to load map.`,
	"script-not-found":  `That script ({{ .Script }}) does not exist.`,
	"script-executed":   `Script {{ .Script }} has been executed.`,
	"script-failed":     `Compilation error: {{ .Error }}`,
	"edit-started":      `Editing {{ .Name }} (#{{ .ID }}) on map {{ .Map }}.`,
	"busy":              `You are already in a game.`,
	"left":              `You left {{ .Name }}.`,
	"not-in-game":       `You are not in a game.`,
	"game-not-joinable": `Game #{{ .ID }} cannot be joined right now.`,
	"joined":            `Joined {{ .Name }} (#{{ .ID }}).`,
	"watching":          `Watching {{ .Name }} (#{{ .ID }}).`,
	"not-editing":       `You must be editing a game to manage coordinate tags.`,
	"tag-list-empty":    `No coordinate tags defined.`,
	"tag-list-entry":    `{{ .Tag }} [{{ .Mode }}]: {{ .Count }} capture(s) on {{ .Map }}`,
	"tag-captured":      `Captured {{ .Tag }} #{{ .Index }} at {{ .Capture }}.`,
	"tag-mode-conflict": `{{ .Tag }} is already a {{ .Mode }} tag.`,
	"tag-invalid":       `{{ .Error }}`,
	"tag-removed":       `Removed tag {{ .Tag }}{{ with .Map }} from map {{ . }}{{ end }}.`,
	"tag-not-found":     `Tag {{ .Tag }} does not exist.`,
	"tag-no-capture":    `{{ .Tag }} has no capture #{{ .Index }} on {{ .Map }}.`,
	"tag-malformed":     `Tag data is corrupted: {{ .Error }}`,
	"teleported":        `Teleported to {{ .Tag }} #{{ .Index }}.`,
}

// Messages holds the compiled reply templates.
type Messages struct {
	tmpls map[string]*template.Template
}

// NewMessages compiles DefaultMessages with overrides applied. Unknown keys
// and broken templates are reported together.
func NewMessages(overrides map[string]string) (*Messages, error) {
	el := errors.NewErrorList()

	merged := maps.Clone(DefaultMessages)
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := DefaultMessages[key]; !ok {
			el.Add(fmt.Errorf("unknown message %q", key))
			continue
		}
		merged[key] = overrides[key]
	}

	m := &Messages{tmpls: make(map[string]*template.Template, len(merged))}
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		tmpl, err := template.New(key).Funcs(templateFuncs).Parse(merged[key])
		if err != nil {
			el.Add(fmt.Errorf("message %q: %w", key, err))
			continue
		}
		m.tmpls[key] = tmpl
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Render expands message key with data.
func (m *Messages) Render(key string, data any) (string, error) {
	tmpl, ok := m.tmpls[key]
	if !ok {
		return "", fmt.Errorf("unknown message %q", key)
	}
	return execute(tmpl, data)
}
