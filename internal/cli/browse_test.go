package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
)

func browseDocs() []*corpus.Documentable {
	return []*corpus.Documentable{
		{ID: "A.kt#p.A#0", Path: "p.A", Language: corpus.Kotlin, SourceDoc: "@include B", Doc: "Bee.", SourceHasDocumentation: true},
		{ID: "A.kt#p.B#0", Path: "p.B", Language: corpus.Kotlin, SourceDoc: "Bee.", Doc: "Bee.", SourceHasDocumentation: true},
		{ID: "A.kt#p.C#0", Path: "p.C", Language: corpus.Kotlin},
		{ID: "A.kt#p.D#0", Path: "p.D", Language: corpus.Kotlin, SourceDoc: "@include X", Doc: "@include X", SourceHasDocumentation: true},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewBrowseModelSkipsUndocumented(t *testing.T) {
	m := NewBrowseModel(browseDocs(), nil, nil)
	if len(m.Docs) != 3 {
		t.Fatalf("NewBrowseModel() shows %d docs, want 3", len(m.Docs))
	}
	for _, d := range m.Docs {
		if d.Path == "p.C" {
			t.Error("undocumented p.C should be hidden")
		}
	}
}

func TestBrowseModelNavigation(t *testing.T) {
	var model tea.Model = NewBrowseModel(browseDocs(), nil, nil)
	steps := []struct {
		msg    tea.Msg
		cursor int
	}{
		{keyRunes("k"), 0},
		{keyRunes("j"), 1},
		{tea.KeyMsg{Type: tea.KeyDown}, 2},
		{keyRunes("j"), 2},
		{tea.KeyMsg{Type: tea.KeyUp}, 1},
	}
	for i, s := range steps {
		model, _ = model.Update(s.msg)
		if got := model.(BrowseModel).Cursor; got != s.cursor {
			t.Errorf("step %d: Cursor = %d, want %d", i, got, s.cursor)
		}
	}
}

func TestBrowseModelScroll(t *testing.T) {
	m := NewBrowseModel(browseDocs(), nil, nil)
	m.Height = 2
	var model tea.Model = m
	for range 2 {
		model, _ = model.Update(keyRunes("j"))
	}
	if got := model.(BrowseModel).Offset; got != 1 {
		t.Errorf("Offset = %d, want 1", got)
	}
	for range 2 {
		model, _ = model.Update(keyRunes("k"))
	}
	if got := model.(BrowseModel).Offset; got != 0 {
		t.Errorf("Offset after scrolling back = %d, want 0", got)
	}
}

func TestBrowseModelToggleAndQuit(t *testing.T) {
	var model tea.Model = NewBrowseModel(browseDocs(), nil, nil)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !model.(BrowseModel).Source {
		t.Error("enter should show the source doc")
	}
	if view := model.View(); !strings.Contains(view, "@include B") {
		t.Errorf("source view = %q, want the source doc", view)
	}
	model, _ = model.Update(keyRunes("s"))
	if model.(BrowseModel).Source {
		t.Error("s should toggle back to the processed doc")
	}

	if _, cmd := model.Update(keyRunes("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestBrowseModelWindowSize(t *testing.T) {
	var model tea.Model = NewBrowseModel(browseDocs(), nil, nil)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := model.(BrowseModel)
	if m.Width != 120 || m.Height != 32 {
		t.Errorf("size = %dx%d, want 120x32", m.Width, m.Height)
	}
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 6})
	if got := model.(BrowseModel).Height; got != 5 {
		t.Errorf("Height = %d, want the minimum 5", got)
	}
}

func TestBrowseModelViewErrors(t *testing.T) {
	docs := browseDocs()
	errs := map[string]error{
		"A.kt#p.D#0": errors.New(errors.ErrCodeReferenceNotFound, "reference X not found"),
	}
	m := NewBrowseModel(docs, errs, nil)
	m.Cursor = 2
	view := m.View()
	if !strings.Contains(view, "✗") {
		t.Error("View() should mark the failed documentable")
	}
	if !strings.Contains(view, "p.D") {
		t.Errorf("View() = %q, want the selected path", view)
	}
}

func TestBrowseModelEmpty(t *testing.T) {
	m := NewBrowseModel(nil, nil, nil)
	if view := m.View(); !strings.Contains(view, "No documented declarations.") {
		t.Errorf("View() = %q", view)
	}
}
