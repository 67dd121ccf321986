package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/folio-journal/backend/internal/content"
	"github.com/folio-journal/backend/internal/markup"
)

// Tab names one pane of the editor surface.
type Tab string

const (
	TabDescriptors Tab = "descriptors"
	TabText        Tab = "text"
	TabPreview     Tab = "preview"
)

var (
	// ErrInvalidTab indicates a tab name outside the known set.
	ErrInvalidTab = errors.New("editor: invalid tab")
	// ErrSelectionRequired is the one selection failure surfaced to the
	// user: link insertion without selected text. The style operations
	// no-op silently instead.
	ErrSelectionRequired = errors.New("editor: please select some text first")
	// ErrUnknownStyle indicates a style kind outside the policy table.
	ErrUnknownStyle = errors.New("editor: unknown style kind")
)

// ParseTab validates a raw tab name.
func ParseTab(raw string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case TabDescriptors:
		return TabDescriptors, nil
	case TabText:
		return TabText, nil
	case TabPreview:
		return TabPreview, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTab, raw)
	}
}

// Session holds the authoring state for one open editor: the stored string
// (kept current after every mutation), the live tree while the text tab is
// mounted, the saved selection, and the active tab. All methods are safe
// for concurrent use; async image reads apply whole-field replacements under
// the same lock, so last-write-wins.
type Session struct {
	mu sync.Mutex

	id      string
	entryID *int64
	format  content.Format

	text           string
	doc            *markup.Document
	savedSelection *markup.Selection
	activeTab      Tab
	previousTab    Tab

	// whole-field toggle flags for the markdown encoding; ephemeral, never
	// written into the stored string.
	fieldFlags map[markup.StyleKind]bool

	resize *resizeGesture
	logger *zap.Logger
}

// SessionConfig describes the inputs for opening a session.
type SessionConfig struct {
	ID      string
	EntryID *int64
	Text    string
	Format  content.Format
	Logger  *zap.Logger
}

// NewSession opens a session on the descriptors tab. The live tree is not
// built until the text tab is entered.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:          cfg.ID,
		entryID:     cfg.EntryID,
		format:      content.EffectiveFormat(cfg.Format, cfg.Text),
		text:        cfg.Text,
		activeTab:   TabDescriptors,
		previousTab: TabDescriptors,
		fieldFlags:  map[markup.StyleKind]bool{},
		logger:      logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// EntryID returns the bound entry id, nil for unsaved drafts.
func (s *Session) EntryID() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryID
}

// BindEntry associates the session with a persisted entry.
func (s *Session) BindEntry(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryID = &id
}

// Text returns the current stored string.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Format returns the encoding the session edits.
func (s *Session) Format() content.Format {
	return s.format
}

// ActiveTab returns the current tab.
func (s *Session) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// SwitchTab moves among the three panes. Transitions are unconditional; the
// only side effect is entering the text tab from a different one, which
// rebuilds the live tree from the current stored string and drops any
// selection or gesture referencing the previous tree instance.
func (s *Session) SwitchTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousTab = s.activeTab
	s.activeTab = tab
	if tab == TabText && s.previousTab != TabText {
		s.doc = markup.Parse(s.text)
		s.savedSelection = nil
		s.releaseResizeLocked()
	}
}

// SaveSelection captures the selection descriptor replayed before the next
// formatting operation. It is validated lazily: staleness is detected at
// apply time, against the tree revision it was captured at.
func (s *Session) SaveSelection(sel markup.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedSelection = &sel
}

// SelectTextRange captures a selection over the global rune interval of the
// mounted tree's plain text.
func (s *Session) SelectTextRange(startRune, endRune int) (markup.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return markup.Selection{}, markup.ErrInvalidSelection
	}
	sel, err := s.doc.SelectTextRange(startRune, endRune)
	if err != nil {
		return markup.Selection{}, err
	}
	s.savedSelection = &sel
	return sel, nil
}

// ToggleStyle applies or removes a boolean inline style over the saved
// selection. An absent, collapsed, or stale selection is a silent no-op.
// When the selection already sits inside a wrapper of the exact kind the
// wrapper is unwrapped; otherwise the selection is wrapped and the new
// wrapper's contents become the saved selection, so another style can chain
// onto the same range.
func (s *Session) ToggleStyle(kind markup.StyleKind) error {
	if _, ok := styleTag(kind); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == content.FormatMarkdown {
		// The markdown encoding has no per-run style: the flags apply to
		// the whole field and never round-trip into the stored string.
		s.fieldFlags[kind] = !s.fieldFlags[kind]
		return nil
	}

	sel, ok := s.usableSelectionLocked()
	if !ok {
		return nil
	}
	tag := kind.Tag()
	if kind.Toggleable() {
		wrapper, err := s.doc.EnclosingWrapper(*sel, tag)
		if err != nil {
			return nil
		}
		if wrapper != nil {
			s.doc.Unwrap(wrapper)
			s.savedSelection = nil
			s.text = s.doc.Serialize()
			return nil
		}
	}
	newSel, err := s.doc.Wrap(*sel, markup.NewElement(tag))
	if err != nil {
		return nil
	}
	s.savedSelection = &newSel
	s.text = s.doc.Serialize()
	return nil
}

// ApplyColor wraps the saved selection in a color span. Value styles are
// always additive: there is no toggle-off path, repeated applications nest.
func (s *Session) ApplyColor(color string) error {
	return s.applyValueStyle("color: " + color)
}

// ApplyFontFamily wraps the saved selection in a font-family span.
func (s *Session) ApplyFontFamily(font string) error {
	return s.applyValueStyle("font-family: " + font)
}

// ApplyFontSize wraps the saved selection in a font-size span.
func (s *Session) ApplyFontSize(sizePx int) error {
	return s.applyValueStyle(fmt.Sprintf("font-size: %dpx", sizePx))
}

func (s *Session) applyValueStyle(style string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.format == content.FormatMarkdown {
		// Value styles have no whole-field counterpart in the markdown
		// encoding; the stored text must never gain markup.
		return nil
	}
	sel, ok := s.usableSelectionLocked()
	if !ok {
		return nil
	}
	span := markup.NewElement("span", markup.Attribute{Key: "style", Value: style + ";"})
	newSel, err := s.doc.Wrap(*sel, span)
	if err != nil {
		return nil
	}
	s.savedSelection = &newSel
	s.text = s.doc.Serialize()
	return nil
}

// InsertLink replaces the selected text with a styled hyperlink opening in a
// new context. An empty URL is a no-op; a missing or empty selection is the
// one formatting failure surfaced to the user.
func (s *Session) InsertLink(url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.format == content.FormatMarkdown {
		// The markdown encoding carries no inline markup; link insertion
		// only exists on rich sessions.
		return nil
	}
	if s.doc == nil || s.savedSelection == nil {
		return ErrSelectionRequired
	}
	selectedText, err := s.doc.TextInRange(*s.savedSelection)
	if err != nil || selectedText == "" {
		return ErrSelectionRequired
	}
	link := markup.NewElement("a",
		markup.Attribute{Key: "href", Value: url},
		markup.Attribute{Key: "style", Value: "color: #0070f3; text-decoration: underline;"},
		markup.Attribute{Key: "target", Value: "_blank"},
	)
	link.AppendChild(markup.NewText(selectedText))
	if err := s.doc.ReplaceRange(*s.savedSelection, link); err != nil {
		return ErrSelectionRequired
	}
	s.savedSelection = nil
	s.text = s.doc.Serialize()
	return nil
}

// FieldFlag reports the ephemeral whole-field toggle state for the markdown
// encoding.
func (s *Session) FieldFlag(kind markup.StyleKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fieldFlags[kind]
}

// FieldFlags returns the whole-field toggles currently switched on.
func (s *Session) FieldFlags() map[markup.StyleKind]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := make(map[markup.StyleKind]bool, len(s.fieldFlags))
	for kind, on := range s.fieldFlags {
		if on {
			flags[kind] = true
		}
	}
	return flags
}

// usableSelectionLocked returns the saved selection when it is present,
// resolvable against the mounted tree, and not collapsed. Everything else
// is the silent no-op path the style operations share.
func (s *Session) usableSelectionLocked() (*markup.Selection, bool) {
	if s.doc == nil || s.savedSelection == nil {
		return nil, false
	}
	if s.doc.Collapsed(*s.savedSelection) {
		return nil, false
	}
	return s.savedSelection, true
}

func styleTag(kind markup.StyleKind) (string, bool) {
	tag := kind.Tag()
	return tag, tag != ""
}
