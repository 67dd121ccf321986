package markup

import (
	"errors"
	"testing"
)

func mustSelectTextRange(t *testing.T, doc *Document, startRune, endRune int) Selection {
	t.Helper()
	sel, err := doc.SelectTextRange(startRune, endRune)
	if err != nil {
		t.Fatalf("select [%d, %d): %v", startRune, endRune, err)
	}
	return sel
}

func TestSelectTextRangeResolvesAcrossElements(t *testing.T) {
	doc := Parse("<i>ab</i>cd")
	sel := mustSelectTextRange(t, doc, 1, 3)

	text, err := doc.TextInRange(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "bc" {
		t.Fatalf("expected %q, got %q", "bc", text)
	}
}

func TestSelectTextRangeCountsRunes(t *testing.T) {
	doc := Parse("héllo")
	sel := mustSelectTextRange(t, doc, 1, 3)

	text, err := doc.TextInRange(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "él" {
		t.Fatalf("expected %q, got %q", "él", text)
	}
}

func TestSelectTextRangeOrdersEndpoints(t *testing.T) {
	doc := Parse("hello")
	sel := mustSelectTextRange(t, doc, 4, 1)

	text, err := doc.TextInRange(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ell" {
		t.Fatalf("expected %q, got %q", "ell", text)
	}
}

func TestSelectTextRangeRejectsOutOfBounds(t *testing.T) {
	doc := Parse("hello")
	if _, err := doc.SelectTextRange(0, 99); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestStaleSelectionRejectedAfterMutation(t *testing.T) {
	doc := Parse("hello")
	sel := mustSelectTextRange(t, doc, 0, 5)
	doc.AppendNode(NewElement("img", Attribute{Key: "src", Value: "http://i"}))

	if _, err := doc.TextInRange(sel); !errors.Is(err, ErrStaleSelection) {
		t.Fatalf("expected ErrStaleSelection, got %v", err)
	}
}

func TestResolveRejectsBrokenPath(t *testing.T) {
	doc := Parse("hello")
	sel := doc.Select(
		Anchor{Path: []int{7, 0}, Offset: 0},
		Anchor{Path: nil, Offset: 0},
	)
	if _, err := doc.TextInRange(sel); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestSelectionResolvesInsideAppendedSubtree(t *testing.T) {
	doc := Parse("hello ")
	anchor := NewElement("a", Attribute{Key: "href", Value: "http://x"})
	anchor.AppendChild(NewText("world"))
	doc.AppendNode(anchor)

	sel := mustSelectTextRange(t, doc, 6, 11)
	text, err := doc.TextInRange(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "world" {
		t.Fatalf("expected %q, got %q", "world", text)
	}
	if len(sel.End.Path) != 2 {
		t.Fatalf("anchor inside the appended subtree must carry a full path, got %v", sel.End.Path)
	}
}

func TestCollapsedSelection(t *testing.T) {
	doc := Parse("hello")

	if !doc.Collapsed(mustSelectTextRange(t, doc, 2, 2)) {
		t.Fatal("zero-width range should be collapsed")
	}
	if doc.Collapsed(mustSelectTextRange(t, doc, 0, 5)) {
		t.Fatal("full range should not be collapsed")
	}

	stale := mustSelectTextRange(t, doc, 0, 5)
	doc.AppendNode(NewText("!"))
	if !doc.Collapsed(stale) {
		t.Fatal("stale selection should count as collapsed")
	}
}
