package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio-journal/backend/internal/markup"
)

const minImageWidthPx = 50

// ErrNoSuchImage indicates a resize request for an image index the mounted
// tree does not contain.
var ErrNoSuchImage = errors.New("editor: no such image")

// resizeGesture is the scoped acquisition a resize drag represents: begun on
// pointer-down, fed by moves, and released on every exit path so it cannot
// leak across subsequent interactions.
type resizeGesture struct {
	img            *markup.Node
	startX         int
	startWidth     int
	containerWidth int
}

// BeginImageResize starts a resize gesture on the nth image of the mounted
// tree. A session carries at most one gesture; beginning a new one releases
// the old.
func (s *Session) BeginImageResize(imageIndex, startX, startWidth, containerWidth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoSuchImage
	}
	img := nthImage(s.doc.Root(), imageIndex)
	if img == nil {
		return ErrNoSuchImage
	}
	s.resize = &resizeGesture{
		img:            img,
		startX:         startX,
		startWidth:     startWidth,
		containerWidth: containerWidth,
	}
	return nil
}

// MoveImageResize applies a pointer move to the active gesture. The new
// width is clamped to (50, containerWidth]; moves outside that window leave
// the image untouched. Moves with no active gesture are ignored.
func (s *Session) MoveImageResize(clientX int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resize == nil {
		return
	}
	newWidth := s.resize.startWidth + (clientX - s.resize.startX)
	if newWidth <= minImageWidthPx || newWidth > s.resize.containerWidth {
		return
	}
	s.resize.img.SetAttr("width", fmt.Sprintf("%d", newWidth))
	s.text = s.doc.Serialize()
}

// EndImageResize releases the active gesture.
func (s *Session) EndImageResize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseResizeLocked()
}

// ResizeActive reports whether a gesture is currently held.
func (s *Session) ResizeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resize != nil
}

func (s *Session) releaseResizeLocked() {
	s.resize = nil
}

func nthImage(root *markup.Node, index int) *markup.Node {
	count := 0
	var found *markup.Node
	var walk func(node *markup.Node) bool
	walk = func(node *markup.Node) bool {
		if node.Kind == markup.KindElement && strings.EqualFold(node.Tag, "img") {
			if count == index {
				found = node
				return true
			}
			count++
			return false
		}
		for _, child := range node.Children {
			if walk(child) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}
