package editor

import (
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-journal/backend/internal/content"
	"github.com/folio-journal/backend/internal/markup"
)

// droppedImageStyle mirrors the inline presentation a freshly dropped image
// carries in the editable surface.
const droppedImageStyle = "max-width: 100%; height: auto; margin: 1rem 0; border-radius: 4px; display: block;"

// htmlDropSrcPattern extracts the src of an img element from an HTML drag
// payload.
var htmlDropSrcPattern = regexp.MustCompile(`src="([^"]+)"`)

// InsertImageFile reads an image payload and appends it to the mounted tree
// as an inline data URI. Payloads whose declared type is not an image are
// silently ignored. The read completes asynchronously at an arbitrary later
// point; its completion applies a whole-field replacement under the session
// lock, so concurrent interactions resolve last-write-wins. There is no
// cancellation: switching tabs or dropping again does not abort an in-flight
// read, and a second drop may interleave.
func (s *Session) InsertImageFile(declaredType string, payload io.Reader) <-chan error {
	done := make(chan error, 1)
	if !strings.HasPrefix(declaredType, "image/") {
		done <- nil
		close(done)
		return done
	}
	go func() {
		defer close(done)
		raw, err := io.ReadAll(payload)
		if err != nil {
			s.logger.Warn("image read failed", zap.Error(err))
			done <- err
			return
		}
		uri := fmt.Sprintf("data:%s;base64,%s", declaredType, base64.StdEncoding.EncodeToString(raw))
		s.appendImage(uri)
		done <- nil
	}()
	return done
}

// InsertImageFromDrop handles a drop whose payload is not a file, falling
// through three extraction strategies in order: an img src parsed out of an
// HTML payload, a plain-text payload that looks like an absolute or inline
// data URI, and otherwise an ignored drop. It reports whether an image was
// inserted.
func (s *Session) InsertImageFromDrop(htmlPayload, textPayload string) bool {
	if match := htmlDropSrcPattern.FindStringSubmatch(htmlPayload); match != nil {
		s.appendImage(match[1])
		return true
	}
	if textPayload != "" && (strings.HasPrefix(textPayload, "http") || strings.HasPrefix(textPayload, "data:")) {
		s.appendImage(textPayload)
		return true
	}
	return false
}

func (s *Session) appendImage(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		// The editable tree is only mounted on the text tab; a completion
		// arriving after a tab switch has nowhere to land.
		return
	}
	if s.format == content.FormatMarkdown {
		// The markdown encoding stores images as markers in the raw text.
		s.text += content.ImageMarker(uri)
		s.doc = markup.Parse(s.text)
		s.savedSelection = nil
		return
	}
	img := markup.NewElement("img",
		markup.Attribute{Key: "src", Value: uri},
		markup.Attribute{Key: "style", Value: droppedImageStyle},
	)
	s.doc.AppendNode(img)
	s.text = s.doc.Serialize()
}
