// Package format turns raw message text into renderable inline segments.
// Rendering is a pure function of the text and the viewer identity; the
// concatenated segment texts always reproduce the input exactly.
package format

import "regexp"

// SegmentKind discriminates the inline segment variants.
type SegmentKind int

const (
	KindText SegmentKind = iota
	KindLink
	KindMention
)

// Segment is one inline span of a message body.
type Segment struct {
	Kind SegmentKind
	Text string
	// Name is the mention target without the @ prefix.
	Name string
	// Self marks a mention of the viewer.
	Self bool
}

var (
	linkRe    = regexp.MustCompile(`https?://\S+`)
	mentionRe = regexp.MustCompile(`@(\w{1,32})`)
)

// Render splits text into text, link, and mention segments. Links take
// precedence over mentions when the two would overlap (URLs may contain @).
func Render(text, viewer string) []Segment {
	if text == "" {
		return nil
	}

	links := linkRe.FindAllStringIndex(text, -1)
	mentions := mentionRe.FindAllStringSubmatchIndex(text, -1)

	var segments []Segment
	cursor := 0

	appendText := func(end int) {
		if end > cursor {
			segments = append(segments, Segment{Kind: KindText, Text: text[cursor:end]})
		}
	}

	li, mi := 0, 0
	for li < len(links) || mi < len(mentions) {
		// Skip mentions swallowed by an earlier link or already passed.
		for mi < len(mentions) && mentions[mi][0] < cursor {
			mi++
		}
		for li < len(links) && links[li][0] < cursor {
			li++
		}

		nextLink := -1
		if li < len(links) {
			nextLink = links[li][0]
		}
		nextMention := -1
		if mi < len(mentions) {
			nextMention = mentions[mi][0]
		}
		if nextLink < 0 && nextMention < 0 {
			break
		}

		if nextLink >= 0 && (nextMention < 0 || nextLink <= nextMention) {
			match := links[li]
			appendText(match[0])
			segments = append(segments, Segment{Kind: KindLink, Text: text[match[0]:match[1]]})
			cursor = match[1]
			li++
			continue
		}

		match := mentions[mi]
		appendText(match[0])
		name := text[match[2]:match[3]]
		segments = append(segments, Segment{
			Kind: KindMention,
			Text: text[match[0]:match[1]],
			Name: name,
			Self: name == viewer,
		})
		cursor = match[1]
		mi++
	}

	appendText(len(text))
	return segments
}
