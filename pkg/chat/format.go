// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

// Package chat formats colour-coded chat messages.
//
// Messages use the section sign followed by one code character: §0 to §f
// pick a colour, §l §o §n §m toggle bold, italic, underline and
// strikethrough, and §r resets. Authors usually type & instead of §; Format
// converts between the two.
package chat

import (
	"strings"
	"unicode/utf8"
)

const (
	// SectionSign introduces a formatting code in rendered messages.
	SectionSign = '§'
	// AltCode is the author-friendly stand-in for SectionSign.
	AltCode = '&'
)

// ANSI escape code constants
const (
	ansiReset         = "\x1b[0m"
	ansiBold          = "\x1b[1m"
	ansiItalic        = "\x1b[3m"
	ansiUnderline     = "\x1b[4m"
	ansiStrikethrough = "\x1b[9m"
)

// colourToANSI maps palette codes to the nearest ANSI colour.
var colourToANSI = map[rune]string{
	'0': "\x1b[30m", // black
	'1': "\x1b[34m", // dark blue
	'2': "\x1b[32m", // dark green
	'3': "\x1b[36m", // dark aqua
	'4': "\x1b[31m", // dark red
	'5': "\x1b[35m", // dark purple
	'6': "\x1b[33m", // gold
	'7': "\x1b[37m", // gray
	'8': "\x1b[90m", // dark gray
	'9': "\x1b[94m", // blue
	'a': "\x1b[92m", // green
	'b': "\x1b[96m", // aqua
	'c': "\x1b[91m", // red
	'd': "\x1b[95m", // light purple
	'e': "\x1b[93m", // yellow
	'f': "\x1b[97m", // white
}

// Format converts every & in msg to §.
func Format(msg string) string {
	return strings.ReplaceAll(msg, string(AltCode), string(SectionSign))
}

// Strip removes formatting codes introduced by either § or &. A marker not
// followed by a known code is kept.
func Strip(msg string) string {
	return parse(msg, true).Plain()
}

// ToANSI renders the § codes in msg as ANSI escapes for a terminal.
func ToANSI(msg string) string {
	return Parse(msg).RenderANSI()
}

// StyledText is a message split into uniformly styled runs.
type StyledText struct {
	segments []segment
}

type segment struct {
	text  string
	style style
}

type style struct {
	bold          bool
	italic        bool
	underline     bool
	strikethrough bool
	colour        string // ANSI colour code or empty
}

func (s style) plain() bool {
	return s == style{}
}

// Parse splits msg at its § codes.
func Parse(msg string) StyledText {
	return parse(msg, false)
}

func parse(msg string, acceptAlt bool) StyledText {
	var (
		st   StyledText
		cur  style
		text strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			st.segments = append(st.segments, segment{text: text.String(), style: cur})
			text.Reset()
		}
	}

	for i := 0; i < len(msg); {
		r, size := utf8.DecodeRuneInString(msg[i:])
		if r == SectionSign || (acceptAlt && r == AltCode) {
			if code, codeSize := utf8.DecodeRuneInString(msg[i+size:]); codeSize > 0 {
				if next, ok := apply(cur, code); ok {
					flush()
					cur = next
					i += size + codeSize
					continue
				}
			}
		}
		text.WriteRune(r)
		i += size
	}
	flush()
	return st
}

// apply returns s changed by code, or false when code is not a formatting
// code. A colour code clears the other styles.
func apply(s style, code rune) (style, bool) {
	if code >= 'A' && code <= 'Z' {
		code += 'a' - 'A'
	}
	if c, ok := colourToANSI[code]; ok {
		return style{colour: c}, true
	}
	switch code {
	case 'l':
		s.bold = true
	case 'o':
		s.italic = true
	case 'n':
		s.underline = true
	case 'm':
		s.strikethrough = true
	case 'k':
		// Obfuscated text has no terminal equivalent.
	case 'r':
		return style{}, true
	default:
		return s, false
	}
	return s, true
}

// Plain returns the text without styling.
func (st StyledText) Plain() string {
	var buf strings.Builder
	for _, seg := range st.segments {
		buf.WriteString(seg.text)
	}
	return buf.String()
}

// RenderANSI renders the styled text to ANSI escape codes. Every styled run
// is closed with a reset.
func (st StyledText) RenderANSI() string {
	var buf strings.Builder
	for _, seg := range st.segments {
		renderSegmentANSI(&buf, seg)
	}
	return buf.String()
}

func renderSegmentANSI(buf *strings.Builder, seg segment) {
	if seg.style.plain() {
		buf.WriteString(seg.text)
		return
	}

	if seg.style.colour != "" {
		buf.WriteString(seg.style.colour)
	}
	if seg.style.bold {
		buf.WriteString(ansiBold)
	}
	if seg.style.italic {
		buf.WriteString(ansiItalic)
	}
	if seg.style.underline {
		buf.WriteString(ansiUnderline)
	}
	if seg.style.strikethrough {
		buf.WriteString(ansiStrikethrough)
	}

	buf.WriteString(seg.text)
	buf.WriteString(ansiReset)
}
