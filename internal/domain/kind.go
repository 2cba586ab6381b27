package domain

import (
	"fmt"
	"strings"
)

// Kind is the category of a relationship
type Kind string

const (
	KindLove   Kind = "love"
	KindHate   Kind = "hate"
	KindFriend Kind = "friend"
)

// Kinds lists every supported relationship kind in display order
var Kinds = []Kind{KindLove, KindHate, KindFriend}

var kindColors = map[Kind]string{
	KindLove:   "#e41b1b",
	KindHate:   "#000000",
	KindFriend: "#9e9e9e",
}

var kindSymbols = map[Kind]string{
	KindLove:   "❤️",
	KindHate:   "♠️",
	KindFriend: "♦️",
}

// ParseKind converts a string to a Kind, rejecting anything outside the three categories
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown relationship kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the enumerated kinds
func (k Kind) Valid() bool {
	_, ok := kindColors[k]
	return ok
}

// Color returns the hex colour used to draw edges of this kind
func (k Kind) Color() string {
	return kindColors[k]
}

// Symbol returns the glyph shown in tooltips, "?" for unknown kinds
func (k Kind) Symbol() string {
	if s, ok := kindSymbols[k]; ok {
		return s
	}
	return "?"
}

func (k Kind) String() string {
	return string(k)
}
