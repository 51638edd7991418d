// ABOUTME: Replies the engine hands back to a chat transport
// ABOUTME: Acknowledgements, plain text and paginated info cards

package chat

import (
	"strings"
	"unicode/utf8"
)

// SectionLimit caps the characters in one card section.
const SectionLimit = 1000

// Kind says how a transport should render a Reply.
type Kind int

const (
	// KindNone means stay silent.
	KindNone Kind = iota
	// KindAck means acknowledge the message, e.g. with a reaction.
	KindAck
	// KindText is a plain text reply.
	KindText
	// KindCards is one or more info cards.
	KindCards
)

func (k Kind) String() string {
	switch k {
	case KindAck:
		return "ack"
	case KindText:
		return "text"
	case KindCards:
		return "cards"
	default:
		return "none"
	}
}

// Section is a labelled block of card text.
type Section struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Card is a titled group of sections.
type Card struct {
	Title    string    `json:"title,omitempty"`
	Sections []Section `json:"sections"`
}

// Reply is the engine's answer to one message.
type Reply struct {
	Kind  Kind
	Text  string
	Cards []Card
	// AckPrevious asks the transport to also acknowledge the author's
	// previous message, the stop half of a two-message assignment.
	AckPrevious bool
}

// None is the silent reply.
func None() Reply { return Reply{Kind: KindNone} }

// Ack acknowledges the message.
func Ack() Reply { return Reply{Kind: KindAck} }

// Text replies with s.
func Text(s string) Reply { return Reply{Kind: KindText, Text: s} }

// Cards replies with cards.
func Cards(cards ...Card) Reply { return Reply{Kind: KindCards, Cards: cards} }

// Paginate packs lines into sections of at most limit characters, one card
// per section, each section titled name. A line longer than limit gets a
// section of its own.
func Paginate(name string, lines []string, limit int) []Card {
	if limit <= 0 {
		limit = SectionLimit
	}
	var cards []Card
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		cards = append(cards, Card{Sections: []Section{{Name: name, Value: b.String()}}})
		b.Reset()
	}
	for _, line := range lines {
		entry := line + "\n"
		if b.Len() > 0 && b.Len()+len(entry) > limit {
			flush()
		}
		for len(entry) > limit {
			cut := limit
			for cut > 0 && !utf8.RuneStart(entry[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			b.WriteString(entry[:cut])
			flush()
			entry = entry[cut:]
		}
		b.WriteString(entry)
	}
	flush()
	return cards
}
