package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// handleBook reads a book the player can reach. The first reading grants its
// knowledge tag and applies its deltas; later readings change nothing.
func (e *Engine) handleBook(input string, m *world.Model, ps *state.PlayerState) outcome {
	tag, book := findBook(input, m)
	if book == nil {
		tag, book = onlyReachableBook(m, ps)
	}
	if book == nil {
		return outcome{
			narrative: "You don't have anything like that to read.",
			actions:   []string{"look around", "inventory"},
			miss:      true,
		}
	}
	if !ps.HasItem(book.Item) && !slices.Contains(visibleIDs(ps.CurrentRoom, m), book.Item) {
		return outcome{narrative: fmt.Sprintf("You don't see %s here.", book.Title), miss: true}
	}

	if ps.HasKnowledge(tag) {
		narrative := "You already know this book."
		if book.RereadNarrative != "" {
			narrative += " " + book.RereadNarrative
		}
		return outcome{narrative: narrative, actions: book.Actions}
	}

	ps.AddKnowledge(tag)
	ps.AddAwareness(book.Awareness)
	ps.AdvanceStory(book.Progress)
	ps.DrainSanity(book.SanityLoss)
	ps.RaiseFear(book.Fear)
	ps.PassTime(15)
	ps.LogEncounter("read:" + tag)

	touched, err := m.UnlockContent(tag, ps)
	if err != nil {
		e.log.Error("failed to unlock book content", "book", tag, "error", err)
	}
	e.log.Info("book read", "book", tag, "unlocked", touched)

	return outcome{narrative: book.Narrative, actions: book.Actions}
}

// findBook returns the book that best matches input, by title, keywords, or
// the name of the item it is printed in.
func findBook(input string, m *world.Model) (string, *world.Book) {
	w := m.World()
	var bestTag string
	var best *world.Book
	bestScore := 0
	for _, tag := range slices.Sorted(maps.Keys(w.Books)) {
		b := w.Books[tag]
		score := world.MatchScore(input, b.Title, tag, b.Keywords)
		if it, err := m.GetItem(b.Item); err == nil {
			score = max(score, world.MatchScore(input, it.Name, it.ID, it.Keywords))
		}
		if score > bestScore {
			bestTag, best, bestScore = tag, b, score
		}
	}
	return bestTag, best
}

func visibleIDs(roomID string, m *world.Model) []string {
	var ids []string
	for _, it := range m.VisibleItems(roomID) {
		ids = append(ids, it.ID)
	}
	return ids
}

// onlyReachableBook lets "read the book" work when there is no ambiguity.
func onlyReachableBook(m *world.Model, ps *state.PlayerState) (string, *world.Book) {
	reachable := append(slices.Clone(ps.Inventory), visibleIDs(ps.CurrentRoom, m)...)
	var tag string
	var book *world.Book
	for _, t := range slices.Sorted(maps.Keys(m.World().Books)) {
		b := m.World().Books[t]
		if !slices.Contains(reachable, b.Item) {
			continue
		}
		if book != nil {
			return "", nil
		}
		tag, book = t, b
	}
	return tag, book
}
