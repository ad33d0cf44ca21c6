// Package accesskey implements the edit-key gate that decides whether a
// visitor sees a card's entry form. The grant lives in client-scoped
// storage (the HTTP layer backs it with cookies), so this is a
// convenience gate, not a security boundary: the key travels in the URL
// and is readable by the client.
package accesskey

import "strings"

// State is the visitor's gate state for one card.
type State int

const (
	// Locked hides the form.
	Locked State = iota
	// Unlocked shows the form.
	Unlocked
	// PermanentlyClosed hides the form and blocks all future automatic
	// unlocks on this client, even with a valid key.
	PermanentlyClosed
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case PermanentlyClosed:
		return "closed"
	default:
		return "locked"
	}
}

// Store is the client-scoped key/value storage the gate persists into.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Gate evaluates and records edit-key grants against a Store.
type Gate struct {
	store Store
}

func New(store Store) *Gate { return &Gate{store: store} }

func keyName(cardID string) string    { return "key-" + cardID }
func closedName(cardID string) string { return "closed-" + cardID }

// Resolve applies the gate transitions for a page visit. urlKey is the
// key query parameter (may be empty), editKey the card's stored secret.
// stripKey reports whether the key must be removed from the visible URL
// (granted keys and keys on closed cards leak through shared links and
// history otherwise).
func (g *Gate) Resolve(cardID, urlKey, editKey string) (state State, stripKey bool) {
	if cardID == "" {
		return Locked, false
	}

	if _, closed := g.store.Get(closedName(cardID)); closed {
		return PermanentlyClosed, urlKey != ""
	}

	if saved, ok := g.store.Get(keyName(cardID)); ok && editKey != "" && saved == editKey {
		return Unlocked, urlKey != ""
	}

	if urlKey != "" && editKey != "" && urlKey == editKey {
		g.store.Set(keyName(cardID), urlKey)
		return Unlocked, true
	}

	return Locked, false
}

// Close discards the grant and records the permanent closed marker.
// Called after the visitor submits an entry or dismisses the form.
func (g *Gate) Close(cardID string) {
	if strings.TrimSpace(cardID) == "" {
		return
	}
	g.store.Delete(keyName(cardID))
	g.store.Set(closedName(cardID), "1")
}
