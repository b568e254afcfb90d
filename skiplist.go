package mana

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// WORD POSITION INDEX
// ═══════════════════════════════════════════════════════════════════════════
// MemoryIndex keeps one of these per surface word: every Position the word
// occurs at, across every document, in DocumentID-then-Offset order. Proximity
// derivation (index.go's nearestProximity) needs exactly two queries against
// this structure: "what's the nearest occurrence of word2 after this
// occurrence of word1" and "...before it". A skip list answers both in
// O(log n) without keeping the whole position list sorted by hand on every
// insert, the same express-lane idea a balanced tree gives you without the
// rotations.
//
// Only the operations proximity derivation actually calls are kept: Insert,
// FindGreaterThan, FindLessThan. There is no Delete, no Find-by-exact-key, no
// iterator — a word's position list is write-once during ingestion and only
// ever queried by neighbor, never walked end to end or mutated afterwards.
// ═══════════════════════════════════════════════════════════════════════════

const MaxHeight = 32

var (
	EOF = math.Inf(1)
	BOF = math.Inf(-1)
)

var ErrNoElementFound = errors.New("no element found")

// Position identifies one occurrence of a word: which document, and which
// token offset within it. DocumentID and Offset are float64 so BOF/EOF
// sentinels (±∞) can stand in for "no neighbor in this direction" without a
// separate found/not-found case in every comparison.
type Position struct {
	DocumentID float64
	Offset     float64
}

var (
	BOFDocument = Position{DocumentID: BOF, Offset: BOF}
	EOFDocument = Position{DocumentID: EOF, Offset: EOF}
)

// GetDocumentID returns the document ID as an int. Callers only use this on
// positions already known not to be a sentinel.
func (p *Position) GetDocumentID() int {
	return int(p.DocumentID)
}

// GetOffset returns the token offset as an int.
func (p *Position) GetOffset() int {
	return int(p.Offset)
}

// IsBefore orders positions first by DocumentID, then by Offset.
func (p *Position) IsBefore(other Position) bool {
	if p.DocumentID < other.DocumentID {
		return true
	}
	return p.DocumentID == other.DocumentID && p.Offset < other.Offset
}

// Equals reports whether two positions refer to the same document and offset.
func (p *Position) Equals(other Position) bool {
	return p.DocumentID == other.DocumentID && p.Offset == other.Offset
}

type skipNode struct {
	Key   Position
	Tower [MaxHeight]*skipNode
}

// SkipList holds every Position a single word occurs at, sorted ascending.
type SkipList struct {
	Head   *skipNode
	Height int
}

// NewSkipList returns an empty position index for one word.
func NewSkipList() *SkipList {
	return &SkipList{Head: &skipNode{}, Height: 1}
}

// search walks down from the top level, returning the exact-match node (nil
// if the key isn't present) and, at each level, the last node visited before
// the key — the "journey" Insert splices new nodes off of and FindLessThan
// reads directly.
func (sl *SkipList) search(key Position) (*skipNode, [MaxHeight]*skipNode) {
	var journey [MaxHeight]*skipNode
	current := sl.Head

	for level := sl.Height - 1; level >= 0; level-- {
		for next := current.Tower[level]; next != nil && next.Key.IsBefore(key); next = current.Tower[level] {
			current = next
		}
		journey[level] = current
	}

	next := current.Tower[0]
	if next != nil && next.Key.Equals(key) {
		return next, journey
	}
	return nil, journey
}

// FindLessThan returns the largest recorded position strictly before key, or
// BOFDocument/ErrNoElementFound if none precedes it.
func (sl *SkipList) FindLessThan(key Position) (Position, error) {
	_, journey := sl.search(key)
	predecessor := journey[0]
	if predecessor == nil || predecessor == sl.Head {
		return BOFDocument, ErrNoElementFound
	}
	return predecessor.Key, nil
}

// FindGreaterThan returns the smallest recorded position strictly after key,
// or EOFDocument/ErrNoElementFound if none follows it.
func (sl *SkipList) FindGreaterThan(key Position) (Position, error) {
	found, journey := sl.search(key)

	if found != nil {
		if found.Tower[0] != nil {
			return found.Tower[0].Key, nil
		}
		return EOFDocument, ErrNoElementFound
	}

	predecessor := journey[0]
	if predecessor != nil && predecessor.Tower[0] != nil {
		return predecessor.Tower[0].Key, nil
	}
	return EOFDocument, ErrNoElementFound
}

// Insert records key, or overwrites it in place if already present (ingestion
// never records the same document/offset pair twice in practice, but this
// keeps the structure well-defined if it ever did).
func (sl *SkipList) Insert(key Position) {
	found, journey := sl.search(key)
	if found != nil {
		found.Key = key
		return
	}

	height := sl.randomHeight()
	node := &skipNode{Key: key}
	for level := 0; level < height; level++ {
		predecessor := journey[level]
		if predecessor == nil {
			predecessor = sl.Head
		}
		node.Tower[level] = predecessor.Tower[level]
		predecessor.Tower[level] = node
	}
	if height > sl.Height {
		sl.Height = height
	}
}

// randomHeight flips a fair coin until it comes up tails, giving the usual
// geometric tower-height distribution (50% height 1, 25% height 2, ...).
func (sl *SkipList) randomHeight() int {
	height := 1
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for rng.Float64() < 0.5 && height < MaxHeight {
		height++
	}
	return height
}
