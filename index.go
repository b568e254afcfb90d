package mana

import (
	"log/slog"
)

// ═══════════════════════════════════════════════════════════════════════════
// INDEX COLLABORATOR
// ═══════════════════════════════════════════════════════════════════════════
// spec.md §6 describes Index as an external collaborator this core reads
// from but never writes to: a words FST, a word->docids map, the universe of
// document ids, the ranking-rule list, the set of faceted fields, and a
// facet-value lookup. We declare it as an interface so a real on-disk index
// (or, in tests, the in-memory MemoryIndex below) can sit behind it.
//
// WordPairProximityDocids has no counterpart in spec.md's own interface
// list; MDFS (§4.5) needs per-proximity postings for a word pair and the
// spec gives this core no token-position data to derive them from on the
// fly, so we fold the question back to the collaborator, the same place
// word_docids and faceted_fields already live. The reference engine this
// core was modeled on keeps exactly this kind of table
// (word_pair_proximity_docids, CboRoaringBitmapCodec-encoded) precomputed at
// ingestion time rather than recomputed per query.
// ═══════════════════════════════════════════════════════════════════════════

// MaxProximity is the largest proximity distinguished between two words.
// Anything at or beyond this distance is folded into one final bucket, so
// that summing every bucket's postings still recovers the full candidate
// set (spec.md §4.5 property P3).
const MaxProximity = 8

// Index is the read-only view over a search index that Search, the Word
// Expander and the Candidate Engine consult.
type Index interface {
	// WordsFST returns the index's word dictionary.
	WordsFST() (*WordFST, error)

	// WordDocids returns the documents containing word, or an empty bitmap
	// if word is not in the index. A non-nil error means the underlying
	// read failed; an absent word is not itself an error.
	WordDocids(word string) (*Bitmap, error)

	// DocumentIds returns every document id known to the index.
	DocumentIds() (*Bitmap, error)

	// Criteria returns the index's ordered ranking-rule list.
	Criteria() []Criterion

	// FacetType reports the declared type of a faceted field, and whether
	// it is faceted at all.
	FacetType(field FieldId) (FacetType, bool)

	// FacetNumberValues returns the numeric facet tree for field, built
	// over its declared numeric type. Returns ErrConfiguration if field is
	// not a numeric faceted field.
	FacetNumberValues(field FieldId) (*FacetNumberTree, error)

	// WordPairProximityDocids returns the documents in which word1 and
	// word2 co-occur at exactly the given proximity. proximity ==
	// MaxProximity is the catch-all bucket for every coarser distance.
	WordPairProximityDocids(word1, word2 string, proximity uint8) (*Bitmap, error)
}

// FacetCondition is a caller-supplied predicate over a document's facet
// values, evaluated by Search.Execute; the resulting bitmap narrows the
// candidate set (spec.md §4.4) before MDFS traversal.
type FacetCondition interface {
	// Matches returns the subset of documents, among those passed in, that
	// satisfy the condition.
	Matches(index Index, documents *Bitmap) (*Bitmap, error)
}

// ═══════════════════════════════════════════════════════════════════════════
// IN-MEMORY REFERENCE INDEX
// ═══════════════════════════════════════════════════════════════════════════
// MemoryIndex is a small, complete Index built directly from documents held
// in memory. Ingestion proper is out of scope (spec.md Non-goals), but the
// core needs a concrete Index to run against, so MemoryIndex derives every
// collaborator field — the FST, the postings, the facet trees, and the
// word-pair proximities — from a batch of documents analyzed with
// AnalyzeWithConfig and positioned with a SkipList, the same structure the
// inverted index underneath this core's teacher used for phrase search.
// ═══════════════════════════════════════════════════════════════════════════

// Document is one ingestible record: a document id, its raw text fields
// (in reading order; BuildMemoryIndex analyzes each one), and its numeric
// facet values keyed by field id.
type Document struct {
	ID     DocumentId
	Text   []string
	Facets map[FieldId]float64
}

// MemoryIndex is an in-memory Index built by BuildMemoryIndex.
type MemoryIndex struct {
	fst           *WordFST
	wordDocids    map[string]*Bitmap
	wordPositions map[string]*SkipList // word -> every Position it occurs at
	documentIds   *Bitmap
	criteria      []Criterion
	facetTypes    map[FieldId]FacetType
	facetTrees    map[FieldId]*FacetNumberTree
	pairProx      map[string]*Bitmap // "w1\x00w2\x00proximity" -> docids
	log           *slog.Logger
}

// BuildMemoryIndex ingests documents into a MemoryIndex, using config to
// analyze each text field. facetFields declares which facet ids are
// numeric-faceted and should get a FacetNumberTree.
func BuildMemoryIndex(documents []Document, config AnalyzerConfig, criteria []Criterion, facetFields map[FieldId]FacetType) (*MemoryIndex, error) {
	idx := &MemoryIndex{
		wordDocids:    make(map[string]*Bitmap),
		wordPositions: make(map[string]*SkipList),
		documentIds:   NewBitmap(),
		criteria:      criteria,
		facetTypes:    facetFields,
		facetTrees:    make(map[FieldId]*FacetNumberTree),
		pairProx:      make(map[string]*Bitmap),
		log:           slog.Default().With("component", "memory_index"),
	}

	facetValues := make(map[FieldId]map[float64]*Bitmap, len(facetFields))
	for field := range facetFields {
		facetValues[field] = make(map[float64]*Bitmap)
	}

	allWords := make(map[string]struct{})
	for _, doc := range documents {
		idx.documentIds.Add(doc.ID)

		occurrences := make(map[string][]int) // word -> offsets within this document
		offset := 0
		for _, raw := range doc.Text {
			for _, word := range AnalyzeWithConfig(raw, config) {
				allWords[word] = struct{}{}
				idx.addWordDocid(word, doc.ID)
				occurrences[word] = append(occurrences[word], offset)
				idx.positionsFor(word).Insert(Position{DocumentID: float64(doc.ID), Offset: float64(offset)})
				offset++
			}
		}
		idx.recordProximities(doc.ID, occurrences)

		for field, value := range doc.Facets {
			if _, ok := facetFields[field]; !ok {
				continue
			}
			bucket, ok := facetValues[field][value]
			if !ok {
				bucket = NewBitmap()
				facetValues[field][value] = bucket
			}
			bucket.Add(doc.ID)
		}
	}

	words := make([]string, 0, len(allWords))
	for w := range allWords {
		words = append(words, w)
	}
	fst, err := BuildWordFST(words)
	if err != nil {
		return nil, err
	}
	idx.fst = fst

	for field, values := range facetValues {
		idx.facetTrees[field] = BuildFacetNumberTree(values)
	}

	idx.log.Debug("built memory index", "documents", len(documents), "words", len(words))
	return idx, nil
}

func (idx *MemoryIndex) addWordDocid(word string, doc DocumentId) {
	bm, ok := idx.wordDocids[word]
	if !ok {
		bm = NewBitmap()
		idx.wordDocids[word] = bm
	}
	bm.Add(doc)
}

// positionsFor returns word's position skip list, creating it on first use.
func (idx *MemoryIndex) positionsFor(word string) *SkipList {
	sl, ok := idx.wordPositions[word]
	if !ok {
		sl = NewSkipList()
		idx.wordPositions[word] = sl
	}
	return sl
}

// recordProximities computes, for every pair of distinct words occurring in
// doc, the proximity at which they come closest together, and records doc
// under that (word1, word2, proximity) bucket in both directions. Distance
// is measured by querying one word's position skip list for the neighbors
// (FindLessThan/FindGreaterThan) of each occurrence of the other word,
// rather than a plain offset subtraction over a flattened token list.
func (idx *MemoryIndex) recordProximities(doc DocumentId, occurrences map[string][]int) {
	words := make([]string, 0, len(occurrences))
	for w := range occurrences {
		words = append(words, w)
	}
	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			w1, w2 := words[i], words[j]
			proximity := idx.nearestProximity(doc, occurrences[w1], idx.positionsFor(w2))
			idx.addPairProximity(w1, w2, proximity, doc)
			idx.addPairProximity(w2, w1, proximity, doc)
		}
	}
}

// nearestProximity returns the smallest offset distance, within doc,
// between any offset in offsets1 and the closest occurrence recorded in
// positions2, capped at MaxProximity.
func (idx *MemoryIndex) nearestProximity(doc DocumentId, offsets1 []int, positions2 *SkipList) uint8 {
	best := MaxProximity
	for _, o := range offsets1 {
		key := Position{DocumentID: float64(doc), Offset: float64(o)}

		if after, err := positions2.FindGreaterThan(key); err == nil && after.GetDocumentID() == int(doc) {
			if d := after.GetOffset() - o; d < best {
				best = d
			}
		}
		if before, err := positions2.FindLessThan(key); err == nil && before.GetDocumentID() == int(doc) {
			if d := o - before.GetOffset(); d < best {
				best = d
			}
		}
	}
	if best > MaxProximity {
		best = MaxProximity
	}
	return uint8(best)
}

func (idx *MemoryIndex) addPairProximity(w1, w2 string, proximity uint8, doc DocumentId) {
	key := pairKey(w1, w2, proximity)
	bm, ok := idx.pairProx[key]
	if !ok {
		bm = NewBitmap()
		idx.pairProx[key] = bm
	}
	bm.Add(doc)
}

func pairKey(w1, w2 string, proximity uint8) string {
	return w1 + "\x00" + w2 + "\x00" + string(rune(proximity))
}

func (idx *MemoryIndex) WordsFST() (*WordFST, error) { return idx.fst, nil }

func (idx *MemoryIndex) WordDocids(word string) (*Bitmap, error) {
	if bm, ok := idx.wordDocids[word]; ok {
		return bm.Clone(), nil
	}
	return NewBitmap(), nil
}

func (idx *MemoryIndex) DocumentIds() (*Bitmap, error) {
	return idx.documentIds.Clone(), nil
}

func (idx *MemoryIndex) Criteria() []Criterion { return idx.criteria }

func (idx *MemoryIndex) FacetType(field FieldId) (FacetType, bool) {
	t, ok := idx.facetTypes[field]
	return t, ok
}

func (idx *MemoryIndex) FacetNumberValues(field FieldId) (*FacetNumberTree, error) {
	tree, ok := idx.facetTrees[field]
	if !ok || idx.facetTypes[field] == FacetString {
		return nil, configurationf("field %d is not a numeric faceted field", field)
	}
	return tree, nil
}

func (idx *MemoryIndex) WordPairProximityDocids(word1, word2 string, proximity uint8) (*Bitmap, error) {
	if proximity > MaxProximity {
		proximity = MaxProximity
	}
	if bm, ok := idx.pairProx[pairKey(word1, word2, proximity)]; ok {
		return bm.Clone(), nil
	}
	return NewBitmap(), nil
}
