package mana

import (
	"fmt"
	"log/slog"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// SEARCH ORCHESTRATOR
// ═══════════════════════════════════════════════════════════════════════════
// spec.md §4.7: a fluent builder over {query, facet_condition, offset,
// limit} with a single terminal Execute. The branch table is driven by
// whether a query expanded to any words (W) and whether a facet condition is
// present (F); an active ordering criterion (O) additionally re-permutes the
// result by a numeric facet via the Facet Ordering component (§4.6).
//
// The builder's chaining shape (methods returning *Search so calls compose
// as s.Query(...).Limit(...).Execute()) mirrors a fluent query-builder
// pattern, generalized from boolean term matching to this core's fuzzy
// expansion pipeline.
// ═══════════════════════════════════════════════════════════════════════════

const defaultLimit = 20

// Search is the query builder and orchestrator.
type Search struct {
	index          Index
	query          string
	facetCondition FacetCondition
	offset         int
	limit          int
	log            *slog.Logger
}

// New starts a Search against index, with the reference defaults of no
// query, no facet condition, offset 0 and limit 20.
func New(index Index) *Search {
	return &Search{
		index: index,
		limit: defaultLimit,
		log:   slog.Default().With("component", "search"),
	}
}

// Query sets the free-text query string.
func (s *Search) Query(query string) *Search {
	s.query = query
	return s
}

// FacetCondition sets the facet predicate narrowing the candidate set.
func (s *Search) FacetCondition(condition FacetCondition) *Search {
	s.facetCondition = condition
	return s
}

// Offset sets how many leading results to discard before filling the page.
//
// spec.md §9 leaves this as an open question: the builder accepts offset
// but the reference implementation does not skip. This implementation
// chooses to honor it (skip offset results, then fill to limit) — the
// alternative, accepting but silently ignoring a caller-supplied field,
// reads as a bug to anyone who later notices documents_ids doesn't shift
// when offset does.
func (s *Search) Offset(offset int) *Search {
	s.offset = offset
	return s
}

// Limit sets the maximum number of documents to return.
func (s *Search) Limit(limit int) *Search {
	s.limit = limit
	return s
}

// String renders the builder's current configuration for diagnostics.
func (s *Search) String() string {
	facet := "none"
	if s.facetCondition != nil {
		facet = "set"
	}
	return fmt.Sprintf("Search{query=%q, facet=%s, offset=%d, limit=%d}", s.query, facet, s.offset, s.limit)
}

// Execute runs the query to completion per spec.md §4.7's branch table.
func (s *Search) Execute() (SearchResult, error) {
	universe, err := s.index.DocumentIds()
	if err != nil {
		return SearchResult{}, err
	}

	ordering, hasOrdering, err := resolveOrdering(s.index)
	if err != nil {
		return SearchResult{}, err
	}

	var table DerivedWordTable
	if strings.TrimSpace(s.query) != "" {
		tokens, err := GenerateQueryAutomata(s.query)
		if err != nil {
			return SearchResult{}, err
		}
		table, err = ExpandWords(s.index, tokens)
		if err != nil {
			return SearchResult{}, err
		}
	}

	var facetBitmap *Bitmap
	if s.facetCondition != nil {
		facetBitmap, err = s.facetCondition.Matches(s.index, universe)
		if err != nil {
			return SearchResult{}, err
		}
	}

	var documentIds []DocumentId
	switch {
	case len(table) == 0 && s.facetCondition == nil:
		// ¬W ∧ ¬F: every document in the snapshot.
		documentIds, err = s.collectFromSet(universe, hasOrdering, ordering)

	case len(table) == 0 && s.facetCondition != nil:
		// ¬W ∧ F: the facet bitmap alone.
		documentIds, err = s.collectFromSet(facetBitmap, hasOrdering, ordering)

	default:
		// W ∧ ¬F, or W ∧ F: MDFS over the (optionally facet-narrowed)
		// word intersection.
		candidates := Candidates(table, facetBitmap)
		documentIds, err = s.collectFromMDFS(table, candidates, hasOrdering, ordering)
	}
	if err != nil {
		return SearchResult{}, err
	}

	s.log.Debug("search executed", "query", s.query, "found", len(documentIds))

	return SearchResult{
		FoundWords:  table.FoundWords(),
		DocumentIds: documentIds,
	}, nil
}

// collectFromSet implements the two query-less branches: either a plain
// ascending walk of the document set, or a facet-ordered walk when an
// ordering criterion is active.
func (s *Search) collectFromSet(documents *Bitmap, hasOrdering bool, ordering orderingCriterion) ([]DocumentId, error) {
	if hasOrdering {
		ids, err := s.walkOrdered(documents, ordering)
		if err != nil {
			return nil, err
		}
		return applyPage(ids, s.offset, s.limit), nil
	}
	return s.takeAscending(documents), nil
}

// collectFromMDFS drives the MDFS enumerator batch by batch, optionally
// reordering each batch by the active ordering criterion, and stops once
// offset+limit results have been produced.
func (s *Search) collectFromMDFS(table DerivedWordTable, candidates *Bitmap, hasOrdering bool, ordering orderingCriterion) ([]DocumentId, error) {
	need := s.offset + s.limit
	mdfs := NewMDFS(s.index, table, candidates)

	var ordered []DocumentId
	for len(ordered) < need {
		_, batch, ok := mdfs.Next()
		if !ok {
			if err := mdfs.Err(); err != nil {
				return nil, err
			}
			break
		}

		if hasOrdering {
			ids, err := s.walkOrdered(batch, ordering)
			if err != nil {
				return nil, err
			}
			ordered = append(ordered, ids...)
		} else {
			ordered = append(ordered, ascendingIds(batch)...)
		}
	}

	return applyPage(ordered, s.offset, s.limit), nil
}

// takeAscending returns documents' ids in ascending order, trimmed to the
// offset/limit window.
func (s *Search) takeAscending(documents *Bitmap) []DocumentId {
	return applyPage(ascendingIds(documents), s.offset, s.limit)
}

// walkOrdered streams documents via the field's Facet Number Tree in the
// criterion's direction, stopping as soon as offset+limit values have been
// collected (spec.md §4.6's early-termination contract).
func (s *Search) walkOrdered(documents *Bitmap, ordering orderingCriterion) ([]DocumentId, error) {
	tree, err := s.index.FacetNumberValues(ordering.field)
	if err != nil {
		return nil, err
	}

	need := s.offset + s.limit
	var ids []DocumentId
	tree.Walk(ordering.direction, documents, func(value float64, docids *Bitmap) bool {
		ids = append(ids, ascendingIds(docids)...)
		return len(ids) < need
	})
	return ids, nil
}

// applyPage trims ids to the [offset, offset+limit) window.
func applyPage(ids []DocumentId, offset, limit int) []DocumentId {
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

func ascendingIds(bm *Bitmap) []DocumentId {
	ids := make([]DocumentId, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		ids = append(ids, it.Next())
	}
	return ids
}

// orderingCriterion is the resolved (field, direction) pair an active
// ordering criterion names.
type orderingCriterion struct {
	field     FieldId
	direction Direction
}

// resolveOrdering implements spec.md §3's "Ordering criterion": the first
// directional entry in the index's criterion list, validated against the
// facet registry.
func resolveOrdering(index Index) (orderingCriterion, bool, error) {
	for _, c := range index.Criteria() {
		direction, ok := c.directional()
		if !ok {
			continue
		}

		facetType, known := index.FacetType(c.Field)
		if !known {
			return orderingCriterion{}, false, configurationf("unknown field id")
		}
		if facetType == FacetString {
			return orderingCriterion{}, false, configurationf("criteria facet type must be a number")
		}

		return orderingCriterion{field: c.Field, direction: direction}, true, nil
	}
	return orderingCriterion{}, false, nil
}
