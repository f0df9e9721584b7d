package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/rencanakan/ahsmatch/internal/textnorm"
)

// Repository is the read interface the matching pipeline uses. All
// methods are safe for concurrent use. Lookups that find nothing return
// (nil, nil) or an empty slice, not an error; errors mean the catalog
// itself is unusable.
type Repository interface {
	// FindByCode returns the entry whose canonical code equals the
	// canonical form of code.
	FindByCode(ctx context.Context, code string) (*Candidate, error)

	// FindByNameExact returns the first entry whose normalized name
	// equals the already-normalized query.
	FindByNameExact(ctx context.Context, normalized string) (*Candidate, error)

	// FindCandidatesByNameTokens returns entries whose normalized
	// names contain at least one of the given tokens, in catalog
	// order.
	FindCandidatesByNameTokens(ctx context.Context, tokens []string) ([]Candidate, error)

	// FindCandidatesByCodePrefix returns entries whose canonical code
	// starts with the canonical form of prefix, in catalog order.
	FindCandidatesByCodePrefix(ctx context.Context, prefix string) ([]Candidate, error)

	// All returns every entry in catalog order.
	All(ctx context.Context) ([]Candidate, error)

	// Len reports the number of entries.
	Len() int
}

// row pairs a candidate with its precomputed normalized name.
type row struct {
	candidate  Candidate
	normalized string
}

// MemoryRepository is an in-memory Repository. Entries keep their load
// order, which makes tie-breaks between equal-scoring candidates
// deterministic.
type MemoryRepository struct {
	mu      sync.RWMutex
	rows    []row
	byCode  map[string]int
	byName  map[string][]int
	byToken map[string][]int
}

// NewMemoryRepository builds a repository over the given entries.
func NewMemoryRepository(entries []Candidate) *MemoryRepository {
	r := &MemoryRepository{}
	r.Replace(entries)
	return r
}

// Replace swaps the full entry set, rebuilding all indexes. Used by the
// reload path.
func (r *MemoryRepository) Replace(entries []Candidate) {
	rows := make([]row, 0, len(entries))
	byCode := make(map[string]int, len(entries))
	byName := make(map[string][]int, len(entries))
	byToken := make(map[string][]int)

	for _, c := range entries {
		normalized := textnorm.Normalize(c.Name)
		idx := len(rows)
		rows = append(rows, row{candidate: c, normalized: normalized})

		if code := CanonicalCode(c.Code); code != "" {
			if _, dup := byCode[code]; !dup {
				byCode[code] = idx
			}
		}
		if normalized != "" {
			byName[normalized] = append(byName[normalized], idx)
			for _, token := range strings.Split(normalized, " ") {
				rowIdxs := byToken[token]
				if n := len(rowIdxs); n > 0 && rowIdxs[n-1] == idx {
					continue
				}
				byToken[token] = append(byToken[token], idx)
			}
		}
	}

	r.mu.Lock()
	r.rows = rows
	r.byCode = byCode
	r.byName = byName
	r.byToken = byToken
	r.mu.Unlock()
}

func (r *MemoryRepository) FindByCode(ctx context.Context, code string) (*Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byCode[CanonicalCode(code)]
	if !ok {
		return nil, nil
	}
	c := r.rows[idx].candidate
	return &c, nil
}

func (r *MemoryRepository) FindByNameExact(ctx context.Context, normalized string) (*Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idxs, ok := r.byName[normalized]
	if !ok || len(idxs) == 0 {
		return nil, nil
	}
	c := r.rows[idxs[0]].candidate
	return &c, nil
}

func (r *MemoryRepository) FindCandidatesByNameTokens(ctx context.Context, tokens []string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int]bool)
	var hits []int
	for _, token := range tokens {
		for _, idx := range r.byToken[token] {
			if !seen[idx] {
				seen[idx] = true
				hits = append(hits, idx)
			}
		}
	}

	// Catalog order, regardless of which token matched first.
	sortInts(hits)

	out := make([]Candidate, 0, len(hits))
	for _, idx := range hits {
		out = append(out, r.rows[idx].candidate)
	}
	return out, nil
}

func (r *MemoryRepository) FindCandidatesByCodePrefix(ctx context.Context, prefix string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix = CanonicalCode(prefix)
	if prefix == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Candidate
	for _, rw := range r.rows {
		if strings.HasPrefix(CanonicalCode(rw.candidate.Code), prefix) {
			out = append(out, rw.candidate)
		}
	}
	return out, nil
}

func (r *MemoryRepository) All(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Candidate, len(r.rows))
	for i, rw := range r.rows {
		out[i] = rw.candidate
	}
	return out, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

func sortInts(xs []int) {
	// Insertion sort: hit lists are short and mostly ordered already.
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
