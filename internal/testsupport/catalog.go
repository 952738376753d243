package testsupport

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"soundmatch/internal/resolve"
)

// SearchRule answers searches whose query text contains Contains
// (case-insensitive). An empty Contains matches every query. Rules are
// evaluated in insertion order; the first match wins.
type SearchRule struct {
	Entity   resolve.EntityType
	Scope    string
	AnyScope bool
	Contains string
	Results  []resolve.Candidate
	Err      error
}

// SearchCall records one Search invocation.
type SearchCall struct {
	Query  string
	Entity resolve.EntityType
	Scope  string
	Limit  int
}

// FakeCatalog is an in-memory resolve.Catalog for tests.
type FakeCatalog struct {
	mu            sync.Mutex
	rules         []SearchRule
	members       map[string][]resolve.Candidate
	memberErrs    map[string]memberFailure
	related       map[string][]resolve.Candidate
	relatedErrs   map[string]error
	pageSize      int
	searchCalls   []SearchCall
	memberCalls   map[string]int
	relatedCalls  []string
	blockSearches chan struct{}
}

type memberFailure struct {
	afterPages int
	err        error
}

// NewFakeCatalog returns an empty catalog paging members 50 at a time.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		members:     map[string][]resolve.Candidate{},
		memberErrs:  map[string]memberFailure{},
		related:     map[string][]resolve.Candidate{},
		relatedErrs: map[string]error{},
		memberCalls: map[string]int{},
		pageSize:    50,
	}
}

// On answers searches for entity containing text, in any scope.
func (f *FakeCatalog) On(entity resolve.EntityType, contains string, results ...resolve.Candidate) *FakeCatalog {
	return f.AddRule(SearchRule{Entity: entity, AnyScope: true, Contains: contains, Results: results})
}

// OnScope answers searches for entity containing text in one scope only.
func (f *FakeCatalog) OnScope(entity resolve.EntityType, scope, contains string, results ...resolve.Candidate) *FakeCatalog {
	return f.AddRule(SearchRule{Entity: entity, Scope: scope, Contains: contains, Results: results})
}

// Fail makes searches for entity containing text return err.
func (f *FakeCatalog) Fail(entity resolve.EntityType, contains string, err error) *FakeCatalog {
	return f.AddRule(SearchRule{Entity: entity, AnyScope: true, Contains: contains, Err: err})
}

// AddRule appends a search rule.
func (f *FakeCatalog) AddRule(rule SearchRule) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule)
	return f
}

// SetMembers sets the ordered members of a container.
func (f *FakeCatalog) SetMembers(containerID string, members []resolve.Candidate) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[containerID] = members
	return f
}

// FailMembersAfter makes paging of containerID fail once pages pages were served.
func (f *FakeCatalog) FailMembersAfter(containerID string, pages int, err error) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberErrs[containerID] = memberFailure{afterPages: pages, err: err}
	return f
}

// SetPageSize changes the member page size.
func (f *FakeCatalog) SetPageSize(size int) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageSize = max(size, 1)
	return f
}

// SetRelated sets the related entities of id.
func (f *FakeCatalog) SetRelated(id string, related ...resolve.Candidate) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.related[id] = related
	return f
}

// FailRelated makes RelatedOf(id) return err.
func (f *FakeCatalog) FailRelated(id string, err error) *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relatedErrs[id] = err
	return f
}

// BlockSearches makes every search wait on the context; it returns only
// when the call is cancelled.
func (f *FakeCatalog) BlockSearches() *FakeCatalog {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockSearches = make(chan struct{})
	return f
}

// Search implements resolve.Searcher.
func (f *FakeCatalog) Search(ctx context.Context, query string, entity resolve.EntityType, scope string, limit int) ([]resolve.Candidate, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, SearchCall{Query: query, Entity: entity, Scope: scope, Limit: limit})
	block := f.blockSearches
	rules := append([]SearchRule(nil), f.rules...)
	f.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(query)
	for _, rule := range rules {
		if rule.Entity != entity {
			continue
		}
		if !rule.AnyScope && rule.Scope != scope {
			continue
		}
		if rule.Contains != "" && !strings.Contains(lower, strings.ToLower(rule.Contains)) {
			continue
		}
		if rule.Err != nil {
			return nil, rule.Err
		}
		out := append([]resolve.Candidate(nil), rule.Results...)
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out, nil
	}
	return nil, nil
}

// ListMembers implements resolve.MemberLister. Cursors are decimal offsets.
func (f *FakeCatalog) ListMembers(ctx context.Context, containerID, cursor string) (resolve.MemberPage, error) {
	if err := ctx.Err(); err != nil {
		return resolve.MemberPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	served := f.memberCalls[containerID]
	f.memberCalls[containerID] = served + 1
	if failure, ok := f.memberErrs[containerID]; ok && served >= failure.afterPages {
		return resolve.MemberPage{}, failure.err
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return resolve.MemberPage{}, err
		}
		offset = n
	}
	all := f.members[containerID]
	if offset >= len(all) {
		return resolve.MemberPage{}, nil
	}
	end := min(offset+f.pageSize, len(all))
	page := resolve.MemberPage{Items: append([]resolve.Candidate(nil), all[offset:end]...)}
	if end < len(all) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

// RelatedOf implements resolve.RelatedFinder.
func (f *FakeCatalog) RelatedOf(ctx context.Context, id string) ([]resolve.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relatedCalls = append(f.relatedCalls, id)
	if err := f.relatedErrs[id]; err != nil {
		return nil, err
	}
	return append([]resolve.Candidate(nil), f.related[id]...), nil
}

// SearchCalls returns the recorded searches.
func (f *FakeCatalog) SearchCalls() []SearchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SearchCall(nil), f.searchCalls...)
}

// MemberCalls returns how many member pages were requested for containerID.
func (f *FakeCatalog) MemberCalls(containerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberCalls[containerID]
}

// RelatedCalls returns the ids passed to RelatedOf.
func (f *FakeCatalog) RelatedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.relatedCalls...)
}

// Tracks builds n member items, the first hits of which credit artistID.
func Tracks(n, hits int, artistID string) []resolve.Candidate {
	out := make([]resolve.Candidate, n)
	for i := range out {
		out[i] = resolve.Candidate{
			ID:          "track-" + strconv.Itoa(i),
			DisplayName: "Track " + strconv.Itoa(i),
			Kind:        resolve.KindItem,
			Entity:      resolve.EntityTrack,
		}
		if i < hits {
			out[i].ContributorIDs = []string{artistID}
		} else {
			out[i].ContributorIDs = []string{"someone-else"}
		}
	}
	return out
}
