package app

import (
	"fmt"
	"sort"
)

// PageID identifies a page in the routing table.
type PageID string

// Available pages.
const (
	PageSetup     PageID = "setup"
	PageChat      PageID = "chat"
	PageSummarise PageID = "summarise"
	PageStatus    PageID = "status"
	PageHelp      PageID = "help"
)

// Page renders one view of the session as plain text. Front ends add
// their own styling.
type Page interface {
	ID() PageID
	Title() string
	Render(s *State) string
}

// Router is the routing table of pages.
type Router struct {
	pages map[PageID]Page
	order []PageID
}

// NewRouter creates a router. Pages keep their registration order; a
// later page with the same ID replaces the earlier one.
func NewRouter(pages ...Page) *Router {
	r := &Router{pages: make(map[PageID]Page)}
	for _, p := range pages {
		r.Register(p)
	}
	return r
}

// DefaultRouter returns the router with every built-in page.
func DefaultRouter() *Router {
	return NewRouter(
		ChatPage{},
		SummarisePage{},
		StatusPage{},
		HelpPage{},
		SetupPage{},
	)
}

// Register adds or replaces a page.
func (r *Router) Register(p Page) {
	if _, exists := r.pages[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.pages[p.ID()] = p
}

// Page returns the page with the given ID.
func (r *Router) Page(id PageID) (Page, bool) {
	p, ok := r.pages[id]
	return p, ok
}

// Pages returns the registered pages in registration order.
func (r *Router) Pages() []Page {
	pages := make([]Page, 0, len(r.order))
	for _, id := range r.order {
		pages = append(pages, r.pages[id])
	}
	return pages
}

// IDs returns the registered page IDs, sorted.
func (r *Router) IDs() []PageID {
	ids := append([]PageID(nil), r.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Start returns the page a session opens on.
func (r *Router) Start(s *State) PageID {
	if s.NeedsSetup() {
		return PageSetup
	}
	return PageChat
}

// Resolve maps a requested page to the page to show. Every page except
// help is replaced by setup while the session needs configuration.
func (r *Router) Resolve(s *State, id PageID) PageID {
	if s.NeedsSetup() && id != PageHelp {
		return PageSetup
	}
	return id
}

// Render renders the resolved page.
func (r *Router) Render(s *State, id PageID) (string, error) {
	id = r.Resolve(s, id)
	p, ok := r.pages[id]
	if !ok {
		return "", fmt.Errorf("unknown page %q", id)
	}
	return p.Render(s), nil
}
