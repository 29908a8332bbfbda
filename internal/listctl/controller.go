package listctl

import (
	"context"

	"backoffice-cli/internal/api"
	"backoffice-cli/internal/model"
)

// Lister is the slice of api.Client the controller needs.
type Lister interface {
	List(ctx context.Context, resourcePath string, p api.ListParams) (api.ListResult, error)
}

// Fetch is the outcome of one list request, tagged with the seq it was
// issued under so stale responses can be discarded.
type Fetch struct {
	Seq    int
	Result api.ListResult
	Err    error
}

// Controller bridges one resource's Query to the backend list endpoint and
// owns {items, total, loading, err}.
//
// Not safe for concurrent mutation: it is designed for a single event loop
// (the bubbletea Update goroutine, or a synchronous CLI call). The closure
// returned by StartFetch only reads captured copies, so running it on a
// worker goroutine is fine.
type Controller struct {
	lister Lister
	path   string

	query     Query
	selection *Selection

	items   []model.Item
	total   int
	loading bool
	err     error

	// seq identifies the newest issued fetch; results carrying an older
	// seq are stale and must not overwrite state.
	seq        int
	everLoaded bool
}

func NewController(l Lister, resourcePath string, pageSize int) *Controller {
	return &Controller{
		lister:    l,
		path:      resourcePath,
		query:     NewQuery(pageSize),
		selection: NewSelection(),
	}
}

func (c *Controller) Query() Query          { return c.query }
func (c *Controller) Items() []model.Item   { return c.items }
func (c *Controller) Total() int            { return c.total }
func (c *Controller) Err() error            { return c.err }
func (c *Controller) Selection() *Selection { return c.selection }
func (c *Controller) Path() string          { return c.path }

// Loading is true only while the newest request is outstanding.
func (c *Controller) Loading() bool { return c.loading }

// FirstLoad reports whether nothing has been loaded yet; the UI shows a
// blocking spinner only then, refreshes render inline.
func (c *Controller) FirstLoad() bool { return !c.everLoaded }

func (c *Controller) TotalPages() int { return TotalPages(c.total, c.query.PageSize) }
func (c *Controller) CanNext() bool   { return c.query.Page < c.TotalPages() }
func (c *Controller) CanPrev() bool   { return c.query.Page > 1 }

// Query mutators. Each returns true when state changed and a refetch is
// needed. Scope changes clear the selection (the checked rows no longer
// refer to the visible set).

func (c *Controller) SetSearch(text string) bool {
	if !c.query.SetSearch(text) {
		return false
	}
	c.selection.Clear()
	return true
}

func (c *Controller) SetStatusFilter(status string) bool {
	if !c.query.SetStatusFilter(status) {
		return false
	}
	c.selection.Clear()
	return true
}

func (c *Controller) SetFilter(key, value string) bool {
	if !c.query.SetFilter(key, value) {
		return false
	}
	c.selection.Clear()
	return true
}

func (c *Controller) SetPage(n int) bool {
	if !c.query.SetPage(n, c.TotalPages()) {
		return false
	}
	c.selection.Clear()
	return true
}

func (c *Controller) NextPage() bool { return c.SetPage(c.query.Page + 1) }
func (c *Controller) PrevPage() bool { return c.SetPage(c.query.Page - 1) }

func (c *Controller) SetPageSize(n int) bool {
	if !c.query.SetPageSize(n) {
		return false
	}
	c.selection.Clear()
	return true
}

// StartFetch marks a new fetch as the current one and returns its seq plus
// a runner that performs the request. The runner captures copies only; the
// caller feeds its Fetch back through Apply.
func (c *Controller) StartFetch() (int, func(ctx context.Context) Fetch) {
	c.seq++
	c.loading = true
	seq := c.seq
	lister := c.lister
	path := c.path
	params := c.query.Params()
	return seq, func(ctx context.Context) Fetch {
		res, err := lister.List(ctx, path, params)
		return Fetch{Seq: seq, Result: res, Err: err}
	}
}

// Apply commits a fetch outcome. Stale results (an older seq) are dropped
// without touching state. refetch is true when the applied total proves the
// current page is past the end; the caller should StartFetch again after
// the page was clamped.
func (c *Controller) Apply(f Fetch) (applied bool, refetch bool) {
	if f.Seq != c.seq {
		return false, false
	}
	c.loading = false
	if f.Err != nil {
		// Keep previous items/total so the screen stays useful; the UI
		// renders the error with a retry affordance.
		c.err = f.Err
		return true, false
	}
	c.err = nil
	c.everLoaded = true
	c.items = f.Result.Items
	c.total = f.Result.Total

	visible := make([]string, len(c.items))
	for i, it := range c.items {
		visible[i] = it.ID
	}
	c.selection.Prune(visible)

	if tp := c.TotalPages(); c.query.Page > tp {
		c.query.Page = tp
		return true, true
	}
	return true, false
}

// Refresh runs a full synchronous fetch cycle, following clamp refetches.
// Used by the CLI and by mutation workflows (refresh-after-mutation).
func (c *Controller) Refresh(ctx context.Context) error {
	for i := 0; i < 2; i++ {
		_, run := c.StartFetch()
		_, refetch := c.Apply(run(ctx))
		if c.err != nil {
			return c.err
		}
		if !refetch {
			return nil
		}
	}
	return c.err
}
