package client

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// Catalog is the local projection of the server's accounts and sheets for
// one session. Every mutation patches the projection from the server's echo,
// so no full reload is needed to stay current.
//
// Reload replaces the projection with a fresh snapshot. Patches applied
// while a reload is in flight are journaled and replayed over the snapshot,
// since the snapshot may have been read before they happened.
type Catalog struct {
	client  *Client
	session *Session

	reloads singleflight.Group

	mu        sync.RWMutex
	sheets    []*domain.Sheet
	accounts  []*domain.Account
	reloading bool
	journal   []patch
}

// patch is one idempotent change to the projection.
type patch func(st *state)

type state struct {
	sheets   []*domain.Sheet
	accounts []*domain.Account
}

func NewCatalog(c *Client, s *Session) *Catalog {
	return &Catalog{client: c, session: s}
}

// Session returns the identity the catalog acts as.
func (c *Catalog) Session() *Session { return c.session }

// Sheets returns a copy of the projected sheets.
func (c *Catalog) Sheets() []*domain.Sheet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Sheet, 0, len(c.sheets))
	for _, s := range c.sheets {
		out = append(out, s.Clone())
	}
	return out
}

// Sheet returns one projected sheet by ID.
func (c *Catalog) Sheet(id string) (*domain.Sheet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexSheet(c.sheets, id); i >= 0 {
		return c.sheets[i].Clone(), true
	}
	return nil, false
}

// Accounts returns a copy of the projected accounts. It is empty for
// sessions that may not list accounts.
func (c *Catalog) Accounts() []*domain.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

// Reload refetches everything the session can see. Concurrent calls share
// one fetch.
func (c *Catalog) Reload(ctx context.Context) error {
	_, err, _ := c.reloads.Do("reload", func() (any, error) {
		return nil, c.reload(ctx)
	})
	return err
}

func (c *Catalog) reload(ctx context.Context) error {
	c.mu.Lock()
	c.reloading = true
	c.journal = nil
	c.mu.Unlock()

	snap, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	journal := c.journal
	c.reloading = false
	c.journal = nil
	if err != nil {
		return err
	}

	for _, p := range journal {
		p(&snap)
	}
	c.sheets, c.accounts = snap.sheets, snap.accounts
	return nil
}

func (c *Catalog) fetch(ctx context.Context) (state, error) {
	if !c.session.Privileged() {
		sheets, err := c.client.MySheets(ctx, c.session)
		return state{sheets: sheets, accounts: []*domain.Account{}}, err
	}

	sheets, err := c.client.ListSheets(ctx, c.session)
	if err != nil {
		return state{}, err
	}
	accounts, err := c.client.ListAccounts(ctx, c.session)
	if err != nil {
		return state{}, err
	}
	return state{sheets: sheets, accounts: accounts}, nil
}

// apply patches the live projection and, during a reload, journals the
// patch for replay over the incoming snapshot.
func (c *Catalog) apply(p patch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := state{sheets: c.sheets, accounts: c.accounts}
	p(&st)
	c.sheets, c.accounts = st.sheets, st.accounts
	if c.reloading {
		c.journal = append(c.journal, p)
	}
}

// CreateSheet creates a sheet and appends the echoed record.
func (c *Catalog) CreateSheet(ctx context.Context, name, sheetURL string) (*domain.Sheet, error) {
	sheet, err := c.client.CreateSheet(ctx, c.session, name, sheetURL)
	if err != nil {
		return nil, err
	}
	echoed := sheet.Clone()
	c.apply(func(st *state) { st.sheets = upsertSheet(st.sheets, echoed) })
	return sheet, nil
}

// CreateAccount creates an account and appends the echoed record.
func (c *Catalog) CreateAccount(ctx context.Context, in NewAccount) (*domain.Account, error) {
	account, err := c.client.CreateAccount(ctx, c.session, in)
	if err != nil {
		return nil, err
	}
	echoed := *account
	c.apply(func(st *state) { st.accounts = upsertAccount(st.accounts, &echoed) })
	return account, nil
}

// AssignSheet assigns and adds the edge to the projected sheet.
func (c *Catalog) AssignSheet(ctx context.Context, in Assignment) (*AssignResult, error) {
	res, err := c.client.AssignSheet(ctx, c.session, in)
	if err != nil {
		return nil, err
	}
	if res.Sheet == nil {
		return res, nil
	}

	echoed := res.Sheet.Clone()
	self := c.session.Identity().AccountID
	c.apply(func(st *state) {
		i := indexSheet(st.sheets, echoed.ID)
		if i < 0 {
			// A plain User only projects its own sheets.
			if c.session.Privileged() || echoed.IsAssignedTo(self) {
				st.sheets = append(st.sheets, echoed.Clone())
			}
			return
		}
		merged := st.sheets[i].Clone()
		for _, id := range echoed.AssignedTo {
			merged.Assign(id)
		}
		st.sheets = slices.Clone(st.sheets)
		st.sheets[i] = merged
	})
	return res, nil
}

// DeleteSheet deletes a sheet and drops it from the projection.
func (c *Catalog) DeleteSheet(ctx context.Context, sheetID string) error {
	if err := c.client.DeleteSheet(ctx, c.session, sheetID); err != nil {
		return err
	}
	c.apply(func(st *state) {
		st.sheets = slices.DeleteFunc(slices.Clone(st.sheets), func(s *domain.Sheet) bool { return s.ID == sheetID })
	})
	return nil
}

func indexSheet(sheets []*domain.Sheet, id string) int {
	return slices.IndexFunc(sheets, func(s *domain.Sheet) bool { return s.ID == id })
}

func upsertSheet(sheets []*domain.Sheet, s *domain.Sheet) []*domain.Sheet {
	out := slices.Clone(sheets)
	if i := indexSheet(out, s.ID); i >= 0 {
		out[i] = s.Clone()
		return out
	}
	return append(out, s.Clone())
}

func upsertAccount(accounts []*domain.Account, a *domain.Account) []*domain.Account {
	out := slices.Clone(accounts)
	cp := *a
	if i := slices.IndexFunc(out, func(x *domain.Account) bool { return x.ID == a.ID }); i >= 0 {
		out[i] = &cp
		return out
	}
	return append(out, &cp)
}
