// Package memory is an in-process entity store with the same constraints as
// the Postgres schema: unique emails and tickers (case-insensitive), one
// position per (holder, instrument) pair and idempotent back-reference links.
// Transactions are serialized and each one works on its own copy of the
// state, swapped in on commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
)

type linkKey struct {
	ownerID    int
	positionID int
}

type data struct {
	nextID      int
	holders     map[int]models.Holder
	instruments map[int]models.Instrument
	positions   map[int]models.Position
	addresses   map[int]models.Address
	roles       []models.RoleGrant
	links       map[models.LinkSide]map[linkKey]struct{}
}

func newData() *data {
	return &data{
		holders:     map[int]models.Holder{},
		instruments: map[int]models.Instrument{},
		positions:   map[int]models.Position{},
		addresses:   map[int]models.Address{},
		links: map[models.LinkSide]map[linkKey]struct{}{
			models.HolderSide:     {},
			models.InstrumentSide: {},
		},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextID = d.nextID
	for k, v := range d.holders {
		c.holders[k] = *detachHolder(v)
	}
	for k, v := range d.instruments {
		c.instruments[k] = v
	}
	for k, v := range d.positions {
		c.positions[k] = v
	}
	for k, v := range d.addresses {
		c.addresses[k] = v
	}
	c.roles = append([]models.RoleGrant(nil), d.roles...)
	for side, set := range d.links {
		for k := range set {
			c.links[side][k] = struct{}{}
		}
	}
	return c
}

func (d *data) id() int {
	d.nextID++
	return d.nextID
}

// DB holds the committed state shared by every repository of one memory
// store.
type DB struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *data
	now  func() time.Time
}

func New() *DB {
	return &DB{data: newData(), now: time.Now}
}

// NewStore returns a fresh, empty entity store.
func NewStore() *repositories.Store {
	return New().Store()
}

func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Transactor:  db,
		Holders:     &holderRepo{db: db},
		Instruments: &instrumentRepo{db: db},
		Positions:   &positionRepo{db: db},
		Addresses:   &addressRepo{db: db},
		Roles:       &roleRepo{db: db},
		Links:       &linkRepo{db: db},
	}
}

// memTx is the working copy of one transaction. It satisfies pgx.Tx only so
// it can travel through the repository signatures; none of the pgx methods
// are called on it.
type memTx struct {
	pgx.Tx
	data *data
}

// WithTx serializes transactions. fn works on a private copy of the store
// that replaces the committed state only when fn succeeds, so readers
// outside the transaction never see its writes.
func (db *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	tx := &memTx{data: db.data.clone()}
	db.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	db.data = tx.data
	db.mu.Unlock()
	return nil
}

func txData(tx pgx.Tx) *data {
	if t, ok := tx.(*memTx); ok && t != nil {
		return t.data
	}
	return nil
}

// read runs fn against the transaction's copy, or against the committed
// state when tx is nil.
func (db *DB) read(tx pgx.Tx, fn func(d *data)) {
	if d := txData(tx); d != nil {
		fn(d)
		return
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(db.data)
}

// write outside a transaction commits on its own and waits for any open
// transaction to finish first.
func (db *DB) write(tx pgx.Tx, fn func(d *data) error) error {
	if d := txData(tx); d != nil {
		return fn(d)
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.data)
}

type holderRepo struct{ db *DB }

func (r *holderRepo) GetByID(_ context.Context, id int, tx pgx.Tx) (*models.Holder, error) {
	var found *models.Holder
	r.db.read(tx, func(d *data) {
		if h, ok := d.holders[id]; ok {
			found = detachHolder(h)
		}
	})
	return found, nil
}

func (r *holderRepo) GetByEmail(_ context.Context, email string, tx pgx.Tx) (*models.Holder, error) {
	var found *models.Holder
	r.db.read(tx, func(d *data) {
		found = findHolderByEmail(d, email)
	})
	return found, nil
}

func findHolderByEmail(d *data, email string) *models.Holder {
	for _, h := range d.holders {
		if strings.EqualFold(h.Email, email) {
			return detachHolder(h)
		}
	}
	return nil
}

// detachHolder copies the address pointer so callers never alias stored state.
func detachHolder(h models.Holder) *models.Holder {
	if h.AddressID != nil {
		id := *h.AddressID
		h.AddressID = &id
	}
	return &h
}

func (r *holderRepo) Create(_ context.Context, h *models.Holder, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		if findHolderByEmail(d, h.Email) != nil {
			return &utils.ConflictError{Kind: utils.KindHolder, Key: h.Email}
		}
		h.ID = d.id()
		h.CreatedAt = r.db.now()
		h.UpdatedAt = h.CreatedAt
		d.holders[h.ID] = *detachHolder(*h)
		return nil
	})
}

func (r *holderRepo) Update(_ context.Context, h *models.Holder, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		stored, ok := d.holders[h.ID]
		if !ok {
			return utils.NewNotFoundError(utils.KindHolder, h.ID)
		}
		if other := findHolderByEmail(d, h.Email); other != nil && other.ID != h.ID {
			return &utils.ConflictError{Kind: utils.KindHolder, Key: h.Email}
		}
		stored.Email = h.Email
		stored.FirstName = h.FirstName
		stored.LastName = h.LastName
		stored.UpdatedAt = r.db.now()
		d.holders[h.ID] = stored
		h.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r *holderRepo) SetAddress(_ context.Context, holderID, addressID int, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		stored, ok := d.holders[holderID]
		if !ok {
			return utils.NewNotFoundError(utils.KindHolder, holderID)
		}
		if _, ok := d.addresses[addressID]; !ok {
			return fmt.Errorf("address %d does not exist", addressID)
		}
		for _, h := range d.holders {
			if h.ID != holderID && h.AddressID != nil && *h.AddressID == addressID {
				return &utils.ConflictError{Kind: utils.KindAddress, Key: fmt.Sprint(addressID)}
			}
		}
		id := addressID
		stored.AddressID = &id
		stored.UpdatedAt = r.db.now()
		d.holders[holderID] = stored
		return nil
	})
}

type instrumentRepo struct{ db *DB }

func (r *instrumentRepo) GetAll(_ context.Context) ([]models.Instrument, error) {
	var instruments []models.Instrument
	r.db.read(nil, func(d *data) {
		for _, i := range d.instruments {
			instruments = append(instruments, i)
		}
	})
	sort.Slice(instruments, func(a, b int) bool { return instruments[a].Ticker < instruments[b].Ticker })
	return instruments, nil
}

func (r *instrumentRepo) GetByID(_ context.Context, id int, tx pgx.Tx) (*models.Instrument, error) {
	var found *models.Instrument
	r.db.read(tx, func(d *data) {
		if i, ok := d.instruments[id]; ok {
			found = &i
		}
	})
	return found, nil
}

func (r *instrumentRepo) GetByTicker(_ context.Context, ticker string, tx pgx.Tx) (*models.Instrument, error) {
	var found *models.Instrument
	r.db.read(tx, func(d *data) {
		found = findInstrumentByTicker(d, ticker)
	})
	return found, nil
}

func findInstrumentByTicker(d *data, ticker string) *models.Instrument {
	for _, i := range d.instruments {
		if strings.EqualFold(i.Ticker, ticker) {
			return &i
		}
	}
	return nil
}

func (r *instrumentRepo) Create(_ context.Context, i *models.Instrument, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		if findInstrumentByTicker(d, i.Ticker) != nil {
			return &utils.ConflictError{Kind: utils.KindInstrument, Key: i.Ticker}
		}
		i.ID = d.id()
		i.CreatedAt = r.db.now()
		i.UpdatedAt = i.CreatedAt
		d.instruments[i.ID] = *i
		return nil
	})
}

func (r *instrumentRepo) Update(_ context.Context, i *models.Instrument, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		stored, ok := d.instruments[i.ID]
		if !ok {
			return utils.NewNotFoundError(utils.KindInstrument, i.Ticker)
		}
		stored.Name = i.Name
		stored.Price = i.Price
		stored.Description = i.Description
		stored.UpdatedAt = r.db.now()
		d.instruments[i.ID] = stored
		i.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

type positionRepo struct{ db *DB }

func (r *positionRepo) GetByID(_ context.Context, id int, tx pgx.Tx) (*models.Position, error) {
	var found *models.Position
	r.db.read(tx, func(d *data) {
		if p, ok := d.positions[id]; ok {
			found = &p
		}
	})
	return found, nil
}

func (r *positionRepo) GetByHolderAndInstrument(_ context.Context, holderID, instrumentID int, tx pgx.Tx) (*models.Position, error) {
	var found *models.Position
	r.db.read(tx, func(d *data) {
		found = findPosition(d, holderID, instrumentID)
	})
	return found, nil
}

func findPosition(d *data, holderID, instrumentID int) *models.Position {
	for _, p := range d.positions {
		if p.HolderID == holderID && p.InstrumentID == instrumentID {
			return &p
		}
	}
	return nil
}

func (r *positionRepo) GetByHolderWithInstrument(_ context.Context, holderID int, tx pgx.Tx) ([]models.Position, error) {
	var positions []models.Position
	r.db.read(tx, func(d *data) {
		for _, p := range d.positions {
			if p.HolderID != holderID {
				continue
			}
			i := d.instruments[p.InstrumentID]
			p.Instrument = &i
			positions = append(positions, p)
		}
	})
	sort.Slice(positions, func(a, b int) bool { return positions[a].ID < positions[b].ID })
	return positions, nil
}

func (r *positionRepo) GetAll(_ context.Context, tx pgx.Tx) ([]models.Position, error) {
	var positions []models.Position
	r.db.read(tx, func(d *data) {
		for _, p := range d.positions {
			positions = append(positions, p)
		}
	})
	sort.Slice(positions, func(a, b int) bool { return positions[a].ID < positions[b].ID })
	return positions, nil
}

func (r *positionRepo) Create(_ context.Context, p *models.Position, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		if _, ok := d.holders[p.HolderID]; !ok {
			return fmt.Errorf("holder %d does not exist", p.HolderID)
		}
		if _, ok := d.instruments[p.InstrumentID]; !ok {
			return fmt.Errorf("instrument %d does not exist", p.InstrumentID)
		}
		if findPosition(d, p.HolderID, p.InstrumentID) != nil {
			return &utils.ConflictError{
				Kind: utils.KindPosition,
				Key:  fmt.Sprintf("holder=%d instrument=%d", p.HolderID, p.InstrumentID),
			}
		}
		p.ID = d.id()
		p.CreatedAt = r.db.now()
		p.UpdatedAt = p.CreatedAt
		stored := *p
		stored.Holder = nil
		stored.Instrument = nil
		d.positions[p.ID] = stored
		return nil
	})
}

func (r *positionRepo) UpdateShares(_ context.Context, p *models.Position, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		stored, ok := d.positions[p.ID]
		if !ok {
			return utils.NewNotFoundError(utils.KindPosition, p.ID)
		}
		stored.Shares = p.Shares
		stored.UpdatedAt = r.db.now()
		d.positions[p.ID] = stored
		p.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r *positionRepo) Delete(_ context.Context, id int, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		if _, ok := d.positions[id]; !ok {
			return utils.NewNotFoundError(utils.KindPosition, id)
		}
		delete(d.positions, id)
		// Same effect as ON DELETE CASCADE on the link tables.
		for _, set := range d.links {
			for k := range set {
				if k.positionID == id {
					delete(set, k)
				}
			}
		}
		return nil
	})
}

type addressRepo struct{ db *DB }

func (r *addressRepo) GetByID(_ context.Context, id int, tx pgx.Tx) (*models.Address, error) {
	var found *models.Address
	r.db.read(tx, func(d *data) {
		if a, ok := d.addresses[id]; ok {
			found = &a
		}
	})
	return found, nil
}

func (r *addressRepo) Create(_ context.Context, a *models.Address, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		a.ID = d.id()
		d.addresses[a.ID] = *a
		return nil
	})
}

func (r *addressRepo) Update(_ context.Context, a *models.Address, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		if _, ok := d.addresses[a.ID]; !ok {
			return utils.NewNotFoundError(utils.KindAddress, a.ID)
		}
		d.addresses[a.ID] = *a
		return nil
	})
}

type roleRepo struct{ db *DB }

func (r *roleRepo) GetByEmail(_ context.Context, email string, tx pgx.Tx) ([]models.RoleGrant, error) {
	var grants []models.RoleGrant
	r.db.read(tx, func(d *data) {
		for _, g := range d.roles {
			if strings.EqualFold(g.Email, email) {
				grants = append(grants, g)
			}
		}
	})
	return grants, nil
}

func (r *roleRepo) Grant(_ context.Context, g *models.RoleGrant, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		for _, existing := range d.roles {
			if strings.EqualFold(existing.Email, g.Email) && existing.Role == g.Role {
				g.ID = existing.ID
				g.CreatedAt = existing.CreatedAt
				return nil
			}
		}
		g.ID = d.id()
		g.CreatedAt = r.db.now()
		d.roles = append(d.roles, *g)
		return nil
	})
}

type linkRepo struct{ db *DB }

func (r *linkRepo) Link(_ context.Context, side models.LinkSide, ownerID, positionID int, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		set, ok := d.links[side]
		if !ok {
			return fmt.Errorf("unknown link side %q", side)
		}
		if _, ok := d.positions[positionID]; !ok {
			return fmt.Errorf("position %d does not exist", positionID)
		}
		set[linkKey{ownerID: ownerID, positionID: positionID}] = struct{}{}
		return nil
	})
}

func (r *linkRepo) Unlink(_ context.Context, side models.LinkSide, positionID int, tx pgx.Tx) error {
	return r.db.write(tx, func(d *data) error {
		set, ok := d.links[side]
		if !ok {
			return fmt.Errorf("unknown link side %q", side)
		}
		for k := range set {
			if k.positionID == positionID {
				delete(set, k)
			}
		}
		return nil
	})
}

func (r *linkRepo) PositionIDs(_ context.Context, side models.LinkSide, ownerID int, tx pgx.Tx) ([]int, error) {
	var ids []int
	var err error
	r.db.read(tx, func(d *data) {
		set, ok := d.links[side]
		if !ok {
			err = fmt.Errorf("unknown link side %q", side)
			return
		}
		for k := range set {
			if k.ownerID == ownerID {
				ids = append(ids, k.positionID)
			}
		}
	})
	sort.Ints(ids)
	return ids, err
}

func (r *linkRepo) All(_ context.Context, side models.LinkSide, tx pgx.Tx) ([]models.Link, error) {
	var links []models.Link
	var err error
	r.db.read(tx, func(d *data) {
		set, ok := d.links[side]
		if !ok {
			err = fmt.Errorf("unknown link side %q", side)
			return
		}
		for k := range set {
			links = append(links, models.Link{Side: side, OwnerID: k.ownerID, PositionID: k.positionID})
		}
	})
	sort.Slice(links, func(a, b int) bool { return links[a].PositionID < links[b].PositionID })
	return links, err
}
