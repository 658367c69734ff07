package logistics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

// memState copia completa de las tablas; una transacción trabaja sobre un clon.
type memState struct {
	pallets     map[string]entity.Pallet
	loads       map[string]entity.ShippingLoad
	memberships map[string]entity.LoadMembership
	releases    []entity.ReleaseRequest
	shipped     []entity.ShippedPalletRecord
	orders      []entity.PurchaseOrder
}

func newMemState() *memState {
	return &memState{
		pallets:     map[string]entity.Pallet{},
		loads:       map[string]entity.ShippingLoad{},
		memberships: map[string]entity.LoadMembership{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.pallets {
		c.pallets[k] = v
	}
	for k, v := range s.loads {
		c.loads[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	c.releases = append([]entity.ReleaseRequest(nil), s.releases...)
	c.shipped = append([]entity.ShippedPalletRecord(nil), s.shipped...)
	c.orders = append([]entity.PurchaseOrder(nil), s.orders...)
	return c
}

// memStore base en memoria. El mutex global serializa transacciones, como lo harían los
// bloqueos de fila sobre la misma carga o el mismo pallet.
type memStore struct {
	mu    sync.Mutex
	state *memState
	fail  error // si no es nil, el commit falla con este error
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (s *memStore) Run(ctx context.Context, fn func(uow UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	if err := fn(&memUow{st: st}); err != nil {
		return err
	}
	if s.fail != nil {
		return s.fail
	}
	s.state = st
	return nil
}

// snapshot lectura directa del estado confirmado (aserciones de tests).
func (s *memStore) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *memStore) palletRepo() *memPallets {
	return &memPallets{base{store: s}}
}

func (s *memStore) loadRepo() *memLoads {
	return &memLoads{base{store: s}}
}

func (s *memStore) membershipRepo() *memMembers {
	return &memMembers{base{store: s}}
}

func (s *memStore) releaseRepo() *memReleases {
	return &memReleases{base{store: s}}
}

func (s *memStore) shippedRepo() *memShipped {
	return &memShipped{base{store: s}}
}

func (s *memStore) orderRepo() *memOrders {
	return &memOrders{base{store: s}}
}

func (s *memStore) seedPallet(p entity.Pallet) {
	s.state.pallets[p.ID] = p
}

func (s *memStore) seedOrder(o entity.PurchaseOrder) {
	s.state.orders = append(s.state.orders, o)
}

type memUow struct{ st *memState }

func (u *memUow) Pallets() repository.PalletRepository {
	return &memPallets{base{st: u.st}}
}

func (u *memUow) Loads() repository.LoadRepository {
	return &memLoads{base{st: u.st}}
}

func (u *memUow) Memberships() repository.MembershipRepository {
	return &memMembers{base{st: u.st}}
}

func (u *memUow) Releases() repository.ReleaseRequestRepository {
	return &memReleases{base{st: u.st}}
}

func (u *memUow) Shipped() repository.ShippedPalletRepository {
	return &memShipped{base{st: u.st}}
}

func (u *memUow) Savepoint(ctx context.Context, fn func(uow UnitOfWork) error) error {
	snap := u.st.clone()
	if err := fn(u); err != nil {
		*u.st = *snap
		return err
	}
	return nil
}

// base resuelve el estado: el de la transacción o el confirmado bajo el mutex.
type base struct {
	store *memStore
	st    *memState
}

func (b base) with(fn func(st *memState)) {
	if b.st != nil {
		fn(b.st)
		return
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	fn(b.store.state)
}

type memPallets struct{ base }

func (r *memPallets) Create(ctx context.Context, p *entity.Pallet) error {
	r.with(func(st *memState) { st.pallets[p.ID] = *p })
	return nil
}

func (r *memPallets) GetByID(ctx context.Context, id string) (*entity.Pallet, error) {
	var out *entity.Pallet
	r.with(func(st *memState) {
		if p, ok := st.pallets[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r *memPallets) GetForUpdate(ctx context.Context, id string) (*entity.Pallet, error) {
	return r.GetByID(ctx, id)
}

func (r *memPallets) ListAvailable(ctx context.Context, f entity.PalletFilter, limit, offset int) ([]*entity.Pallet, error) {
	var out []*entity.Pallet
	r.with(func(st *memState) {
		members := map[string]bool{}
		for _, m := range st.memberships {
			members[m.PalletID] = true
		}
		for _, p := range st.pallets {
			if p.Status != entity.PalletStatusAvailable || members[p.ID] {
				continue
			}
			if !contains(p.ProductCode, f.ProductCode) || !contains(p.Description, f.Description) ||
				!contains(p.Lot, f.Lot) || !contains(p.Unit, f.Unit) ||
				!(contains(p.SalesOrderRef, f.OrderRef) || contains(p.CustomerLot, f.OrderRef)) {
				continue
			}
			p := p
			out = append(out, &p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func contains(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *memPallets) UpdateStatus(ctx context.Context, ids []string, status string) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for _, id := range ids {
			if p, ok := st.pallets[id]; ok {
				p.Status = status
				st.pallets[id] = p
				n++
			}
		}
	})
	return n, nil
}

func (r *memPallets) Release(ctx context.Context, ids []string) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for _, id := range ids {
			if p, ok := st.pallets[id]; ok {
				p.Status = entity.PalletStatusAvailable
				p.ReleaseDate = nil
				st.pallets[id] = p
				n++
			}
		}
	})
	return n, nil
}

func (r *memPallets) SetReleaseDate(ctx context.Context, id string, date *time.Time) error {
	r.with(func(st *memState) {
		if p, ok := st.pallets[id]; ok {
			p.ReleaseDate = date
			st.pallets[id] = p
		}
	})
	return nil
}

func (r *memPallets) UpsertProduced(ctx context.Context, p *entity.Pallet) (bool, error) {
	created := false
	r.with(func(st *memState) {
		cur, ok := st.pallets[p.ID]
		if !ok {
			st.pallets[p.ID] = *p
			created = true
			return
		}
		next := *p
		next.Status = cur.Status
		next.ReleaseDate = cur.ReleaseDate
		next.CreatedAt = cur.CreatedAt
		next.IsVirtual = false
		st.pallets[p.ID] = next
	})
	return created, nil
}

type memLoads struct{ base }

func (r *memLoads) Create(ctx context.Context, l *entity.ShippingLoad) error {
	var err error
	r.with(func(st *memState) {
		for _, cur := range st.loads {
			if cur.LoadNumber == l.LoadNumber {
				err = domain.NewConflictError("carga", l.LoadNumber)
				return
			}
		}
		st.loads[l.ID] = *l
	})
	return err
}

func (r *memLoads) GetByID(ctx context.Context, id string) (*entity.ShippingLoad, error) {
	var out *entity.ShippingLoad
	r.with(func(st *memState) {
		if l, ok := st.loads[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *memLoads) GetForUpdate(ctx context.Context, id string) (*entity.ShippingLoad, error) {
	return r.GetByID(ctx, id)
}

func (r *memLoads) List(ctx context.Context, status string, limit, offset int) ([]*entity.ShippingLoad, error) {
	var out []*entity.ShippingLoad
	r.with(func(st *memState) {
		for _, l := range st.loads {
			if status == "" || l.Status == status {
				l := l
				out = append(out, &l)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].LoadNumber < out[j].LoadNumber })
	return out, nil
}

func (r *memLoads) UpdateStatus(ctx context.Context, id, status string) error {
	r.with(func(st *memState) {
		l := st.loads[id]
		l.Status = status
		st.loads[id] = l
	})
	return nil
}

func (r *memLoads) UpdateRelease(ctx context.Context, id, number, doc string) error {
	r.with(func(st *memState) {
		l := st.loads[id]
		l.ReleaseNumber, l.ReleaseDocument = number, doc
		st.loads[id] = l
	})
	return nil
}

func (r *memLoads) RecountPallets(ctx context.Context, id string) (int, error) {
	n := 0
	r.with(func(st *memState) {
		for _, m := range st.memberships {
			if m.LoadID == id {
				n++
			}
		}
		l := st.loads[id]
		l.TotalPallets = n
		st.loads[id] = l
	})
	return n, nil
}

func (r *memLoads) Delete(ctx context.Context, id string) error {
	r.with(func(st *memState) { delete(st.loads, id) })
	return nil
}

type memMembers struct{ base }

func (r *memMembers) Create(ctx context.Context, m *entity.LoadMembership) error {
	var err error
	r.with(func(st *memState) {
		for _, cur := range st.memberships {
			if cur.PalletID == m.PalletID {
				err = domain.NewAlreadyAssignedError(m.PalletID)
				return
			}
		}
		st.memberships[m.ID] = *m
	})
	return err
}

func (r *memMembers) GetByID(ctx context.Context, id string) (*entity.LoadMembership, error) {
	var out *entity.LoadMembership
	r.with(func(st *memState) {
		if m, ok := st.memberships[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *memMembers) ListByIDs(ctx context.Context, ids []string) ([]*entity.LoadMembership, error) {
	var out []*entity.LoadMembership
	r.with(func(st *memState) {
		for _, id := range ids {
			if m, ok := st.memberships[id]; ok {
				out = append(out, &m)
			}
		}
	})
	return out, nil
}

func (r *memMembers) ExistsForPallet(ctx context.Context, palletID string) (bool, error) {
	found := false
	r.with(func(st *memState) {
		for _, m := range st.memberships {
			if m.PalletID == palletID {
				found = true
			}
		}
	})
	return found, nil
}

func (r *memMembers) ListByLoad(ctx context.Context, loadID string) ([]*entity.LoadMembership, error) {
	var out []*entity.LoadMembership
	r.with(func(st *memState) {
		for _, m := range st.memberships {
			if m.LoadID == loadID {
				m := m
				out = append(out, &m)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PalletID < out[j].PalletID })
	return out, nil
}

func (r *memMembers) ListDetailedByLoad(ctx context.Context, loadID string) ([]*entity.MembershipDetail, error) {
	var out []*entity.MembershipDetail
	r.with(func(st *memState) {
		for _, m := range st.memberships {
			if m.LoadID == loadID {
				out = append(out, &entity.MembershipDetail{LoadMembership: m, Pallet: st.pallets[m.PalletID]})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PalletID < out[j].PalletID })
	return out, nil
}

func (r *memMembers) UpdateDisposition(ctx context.Context, m *entity.LoadMembership) error {
	r.with(func(st *memState) {
		cur := st.memberships[m.ID]
		cur.Destination, cur.IsOnHold, cur.ReleaseNumber = m.Destination, m.IsOnHold, m.ReleaseNumber
		st.memberships[m.ID] = cur
	})
	return nil
}

func (r *memMembers) SetDocument(ctx context.Context, ids []string, doc string) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for _, id := range ids {
			if m, ok := st.memberships[id]; ok {
				m.ReleaseDocument = doc
				st.memberships[id] = m
				n++
			}
		}
	})
	return n, nil
}

func (r *memMembers) StampDelivery(ctx context.Context, loadID, dest string, date time.Time) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for id, m := range st.memberships {
			if m.LoadID == loadID && !m.IsOnHold && entity.NormalizeDestination(m.Destination) == dest {
				d := date
				m.DeliveryDate = &d
				st.memberships[id] = m
				n++
			}
		}
	})
	return n, nil
}

func (r *memMembers) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for _, id := range ids {
			if _, ok := st.memberships[id]; ok {
				delete(st.memberships, id)
				n++
			}
		}
	})
	return n, nil
}

func (r *memMembers) DeleteByLoad(ctx context.Context, loadID string) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for id, m := range st.memberships {
			if m.LoadID == loadID {
				delete(st.memberships, id)
				n++
			}
		}
	})
	return n, nil
}

func (r *memMembers) ListHeldDue(ctx context.Context, asOf time.Time) ([]*entity.HeldMembership, error) {
	var out []*entity.HeldMembership
	r.with(func(st *memState) {
		for _, m := range st.memberships {
			p := st.pallets[m.PalletID]
			l := st.loads[m.LoadID]
			if !m.IsOnHold || p.ReleaseDate == nil || p.ReleaseDate.After(asOf) || !l.IsPreDeparture() {
				continue
			}
			out = append(out, &entity.HeldMembership{
				MembershipID: m.ID, LoadID: l.ID, LoadNumber: l.LoadNumber,
				PalletID: p.ID, ProductCode: p.ProductCode, ReleaseDate: *p.ReleaseDate,
			})
		}
	})
	return out, nil
}

type memReleases struct{ base }

func (r *memReleases) Create(ctx context.Context, rr *entity.ReleaseRequest) error {
	r.with(func(st *memState) { st.releases = append(st.releases, *rr) })
	return nil
}

func (r *memReleases) GetActiveByLoad(ctx context.Context, loadID string) (*entity.ReleaseRequest, error) {
	var out *entity.ReleaseRequest
	r.with(func(st *memState) {
		for i := len(st.releases) - 1; i >= 0; i-- {
			if st.releases[i].LoadID == loadID {
				rr := st.releases[i]
				out = &rr
				return
			}
		}
	})
	return out, nil
}

func (r *memReleases) Update(ctx context.Context, rr *entity.ReleaseRequest) error {
	r.with(func(st *memState) {
		for i := range st.releases {
			if st.releases[i].ID == rr.ID {
				st.releases[i] = *rr
			}
		}
	})
	return nil
}

func (r *memReleases) DeleteByLoad(ctx context.Context, loadID string) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		kept := st.releases[:0]
		for _, rr := range st.releases {
			if rr.LoadID == loadID {
				n++
				continue
			}
			kept = append(kept, rr)
		}
		st.releases = kept
	})
	return n, nil
}

type memShipped struct{ base }

func (r *memShipped) Create(ctx context.Context, rec *entity.ShippedPalletRecord) error {
	r.with(func(st *memState) { st.shipped = append(st.shipped, *rec) })
	return nil
}

func (r *memShipped) ListByLoad(ctx context.Context, loadID string) ([]*entity.ShippedPalletRecord, error) {
	var out []*entity.ShippedPalletRecord
	r.with(func(st *memState) {
		for _, rec := range st.shipped {
			if rec.LoadID == loadID {
				rec := rec
				out = append(out, &rec)
			}
		}
	})
	return out, nil
}

func (r *memShipped) ExistsForPallet(ctx context.Context, palletID string) (bool, error) {
	found := false
	r.with(func(st *memState) {
		for _, rec := range st.shipped {
			if rec.PalletID == palletID {
				found = true
			}
		}
	})
	return found, nil
}

func (r *memShipped) StampDelivery(ctx context.Context, loadID, dest string, date time.Time) (int64, error) {
	var n int64
	r.with(func(st *memState) {
		for i, rec := range st.shipped {
			if rec.LoadID == loadID && rec.Destination == dest && rec.DeliveryDate == nil {
				d := date
				st.shipped[i].DeliveryDate = &d
				n++
			}
		}
	})
	return n, nil
}

type memOrders struct{ base }

func (r *memOrders) ListByCustomerLots(ctx context.Context, lots []string) ([]*entity.PurchaseOrder, error) {
	want := map[string]bool{}
	for _, l := range lots {
		want[l] = true
	}
	var out []*entity.PurchaseOrder
	r.with(func(st *memState) {
		for _, o := range st.orders {
			if want[o.CustomerLot] {
				o := o
				out = append(out, &o)
			}
		}
	})
	return out, nil
}

// memStorage almacén de documentos en memoria.
type memStorage struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saveErr error
}

func newMemStorage() *memStorage { return &memStorage{blobs: map[string][]byte{}} }

func (s *memStorage) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h := uuid.New().String() + "-" + filename
	s.blobs[h] = b
	return h, nil
}

func (s *memStorage) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[handle]
	if !ok {
		return nil, domain.NewNotFoundError("documento", handle)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memStorage) Delete(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, handle)
	return nil
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

var errCommit = errors.New("commit falló")
