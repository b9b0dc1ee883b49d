package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/domain/promo"
	"github.com/catchify/service-booking/internal/domain/seat"
	"github.com/catchify/service-booking/internal/domain/selection"
	"github.com/catchify/service-booking/internal/platform/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memDB is an in-memory store with all-or-nothing transactions. A
// transaction holds the lock for its whole duration, which stands in for
// the row locks taken by the real repository.
type memDB struct {
	mu       sync.Mutex
	seats    map[uuid.UUID]*seat.Seat
	vacant   map[uuid.UUID]bool
	promos   map[uuid.UUID]*promo.PromoCode
	bookings map[string]*booking.Booking
	soldBy   map[uuid.UUID]string
	showings map[uuid.UUID]*booking.Showing

	failSave     error
	failMarkSold error
	// soldElsewhere are flipped to sold just before MarkSold runs, as a
	// writer that skipped the row lock would.
	soldElsewhere []uuid.UUID
}

type memTxKey struct{}

func newMemDB() *memDB {
	return &memDB{
		seats:    make(map[uuid.UUID]*seat.Seat),
		vacant:   make(map[uuid.UUID]bool),
		promos:   make(map[uuid.UUID]*promo.PromoCode),
		bookings: make(map[string]*booking.Booking),
		soldBy:   make(map[uuid.UUID]string),
		showings: make(map[uuid.UUID]*booking.Showing),
	}
}

func (m *memDB) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// WithinTx implements TxManager.
func (m *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	vacant := cloneMap(m.vacant)
	bookings := cloneMap(m.bookings)
	soldBy := cloneMap(m.soldBy)
	seats := cloneMap(m.seats)
	showings := cloneMap(m.showings)

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.vacant, m.bookings, m.soldBy, m.seats, m.showings = vacant, bookings, soldBy, seats, showings
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memDB) view(id uuid.UUID) *seat.Seat {
	s := m.seats[id]
	return seat.Reconstruct(s.ID(), s.ScheduleID(), s.EventID(), s.SeatType(), s.PricePaise(),
		s.Row(), s.Column(), s.Location(), m.vacant[id], s.CreatedAt(), s.UpdatedAt())
}

// seat.Repository

type memSeatRepo struct{ db *memDB }

func (r memSeatRepo) FindBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*seat.Seat, error) {
	defer r.db.lock(ctx)()
	var out []*seat.Seat
	for id, s := range r.db.seats {
		if s.ScheduleID() == scheduleID {
			out = append(out, r.db.view(id))
		}
	}
	return out, nil
}

func (r memSeatRepo) FindByID(ctx context.Context, id uuid.UUID) (*seat.Seat, error) {
	defer r.db.lock(ctx)()
	if _, ok := r.db.seats[id]; !ok {
		return nil, domain.NewNotFoundError("Seat", id.String())
	}
	return r.db.view(id), nil
}

func (r memSeatRepo) CheckVacant(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]*seat.Seat, error) {
	defer r.db.lock(ctx)()
	out := make(map[uuid.UUID]*seat.Seat)
	for _, id := range seatIDs {
		if s, ok := r.db.seats[id]; ok && s.ScheduleID() == scheduleID {
			out[id] = r.db.view(id)
		}
	}
	return out, nil
}

func (r memSeatRepo) MarkSold(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) error {
	defer r.db.lock(ctx)()
	if r.db.failMarkSold != nil {
		return r.db.failMarkSold
	}
	for _, id := range r.db.soldElsewhere {
		r.db.vacant[id] = false
	}
	var taken []uuid.UUID
	for _, id := range seatIDs {
		if !r.db.vacant[id] || r.db.seats[id].ScheduleID() != scheduleID {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return &seat.NotVacantError{SeatIDs: taken}
	}
	for _, id := range seatIDs {
		r.db.vacant[id] = false
	}
	return nil
}

func (r memSeatRepo) Provision(ctx context.Context, seats []*seat.Seat) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for _, s := range seats {
		taken := false
		for _, existing := range r.db.seats {
			if existing.ScheduleID() == s.ScheduleID() && existing.Position() == s.Position() {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		r.db.seats[s.ID()] = s
		r.db.vacant[s.ID()] = s.IsVacant()
		n++
	}
	return n, nil
}

// promo.PromoRepository

type memPromoRepo struct{ db *memDB }

func (r memPromoRepo) Save(ctx context.Context, p *promo.PromoCode) error {
	defer r.db.lock(ctx)()
	r.db.promos[p.ID()] = p
	return nil
}


func (r memPromoRepo) FindByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	defer r.db.lock(ctx)()
	for _, p := range r.db.promos {
		if p.Code() == promo.NormalizeCode(code) {
			return p, nil
		}
	}
	return nil, promo.ErrNotFound
}

func (r memPromoRepo) FindByID(ctx context.Context, id uuid.UUID) (*promo.PromoCode, error) {
	defer r.db.lock(ctx)()
	if p, ok := r.db.promos[id]; ok {
		return p, nil
	}
	return nil, promo.ErrNotFound
}

// booking.Repository

type memBookingRepo struct{ db *memDB }

func (r memBookingRepo) Save(ctx context.Context, b *booking.Booking) error {
	defer r.db.lock(ctx)()
	if r.db.failSave != nil {
		return r.db.failSave
	}
	if _, ok := r.db.bookings[b.Reference()]; ok {
		return errors.New("duplicated key")
	}
	for _, id := range b.SeatIDs() {
		if _, ok := r.db.soldBy[id]; ok {
			return errors.New("duplicated key")
		}
	}
	r.db.bookings[b.Reference()] = b
	for _, id := range b.SeatIDs() {
		r.db.soldBy[id] = b.Reference()
	}
	return nil
}

func (r memBookingRepo) FindByReference(ctx context.Context, ref string) (*booking.Booking, error) {
	defer r.db.lock(ctx)()
	if b, ok := r.db.bookings[ref]; ok {
		return b, nil
	}
	return nil, booking.ErrNotFound
}

// booking.ShowingCatalog and ShowingWriter

type memShowings struct{ db *memDB }

func (r memShowings) FindShowing(ctx context.Context, scheduleID uuid.UUID) (*booking.Showing, error) {
	defer r.db.lock(ctx)()
	if s, ok := r.db.showings[scheduleID]; ok {
		return s, nil
	}
	return nil, booking.ErrNotFound
}

func (r memShowings) Upsert(ctx context.Context, s booking.Showing) error {
	defer r.db.lock(ctx)()
	r.db.showings[s.ScheduleID] = &s
	return nil
}

// booking.Dispatcher

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []booking.Confirmation
	err  error
}

func (d *recordingDispatcher) Send(_ context.Context, c booking.Confirmation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, c)
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

// selection.Store

type memSelectionStore struct {
	mu   sync.Mutex
	sels map[uuid.UUID]selection.Selection
}

func newMemSelectionStore() *memSelectionStore {
	return &memSelectionStore{sels: make(map[uuid.UUID]selection.Selection)}
}

func (s *memSelectionStore) Save(_ context.Context, sel *selection.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sel
	cp.Seats = cloneMap(sel.Seats)
	s.sels[sel.ID] = cp
	return nil
}

func (s *memSelectionStore) Get(_ context.Context, id uuid.UUID) (*selection.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.sels[id]
	if !ok {
		return nil, selection.ErrNotFound
	}
	sel.Seats = cloneMap(sel.Seats)
	return &sel, nil
}

func (s *memSelectionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sels, id)
	return nil
}

// fixture wires every service against one memDB.
type fixture struct {
	db         *memDB
	dispatcher *recordingDispatcher
	store      *memSelectionStore
	seats      *SeatService
	promos     *PromoService
	bookings   *BookingService
	selections *SelectionService

	scheduleID uuid.UUID
	eventID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	db := newMemDB()
	f := &fixture{
		db:         db,
		dispatcher: &recordingDispatcher{},
		store:      newMemSelectionStore(),
		scheduleID: uuid.New(),
		eventID:    uuid.New(),
	}
	f.promos = NewPromoService(memPromoRepo{db}, logger)
	f.seats = NewSeatService(db, memSeatRepo{db}, memShowings{db}, logger)
	f.bookings = NewBookingService(db, memSeatRepo{db}, f.promos, memBookingRepo{db}, memShowings{db}, f.dispatcher, time.Second, logger)
	f.selections = NewSelectionService(f.store, f.seats, f.promos, f.bookings, logger)
	db.showings[f.scheduleID] = &booking.Showing{
		ScheduleID: f.scheduleID, EventID: f.eventID,
		EventName: "Hamlet", VenueName: "Prithvi Theatre",
	}
	return f
}

func (f *fixture) addSeat(t *testing.T, seatType string, price int64, row string, col int) uuid.UUID {
	t.Helper()
	s, err := seat.NewSeat(f.scheduleID, f.eventID, seatType, price, row, col, "")
	require.NoError(t, err)
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.seats[s.ID()] = s
	f.db.vacant[s.ID()] = true
	return s.ID()
}

func (f *fixture) addPromo(t *testing.T, code string, value int64, active bool) *promo.PromoCode {
	t.Helper()
	p, err := promo.NewPromoCode(code, value, nil)
	require.NoError(t, err)
	if !active {
		p.Deactivate()
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.promos[p.ID()] = p
	return p
}

func (f *fixture) vacancy() map[uuid.UUID]bool {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return cloneMap(f.db.vacant)
}

func (f *fixture) bookingCount() int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.bookings)
}

func (f *fixture) request(userID uuid.UUID, method string, seatIDs ...uuid.UUID) booking.CommitRequest {
	req := booking.CommitRequest{
		Purchaser:     booking.Purchaser{UserID: userID, Email: "buyer@catchify.test"},
		ScheduleID:    f.scheduleID,
		PaymentMethod: method,
	}
	for _, id := range seatIDs {
		req.Seats = append(req.Seats, booking.SeatRequest{SeatID: id})
	}
	return req
}
