package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit_TwoSeatsWithPromo(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	b := f.addSeat(t, "Gold", 30000, "A", 2)
	p := f.addPromo(t, "FLAT100", 10000, true)

	req := f.request(uuid.New(), "card", a, b)
	req.PromoCodeID = ptr(p.ID())

	res, err := f.bookings.Commit(context.Background(), req)
	require.NoError(t, err)

	c := res.Confirmation
	assert.Empty(t, res.Warnings)
	assert.Equal(t, int64(60000), c.GrossTotal)
	assert.Equal(t, int64(10000), c.Discount)
	assert.Equal(t, int64(50000), c.NetTotal)
	require.Len(t, c.Seats, 2)
	for _, s := range c.Seats {
		assert.Equal(t, int64(25000), s.NetPaise)
	}
	assert.Equal(t, "FLAT100", c.PromoCode)
	assert.Equal(t, booking.PaymentCard, c.PaymentMethod)
	require.NotNil(t, c.Showing)
	assert.Equal(t, "Hamlet", c.Showing.EventName)

	v := f.vacancy()
	assert.False(t, v[a])
	assert.False(t, v[b])
	assert.Equal(t, 1, f.dispatcher.count())
}

func TestCommit_PromoExceedingTotalIsRejected(t *testing.T) {
	f := newFixture(t)
	ids := []uuid.UUID{
		f.addSeat(t, "Silver", 20000, "B", 1),
		f.addSeat(t, "Silver", 20000, "B", 2),
		f.addSeat(t, "Silver", 20000, "B", 3),
	}
	p := f.addPromo(t, "BIG", 100000, true)
	before := f.vacancy()

	req := f.request(uuid.New(), "upi", ids...)
	req.PromoCodeID = ptr(p.ID())

	_, err := f.bookings.Commit(context.Background(), req)
	assert.True(t, errors.Is(err, booking.ErrZeroTotalBooking))
	assert.Equal(t, before, f.vacancy())
	assert.Zero(t, f.bookingCount())
	assert.Zero(t, f.dispatcher.count())
}

func TestCommit_InactivePromo(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	p := f.addPromo(t, "OLD", 5000, false)
	before := f.vacancy()

	req := f.request(uuid.New(), "card", a)
	req.PromoCodeID = ptr(p.ID())

	_, err := f.bookings.Commit(context.Background(), req)
	assert.True(t, errors.Is(err, booking.ErrInvalidPromoCode))
	assert.Equal(t, before, f.vacancy())
	assert.Zero(t, f.bookingCount())
}

func TestCommit_UnknownPromo(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)

	req := f.request(uuid.New(), "card", a)
	req.PromoCodeID = ptr(uuid.New())

	_, err := f.bookings.Commit(context.Background(), req)
	assert.True(t, errors.Is(err, booking.ErrInvalidPromoCode))
	assert.True(t, f.vacancy()[a])
}

func TestCommit_UnsupportedPaymentMethodFailsBeforeSeatCheck(t *testing.T) {
	f := newFixture(t)
	sold := f.addSeat(t, "Gold", 30000, "A", 1)
	f.db.vacant[sold] = false

	// The seat is already sold; the payment error must still win.
	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "bitcoin", sold))
	assert.True(t, errors.Is(err, booking.ErrUnsupportedPaymentMethod))
}

func TestCommit_EmptySelection(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "bitcoin"))
	assert.True(t, errors.Is(err, booking.ErrEmptySelection), "empty selection is checked first")
}

func TestCommit_SecondCommitOfSameSeatsFails(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	b := f.addSeat(t, "Gold", 30000, "A", 2)

	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a, b))
	require.NoError(t, err)

	_, err = f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a, b))
	require.True(t, errors.Is(err, booking.ErrSeatsNoLongerAvailable))
	assert.ElementsMatch(t, []uuid.UUID{a, b}, booking.LostSeats(err))
	assert.Equal(t, 1, f.bookingCount())
}

func TestCommit_PartiallySoldSelectionTouchesNothing(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	b := f.addSeat(t, "Gold", 30000, "A", 2)
	f.db.vacant[b] = false
	before := f.vacancy()

	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a, b))
	require.True(t, errors.Is(err, booking.ErrSeatsNoLongerAvailable))
	assert.Equal(t, []uuid.UUID{b}, booking.LostSeats(err))
	assert.Equal(t, before, f.vacancy())
	assert.Zero(t, f.bookingCount())
}

func TestCommit_UnknownSeatIsReportedLost(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	ghost := uuid.New()

	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a, ghost))
	require.True(t, errors.Is(err, booking.ErrSeatsNoLongerAvailable))
	assert.Equal(t, []uuid.UUID{ghost}, booking.LostSeats(err))
	assert.True(t, f.vacancy()[a])
}

func TestCommit_StorageFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	f.db.failMarkSold = errors.New("connection reset")

	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a))
	require.True(t, errors.Is(err, booking.ErrStorageFailure))
	assert.True(t, booking.IsRetryable(err))
	assert.True(t, f.vacancy()[a])
	assert.Zero(t, f.bookingCount(), "rows written before the failure are rolled back")

	f.db.failMarkSold = nil
	_, err = f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a))
	assert.NoError(t, err, "a retry after a storage failure succeeds")
}

func TestCommit_MarkSoldConflictNamesOnlyTakenSeats(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	b := f.addSeat(t, "Gold", 30000, "A", 2)
	c := f.addSeat(t, "Gold", 30000, "A", 3)
	f.db.soldElsewhere = []uuid.UUID{b}

	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a, b, c))
	require.True(t, errors.Is(err, booking.ErrSeatsNoLongerAvailable))
	assert.Equal(t, []uuid.UUID{b}, booking.LostSeats(err))
	assert.Zero(t, f.bookingCount())
	v := f.vacancy()
	assert.True(t, v[a])
	assert.True(t, v[c])
}

func TestCommit_SaveFailureIsStorageFailure(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	f.db.failSave = errors.New("duplicated key")

	_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a))
	assert.True(t, errors.Is(err, booking.ErrStorageFailure))
	assert.True(t, f.vacancy()[a])
}

func TestCommit_DispatchFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	f.dispatcher.err = errors.New("smtp down")

	res, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "netbanking", a))
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, WarningNotificationFailed)
	assert.False(t, f.vacancy()[a])
	assert.Equal(t, 1, f.bookingCount())
}

func TestCommit_MissingShowingIsAWarning(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	delete(f.db.showings, f.scheduleID)

	res, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a))
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, WarningShowingUnavailable)
	assert.Nil(t, res.Confirmation.Showing)
}

func TestCommit_UsesStoredPriceOverSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	req := f.request(uuid.New(), "card", a)
	req.Seats[0].SnapshotPricePaise = 100

	res, err := f.bookings.Commit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), res.Confirmation.GrossTotal)
}

func TestCommit_DuplicateSeatIdsCollapse(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)

	res, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", a, a))
	require.NoError(t, err)
	assert.Len(t, res.Confirmation.Seats, 1)
}

func TestCommit_PriceConservationWithRemainder(t *testing.T) {
	f := newFixture(t)
	ids := []uuid.UUID{
		f.addSeat(t, "Gold", 33333, "A", 1),
		f.addSeat(t, "Gold", 33333, "A", 2),
		f.addSeat(t, "Gold", 33334, "A", 3),
	}
	p := f.addPromo(t, "ODD", 10001, true)
	req := f.request(uuid.New(), "card", ids...)
	req.PromoCodeID = ptr(p.ID())

	res, err := f.bookings.Commit(context.Background(), req)
	require.NoError(t, err)

	var net int64
	for _, s := range res.Confirmation.Seats {
		net += s.NetPaise
	}
	assert.Equal(t, res.Confirmation.GrossTotal-res.Confirmation.Discount, net)
	assert.Equal(t, int64(100000-10001), net)
}

func TestCommit_ConcurrentSameSeatExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	s := f.addSeat(t, "Gold", 30000, "A", 1)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", s))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, booking.ErrSeatsNoLongerAvailable):
				assert.Contains(t, booking.LostSeats(err), s)
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, f.bookingCount())
}

func TestCommit_OverlappingSelections(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	b := f.addSeat(t, "Gold", 30000, "A", 2)
	c := f.addSeat(t, "Gold", 30000, "A", 3)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, ids := range [][]uuid.UUID{{a, b}, {b, c}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.bookings.Commit(context.Background(), f.request(uuid.New(), "card", ids...))
		}()
	}
	wg.Wait()

	var winners, losers int
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.True(t, errors.Is(err, booking.ErrSeatsNoLongerAvailable))
		assert.Equal(t, []uuid.UUID{b}, booking.LostSeats(err))
		losers++
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)

	v := f.vacancy()
	assert.False(t, v[b])
	assert.NotEqual(t, v[a], v[c], "exactly one of the outer seats was sold")
}

func TestGetBooking(t *testing.T) {
	f := newFixture(t)
	a := f.addSeat(t, "Gold", 30000, "A", 1)
	owner := uuid.New()

	res, err := f.bookings.Commit(context.Background(), f.request(owner, "card", a))
	require.NoError(t, err)
	ref := res.Confirmation.Reference

	c, err := f.bookings.GetBooking(context.Background(), owner, ref)
	require.NoError(t, err)
	assert.Equal(t, ref, c.Reference)
	assert.Equal(t, int64(30000), c.NetTotal)

	_, err = f.bookings.GetBooking(context.Background(), uuid.New(), ref)
	assert.True(t, errors.Is(err, booking.ErrBookingNotFound))

	_, err = f.bookings.GetBooking(context.Background(), owner, "CTF-00000000-missing")
	assert.True(t, errors.Is(err, booking.ErrBookingNotFound))
}

func ptr[T any](v T) *T { return &v }
