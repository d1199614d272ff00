package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"room-access-control/internal/identity"
	"room-access-control/internal/storage"
)

// memStore is an in-memory Store with the same transactional contract as the
// SQL provider: InBookingTx serializes against other transactions and commits
// all-or-nothing, so the approve/approve race behaves as it does on sqlite.
type memStore struct {
	mu   sync.Mutex
	data *memData
}

type memData struct {
	nextID   int64
	bookings map[int64]storage.Booking
}

func newMemStore() *memStore {
	return &memStore{data: &memData{nextID: 1, bookings: make(map[int64]storage.Booking)}}
}

func (d *memData) clone() *memData {
	c := &memData{nextID: d.nextID, bookings: make(map[int64]storage.Booking, len(d.bookings))}
	for id, b := range d.bookings {
		c.bookings[id] = b
	}
	return c
}

func (d *memData) countActive(ownerID string) int {
	n := 0
	for _, b := range d.bookings {
		if b.OwnerID == ownerID && (b.Status == storage.BookingStatusPending || b.Status == storage.BookingStatusApproved) {
			n++
		}
	}
	return n
}

func (d *memData) countOverlapping(room, date, start, end string, excludeID int64) int {
	n := 0
	for _, b := range d.bookings {
		if b.ID == excludeID || b.Room != room || b.Date != date || b.Status != storage.BookingStatusApproved {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			n++
		}
	}
	return n
}

// memQueries implements storage.BookingQueries over a memData snapshot.
type memQueries struct {
	d *memData
}

func (q *memQueries) CountActiveBookings(ctx context.Context, ownerID string) (int, error) {
	return q.d.countActive(ownerID), nil
}

func (q *memQueries) CountOverlappingApproved(ctx context.Context, room, date, start, end string, excludeID int64) (int, error) {
	return q.d.countOverlapping(room, date, start, end, excludeID), nil
}

func (q *memQueries) InsertBooking(ctx context.Context, b storage.Booking) (int64, error) {
	b.ID = q.d.nextID
	b.Status = storage.BookingStatusPending
	q.d.nextID++
	q.d.bookings[b.ID] = b
	return b.ID, nil
}

func (q *memQueries) GetBooking(ctx context.Context, id int64) (*storage.Booking, error) {
	b, ok := q.d.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (q *memQueries) UpdateBookingStatus(ctx context.Context, id int64, status storage.BookingStatus, approvedBy, remark string) (int64, error) {
	b, ok := q.d.bookings[id]
	if !ok {
		return 0, nil
	}
	b.Status = status
	b.ApprovedBy = approvedBy
	b.Remark = remark
	q.d.bookings[id] = b
	return 1, nil
}

func (q *memQueries) DeleteBooking(ctx context.Context, id int64) (int64, error) {
	if _, ok := q.d.bookings[id]; !ok {
		return 0, nil
	}
	delete(q.d.bookings, id)
	return 1, nil
}

func (s *memStore) withLock(fn func(q *memQueries)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&memQueries{d: s.data})
}

func (s *memStore) CountActiveBookings(ctx context.Context, ownerID string) (n int, err error) {
	s.withLock(func(q *memQueries) { n, err = q.CountActiveBookings(ctx, ownerID) })
	return
}

func (s *memStore) CountOverlappingApproved(ctx context.Context, room, date, start, end string, excludeID int64) (n int, err error) {
	s.withLock(func(q *memQueries) { n, err = q.CountOverlappingApproved(ctx, room, date, start, end, excludeID) })
	return
}

func (s *memStore) InsertBooking(ctx context.Context, b storage.Booking) (id int64, err error) {
	s.withLock(func(q *memQueries) { id, err = q.InsertBooking(ctx, b) })
	return
}

func (s *memStore) GetBooking(ctx context.Context, id int64) (b *storage.Booking, err error) {
	s.withLock(func(q *memQueries) { b, err = q.GetBooking(ctx, id) })
	return
}

func (s *memStore) UpdateBookingStatus(ctx context.Context, id int64, status storage.BookingStatus, approvedBy, remark string) (n int64, err error) {
	s.withLock(func(q *memQueries) { n, err = q.UpdateBookingStatus(ctx, id, status, approvedBy, remark) })
	return
}

func (s *memStore) DeleteBooking(ctx context.Context, id int64) (n int64, err error) {
	s.withLock(func(q *memQueries) { n, err = q.DeleteBooking(ctx, id) })
	return
}

func (s *memStore) InBookingTx(ctx context.Context, fn func(tx storage.BookingQueries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := s.data.clone()
	if err := fn(&memQueries{d: clone}); err != nil {
		return err
	}
	s.data = clone
	return nil
}

func (s *memStore) ListBookingsByOwner(ctx context.Context, ownerID string) ([]storage.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.Booking
	for _, b := range s.data.bookings {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListAllBookings(ctx context.Context) ([]storage.BookingWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.BookingWithOwner
	for _, b := range s.data.bookings {
		out = append(out, storage.BookingWithOwner{Booking: b})
	}
	return out, nil
}

var (
	student  = identity.Identity{SubjectID: "11", Email: "student@kkumail.com"}
	student2 = identity.Identity{SubjectID: "12", Email: "other@kkumail.com"}
	staff    = identity.Identity{SubjectID: "90", Email: "staff@kku.ac.th"}
	outsider = identity.Identity{SubjectID: "66", Email: "who@example.com"}
)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	policy := identity.NewPolicy("@kkumail.com", "@kku.ac.th")
	return NewService(store, policy, 3), store
}

func req(room, date, start, end string) Request {
	return Request{Room: room, Date: date, StartTime: start, EndTime: end}
}

func TestSubmit_CreatesPending(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, err := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:00", "10:00")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(created))
	}

	b, err := store.GetBooking(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if b.Status != storage.BookingStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.OwnerID != student.SubjectID || b.OwnerEmail != student.Email {
		t.Errorf("owner snapshot wrong: %+v", b)
	}
}

func TestSubmit_EligibilityGate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, id := range []identity.Identity{staff, outsider, {}} {
		_, err := svc.Submit(ctx, id, []Request{req("R1", "2024-01-10", "09:00", "10:00")})
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("Submit by %q: err = %v, want ErrNotEligible", id.Email, err)
		}
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		r    Request
	}{
		{"missing room", req("", "2024-01-10", "09:00", "10:00")},
		{"missing date", req("R1", "", "09:00", "10:00")},
		{"bad date", req("R1", "10/01/2024", "09:00", "10:00")},
		{"bad time", req("R1", "2024-01-10", "9:00", "10:00")},
		{"start equals end", req("R1", "2024-01-10", "10:00", "10:00")},
		{"start after end", req("R1", "2024-01-10", "11:00", "10:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, student, []Request{tt.r})
			if !errors.Is(err, ErrInvalidBooking) {
				t.Errorf("err = %v, want ErrInvalidBooking", err)
			}
		})
	}

	// A batch containing one bad candidate writes nothing
	_, err := svc.Submit(ctx, student, []Request{
		req("R1", "2024-01-10", "09:00", "10:00"),
		req("", "2024-01-10", "10:00", "11:00"),
	})
	if !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("err = %v, want ErrInvalidBooking", err)
	}
	mine, _ := store.ListBookingsByOwner(ctx, student.SubjectID)
	if len(mine) != 0 {
		t.Errorf("invalid batch must not persist anything, found %d bookings", len(mine))
	}
}

func TestSubmit_QuotaOnWholeBatch(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, student, []Request{
		req("R1", "2024-01-10", "09:00", "10:00"),
		req("R1", "2024-01-11", "09:00", "10:00"),
	})
	if err != nil {
		t.Fatalf("initial Submit failed: %v", err)
	}

	// 2 active + batch of 2 > 3: whole batch rejected, nothing persisted
	_, err = svc.Submit(ctx, student, []Request{
		req("R2", "2024-01-12", "09:00", "10:00"),
		req("R2", "2024-01-13", "09:00", "10:00"),
	})
	var qe *QuotaError
	if !errors.As(err, &qe) || !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want QuotaError", err)
	}
	if qe.Active != 2 || qe.Requested != 2 || qe.Limit != 3 {
		t.Errorf("unexpected quota detail: %+v", qe)
	}

	mine, _ := store.ListBookingsByOwner(ctx, student.SubjectID)
	if len(mine) != 2 {
		t.Errorf("quota-rejected batch must not persist, have %d bookings", len(mine))
	}

	// A batch of 1 still fits
	if _, err := svc.Submit(ctx, student, []Request{req("R2", "2024-01-12", "09:00", "10:00")}); err != nil {
		t.Errorf("batch of 1 should fit under quota: %v", err)
	}
}

func TestSubmit_RejectedBookingsDoNotCount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Submit(ctx, student, []Request{
		req("R1", "2024-01-10", "09:00", "10:00"),
		req("R1", "2024-01-11", "09:00", "10:00"),
		req("R1", "2024-01-12", "09:00", "10:00"),
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if err := svc.Reject(ctx, staff, created[0].ID, ""); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	if _, err := svc.Submit(ctx, student, []Request{req("R2", "2024-01-13", "09:00", "10:00")}); err != nil {
		t.Errorf("rejected booking should free quota: %v", err)
	}
}

func TestSubmit_ConflictAgainstApprovedOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:30", "10:30")})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Pending booking occupies no slot: an identical-slot submission succeeds
	if _, err := svc.Submit(ctx, student2, []Request{req("R1", "2024-01-10", "09:00", "10:00")}); err != nil {
		t.Fatalf("submission against pending slot should succeed: %v", err)
	}

	if err := svc.Approve(ctx, staff, created[0].ID, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Now the same overlap collides with the approved row
	_, err = svc.Submit(ctx, outsiderFree(), []Request{req("R1", "2024-01-10", "09:00", "10:00")})
	var sc *SlotConflictError
	if !errors.As(err, &sc) || !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("err = %v, want SlotConflictError", err)
	}
	if sc.Room != "R1" || sc.Date != "2024-01-10" {
		t.Errorf("conflict detail wrong: %+v", sc)
	}

	// Adjacent slot sharing an endpoint does not conflict
	if _, err := svc.Submit(ctx, outsiderFree(), []Request{req("R1", "2024-01-10", "10:30", "11:30")}); err != nil {
		t.Errorf("adjacent slot should not conflict: %v", err)
	}
}

var freeCounter int

// outsiderFree returns a fresh member identity with no quota usage.
func outsiderFree() identity.Identity {
	freeCounter++
	return identity.Identity{
		SubjectID: fmt.Sprintf("f%d", freeCounter),
		Email:     "free@kkumail.com",
	}
}

func TestSubmit_BatchAbortsOnFirstConflict(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, _ := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:00", "10:00")})
	if err := svc.Approve(ctx, staff, created[0].ID, ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	_, err := svc.Submit(ctx, student2, []Request{
		req("R2", "2024-01-10", "09:00", "10:00"), // fine
		req("R1", "2024-01-10", "09:30", "10:30"), // conflicts
	})
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("err = %v, want ErrSlotConflict", err)
	}

	mine, _ := store.ListBookingsByOwner(ctx, student2.SubjectID)
	if len(mine) != 0 {
		t.Errorf("conflicting batch must be atomic, found %d partial writes", len(mine))
	}
}

func TestApprove_RaceResolvesToOne(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:00", "10:00")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Submit(ctx, student2, []Request{req("R1", "2024-01-10", "09:30", "10:30")})
	if err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []int64{a[0].ID, b[0].ID} {
		wg.Add(1)
		go func(bookingID int64) {
			defer wg.Done()
			errs <- svc.Approve(ctx, staff, bookingID, "")
		}(id)
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("want exactly one approval and one conflict, got ok=%d conflict=%d", ok, conflict)
	}
}

func TestApprove_Authorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:00", "10:00")})

	for _, id := range []identity.Identity{student, outsider} {
		if err := svc.Approve(ctx, id, created[0].ID, ""); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("Approve by %q: err = %v, want ErrNotAuthorized", id.Email, err)
		}
	}

	if err := svc.Approve(ctx, staff, 9999, ""); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("Approve unknown id: err = %v, want ErrBookingNotFound", err)
	}
}

func TestReject_UnconditionalAndIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, _ := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:00", "10:00")})
	id := created[0].ID

	if err := svc.Reject(ctx, staff, id, ""); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	b, _ := store.GetBooking(ctx, id)
	if b.Status != storage.BookingStatusRejected {
		t.Errorf("status = %s, want rejected", b.Status)
	}
	if b.Remark != DefaultRejectRemark {
		t.Errorf("remark = %q, want default remark", b.Remark)
	}
	if b.ApprovedBy != staff.Email {
		t.Errorf("approved_by = %q, want %q", b.ApprovedBy, staff.Email)
	}

	// Second reject re-applies without error
	if err := svc.Reject(ctx, staff, id, "still no"); err != nil {
		t.Fatalf("second Reject failed: %v", err)
	}
	b, _ = store.GetBooking(ctx, id)
	if b.Status != storage.BookingStatusRejected || b.Remark != "still no" {
		t.Errorf("re-reject not applied: %+v", b)
	}
}

func TestDelete_Authorization(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, _ := svc.Submit(ctx, student, []Request{req("R1", "2024-01-10", "09:00", "10:00")})
	id := created[0].ID

	if err := svc.Delete(ctx, outsider, id); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Delete by outsider: err = %v, want ErrNotAuthorized", err)
	}
	if err := svc.Delete(ctx, student2, id); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Delete by non-owner member: err = %v, want ErrNotAuthorized", err)
	}

	// Owner deletes own booking
	if err := svc.Delete(ctx, student, id); err != nil {
		t.Fatalf("owner Delete failed: %v", err)
	}
	if _, err := store.GetBooking(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("booking should be gone, got %v", err)
	}
	if err := svc.Delete(ctx, student, id); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("second Delete: err = %v, want ErrBookingNotFound", err)
	}

	// Approver deletes someone else's booking regardless of state
	created, _ = svc.Submit(ctx, student, []Request{req("R1", "2024-01-11", "09:00", "10:00")})
	if err := svc.Delete(ctx, staff, created[0].ID); err != nil {
		t.Fatalf("approver Delete failed: %v", err)
	}
}

func TestListAll_ApproverOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.ListAll(ctx, student); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("ListAll by member: err = %v, want ErrNotAuthorized", err)
	}
	if _, err := svc.ListAll(ctx, staff); err != nil {
		t.Errorf("ListAll by staff failed: %v", err)
	}
}

func TestParseBookingID(t *testing.T) {
	if _, err := ParseBookingID("abc"); !errors.Is(err, ErrInvalidBooking) {
		t.Errorf("err = %v, want ErrInvalidBooking", err)
	}
	if _, err := ParseBookingID("0"); !errors.Is(err, ErrInvalidBooking) {
		t.Errorf("zero id should be invalid")
	}
	id, err := ParseBookingID("42")
	if err != nil || id != 42 {
		t.Errorf("ParseBookingID(42) = %d, %v", id, err)
	}
}
