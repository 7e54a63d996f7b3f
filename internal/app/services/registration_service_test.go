package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/twoem/portal/internal/app/models"
	"github.com/twoem/portal/internal/app/repositories"
	"github.com/twoem/portal/internal/pkg/apperrors"
	"github.com/twoem/portal/internal/pkg/auth"
)

// fakeCounterStore is an in-memory CounterUnitOfWork with transactional
// semantics: an error from fn discards all writes made inside it.
type fakeCounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
	taken    map[string]bool
	attempts int
	// beginHook runs at the start of each transaction, after the attempt
	// counter increments. Tests use it to mutate state between retries.
	beginHook func(attempt int)
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counters: map[string]int64{},
		taken:    map[string]bool{},
	}
}

func (f *fakeCounterStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.CounterTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.beginHook != nil {
		f.beginHook(f.attempts)
	}

	snapshot := make(map[string]int64, len(f.counters))
	for k, v := range f.counters {
		snapshot[k] = v
	}

	if err := fn(ctx, &fakeCounterTx{store: f}); err != nil {
		f.counters = snapshot
		return err
	}
	return nil
}

type fakeCounterTx struct {
	store *fakeCounterStore
}

func (t *fakeCounterTx) CounterValue(_ context.Context, name string) (int64, bool, error) {
	value, found := t.store.counters[name]
	return value, found, nil
}

func (t *fakeCounterTx) InitCounter(_ context.Context, name string) error {
	t.store.counters[name] = 0
	return nil
}

func (t *fakeCounterTx) SetCounter(_ context.Context, name string, value int64) error {
	t.store.counters[name] = value
	return nil
}

func (t *fakeCounterTx) RegistrationNumberExists(_ context.Context, registrationNumber string) (bool, error) {
	return t.store.taken[registrationNumber], nil
}

type fakeStudentStore struct {
	created []*models.Student
	err     error
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.created = append(f.created, student)
	return int64(len(f.created)), nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	return nil, repositories.ErrStudentNotFound
}

func TestAllocateRegistrationNumberSequence(t *testing.T) {
	store := newFakeCounterStore()
	service := NewRegistrationService(store, nil, "TWOEM", 3, "pw")

	for i := 1; i <= 12; i++ {
		got, err := service.AllocateRegistrationNumber(context.Background())
		if err != nil {
			t.Fatalf("allocation %d: unexpected error: %v", i, err)
		}
		want := fmt.Sprintf("TWOEM%03d", i)
		if got != want {
			t.Errorf("allocation %d = %q, want %q", i, got, want)
		}
	}

	// Suffixes past 999 keep growing rather than wrapping.
	store.counters[repositories.StudentRegSuffixCounter] = 999
	got, err := service.AllocateRegistrationNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "TWOEM1000" {
		t.Errorf("allocation after 999 = %q, want TWOEM1000", got)
	}
}

func TestAllocateRegistrationNumberSelfHealsMissingCounter(t *testing.T) {
	store := newFakeCounterStore()
	service := NewRegistrationService(store, nil, "TWOEM", 3, "pw")

	got, err := service.AllocateRegistrationNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "TWOEM001" {
		t.Errorf("first allocation = %q, want TWOEM001", got)
	}
	if value := store.counters[repositories.StudentRegSuffixCounter]; value != 1 {
		t.Errorf("counter after first allocation = %d, want 1", value)
	}
}

func TestAllocateRegistrationNumberConcurrent(t *testing.T) {
	store := newFakeCounterStore()
	service := NewRegistrationService(store, nil, "TWOEM", 3, "pw")

	const n = 25
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := service.AllocateRegistrationNumber(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for got := range results {
		if seen[got] {
			t.Fatalf("duplicate registration number issued: %q", got)
		}
		seen[got] = true
	}
	if len(seen) != n {
		t.Fatalf("issued %d distinct numbers, want %d", len(seen), n)
	}
	if !seen["TWOEM001"] || !seen[fmt.Sprintf("TWOEM%03d", n)] {
		t.Errorf("issued set should cover TWOEM001..TWOEM%03d, got %v", n, seen)
	}
}

func TestAllocateRegistrationNumberConflictRetry(t *testing.T) {
	store := newFakeCounterStore()
	store.taken["TWOEM001"] = true
	// The conflicting row disappears before the second attempt, as if a
	// competing registration finished and bumped nothing we depend on.
	store.beginHook = func(attempt int) {
		if attempt == 2 {
			delete(store.taken, "TWOEM001")
		}
	}
	service := NewRegistrationService(store, nil, "TWOEM", 3, "pw")

	got, err := service.AllocateRegistrationNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "TWOEM001" {
		t.Errorf("allocation = %q, want TWOEM001", got)
	}
	if store.attempts != 2 {
		t.Errorf("attempts = %d, want 2", store.attempts)
	}
}

func TestAllocateRegistrationNumberExhaustsRetryBudget(t *testing.T) {
	store := newFakeCounterStore()
	store.taken["TWOEM001"] = true
	service := NewRegistrationService(store, nil, "TWOEM", 3, "pw")

	_, err := service.AllocateRegistrationNumber(context.Background())
	if !errors.Is(err, apperrors.ErrAllocationExhausted) {
		t.Fatalf("error = %v, want ErrAllocationExhausted", err)
	}
	if store.attempts != 3 {
		t.Errorf("attempts = %d, want 3", store.attempts)
	}
	// Every failed attempt rolled back; the counter never moved.
	if value, found := store.counters[repositories.StudentRegSuffixCounter]; found && value != 0 {
		t.Errorf("counter after exhausted retries = %d, want 0", value)
	}
}

func TestRegisterStudent(t *testing.T) {
	counters := newFakeCounterStore()
	students := &fakeStudentStore{}
	service := NewRegistrationService(counters, students, "TWOEM", 3, "Twoem@2024")

	student := &models.Student{
		FirstName: "Jane",
		LastName:  "Mwangi",
		Email:     "jane@example.com",
	}
	created, err := service.RegisterStudent(context.Background(), student)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.RegistrationNumber != "TWOEM001" {
		t.Errorf("registration number = %q, want TWOEM001", created.RegistrationNumber)
	}
	if !created.RequiresPasswordChange {
		t.Error("new student should require a password change")
	}
	if !created.IsActive {
		t.Error("new student should be active")
	}
	if !auth.CheckPassword(created.PasswordHash, "Twoem@2024") {
		t.Error("stored hash should verify the default password")
	}
	if created.ID == 0 {
		t.Error("student ID should be set from the store")
	}
}

func TestRegisterStudentDuplicateEmail(t *testing.T) {
	counters := newFakeCounterStore()
	students := &fakeStudentStore{err: repositories.ErrStudentEmailExists}
	service := NewRegistrationService(counters, students, "TWOEM", 3, "pw")

	_, err := service.RegisterStudent(context.Background(), &models.Student{Email: "dup@example.com"})
	if !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		t.Fatalf("error = %v, want ErrEmailAlreadyExists", err)
	}
}
