package job

import (
	"errors"
	"sync"
	"testing"

	"github.com/quantrun/sigval/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(10)

	j := store.Create("backtest")
	if j.ID == "" {
		t.Fatal("job ID not assigned")
	}
	if j.Status != StatusPending {
		t.Errorf("status = %q, want pending", j.Status)
	}

	got, err := store.Get(j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != j.ID || got.Type != "backtest" {
		t.Errorf("Get = %+v", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(10)

	_, err := store.Get("nope")
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(10)
	j := store.Create("backtest")

	err := store.Update(j.ID, func(job *Job) {
		job.Status = StatusComplete
		job.Result = "done"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(j.ID)
	if got.Status != StatusComplete || got.Result != "done" {
		t.Errorf("updated job = %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Error("UpdatedAt not advanced")
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	store := NewStore(2)

	first := store.Create("backtest")
	store.Create("backtest")
	store.Create("backtest")

	if _, err := store.Get(first.ID); !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("oldest job should have been evicted, err = %v", err)
	}
	if len(store.List()) != 2 {
		t.Errorf("store size = %d, want 2", len(store.List()))
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(10)
	j := store.Create("backtest")

	got, _ := store.Get(j.ID)
	got.Status = StatusFailed

	again, _ := store.Get(j.ID)
	if again.Status != StatusPending {
		t.Error("mutating a returned job leaked into the store")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(100)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j := store.Create("backtest")
			store.Update(j.ID, func(job *Job) { job.Status = StatusRunning })
			store.Get(j.ID)
		}()
	}
	wg.Wait()

	if len(store.List()) != 20 {
		t.Errorf("store size = %d, want 20", len(store.List()))
	}
}
