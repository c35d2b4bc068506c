package service

import (
	"sync"
	"testing"
)

// TestAssetLocker_Lock tests mutual exclusion per asset.
func TestAssetLocker_Lock(t *testing.T) {
	locker := NewAssetLocker()

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("Expected 50 serialized increments, got %d", counter)
	}
}

// TestAssetLocker_LockMany tests multi-asset lock acquisition.
//
// WHY: Bulk orders lock several assets at once. Acquiring them in a
// fixed order is what prevents two overlapping orders from
// deadlocking; this exercises overlapping sets concurrently.
func TestAssetLocker_LockMany(t *testing.T) {
	t.Run("deduplicates repeated ids", func(t *testing.T) {
		locker := NewAssetLocker()

		unlock := locker.LockMany([]int64{3, 1, 3, 2, 1})
		unlock()

		// All locks are released; a plain Lock on each id must not block.
		for _, id := range []int64{1, 2, 3} {
			release := locker.Lock(id)
			release()
		}
	})

	t.Run("overlapping sets do not deadlock", func(t *testing.T) {
		locker := NewAssetLocker()

		var wg sync.WaitGroup
		sets := [][]int64{
			{1, 2, 3},
			{3, 2, 1},
			{2, 3},
			{1, 3},
		}

		for i := 0; i < 25; i++ {
			for _, set := range sets {
				wg.Add(1)
				go func(ids []int64) {
					defer wg.Done()
					unlock := locker.LockMany(ids)
					unlock()
				}(set)
			}
		}
		wg.Wait()
	})
}
