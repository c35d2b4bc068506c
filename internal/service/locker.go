package service

import (
	"sort"
	"sync"
)

// AssetLocker serializes mutating operations per asset. Every purchase,
// transfer, distribution, and claim takes the asset's lock before
// reading state, so a decrement-and-check on the available pool can
// never interleave with another mutation on the same asset.
type AssetLocker struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewAssetLocker creates an empty AssetLocker.
func NewAssetLocker() *AssetLocker {
	return &AssetLocker{
		locks: make(map[int64]*sync.Mutex),
	}
}

func (l *AssetLocker) lockFor(assetID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[assetID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[assetID] = m
	}
	return m
}

// Lock acquires the mutex for a single asset and returns its unlock function.
func (l *AssetLocker) Lock(assetID int64) func() {
	m := l.lockFor(assetID)
	m.Lock()
	return m.Unlock
}

// LockMany acquires the mutexes for a set of assets in ascending id
// order and returns a function releasing all of them. The fixed order
// prevents deadlock between overlapping bulk purchases.
func (l *AssetLocker) LockMany(assetIDs []int64) func() {
	unique := make(map[int64]bool, len(assetIDs))
	ids := make([]int64, 0, len(assetIDs))
	for _, id := range assetIDs {
		if !unique[id] {
			unique[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		m := l.lockFor(id)
		m.Lock()
		locked = append(locked, m)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
