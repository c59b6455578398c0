package store

import (
	"sync"

	"github.com/google/btree"

	"biomassopt/pkg/common"
)

type cacheItem struct {
	rec common.CalcRecord
}

func (i cacheItem) Less(than btree.Item) bool {
	return i.rec.ID < than.(cacheItem).rec.ID
}

// recordCache keeps the newest records ordered by sequence id so that
// latest/history reads skip the database. It is bounded: once full,
// the lowest id is evicted on insert.
type recordCache struct {
	tree *btree.BTree
	lock sync.RWMutex
	max  int
}

func newRecordCache(max int) *recordCache {
	if max < 1 {
		max = 1
	}
	return &recordCache{
		tree: btree.New(32),
		max:  max,
	}
}

func (c *recordCache) Add(rec common.CalcRecord) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.tree.ReplaceOrInsert(cacheItem{rec: rec})
	if c.tree.Len() > c.max {
		c.tree.DeleteMin()
	}
}

func (c *recordCache) Latest() (common.CalcRecord, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	item := c.tree.Max()
	if item == nil {
		return common.CalcRecord{}, false
	}
	return item.(cacheItem).rec, true
}

// Newest returns up to limit records in descending id order.
func (c *recordCache) Newest(limit int) []common.CalcRecord {
	c.lock.RLock()
	defer c.lock.RUnlock()

	records := make([]common.CalcRecord, 0, limit)
	c.tree.Descend(func(i btree.Item) bool {
		records = append(records, i.(cacheItem).rec)
		return len(records) < limit
	})
	return records
}

func (c *recordCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.tree.Len()
}

func (c *recordCache) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.tree.Clear(false)
}
