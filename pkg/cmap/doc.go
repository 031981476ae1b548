// Package cmap provides a sharded concurrent map.
//
// Keys are spread across a power-of-two number of shards, each guarded by
// its own RWMutex, so unrelated keys rarely contend:
//
//	m := cmap.New[string, *clientLimiter]()
//	c, _ := m.GetOrSet(ip, newClientLimiter())
//
// Range and DeleteFunc lock one shard at a time. They do not observe a
// consistent snapshot of the whole map.
package cmap
