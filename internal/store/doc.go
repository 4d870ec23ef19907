// Package store keeps the latest check result of a monitor and fans updates
// out to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Record]: Storage representation of one check
//   - [Snapshot]: Latest record plus running counters
//
// Only the latest result is kept; there is no history. Subscribers receive
// updates via channels with non-blocking sends (slow subscribers will miss
// updates rather than block the monitor).
package store
