// Package redis provides a distributed commit lock and a workspace store
// backed by Redis.
package redis
