// Package tasks implements the task query/mutation service and its
// collaborator contracts: the Task entity, list-query normalization, the
// persistence Store interface, and the cache-aside orchestration on top of
// both.
//
// Reads are cache-first: FindOne under task:<id>, FindAll under a canonical
// tasks:<query> key covering the entire query. Every mutation invalidates
// the affected entity key and sweeps all list keys. Cache failures never
// surface to callers; they degrade to misses and the store answers.
package tasks
