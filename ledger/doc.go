// Package ledger contains the durable daily cost/usage accumulator and its
// backing store implementations. The Store interface requires only atomic
// increment and point-in-time read semantics; the Redis implementation is the
// production backend, the in-memory implementation serves tests and local
// development.
//
// A "day" is the UTC calendar date of the serving process. Entries are
// monotonically non-decreasing within a day, reset only by an explicit
// administrative action, and expire after a retention window.
package ledger
