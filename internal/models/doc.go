// Package models defines the core domain models for split-bill settlement.
//
// # Models
//
//   - SplitBill: a shared expense owned by its creator, with cached aggregates
//   - Participant: one user's fixed share of a split and its settlement status
//   - Notification: a typed event addressed to one user, enqueued for delivery
//   - Payment: a pending payment record created when a participant pays
//   - User: display identity resolved from the user directory
//
// # Design Principles
//
// 1. **The split is the root**: participants never exist without their split and are never deleted
// 2. **Aggregates are a cache**: SplitBill counters are always recomputed from the participants
// 3. **Exact amounts**: every amount is a money.Money in base units, never a float
// 4. **IDs over pointers**: relationships are expressed with ID strings
//
// Timestamps are Unix seconds; zero means unset.
package models
