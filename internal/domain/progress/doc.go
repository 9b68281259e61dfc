// Package progress groups concurrent acquisition requests into one
// user-visible progress unit.
//
// The first task acquired while none are outstanding starts a fresh
// batch; every task resolved or canceled updates it; when the last
// outstanding task finishes, the batch reports finished exactly once
// and the next acquisition starts over. A destroyed consumer still
// resolves its task, so a late response can never strand the batch.
package progress
