// Package book implements the in-memory limit order book for a single
// instrument. Matching follows price-time priority: better prices trade
// first, and orders at the same price trade in arrival order. The book is
// not safe for concurrent use; the simulation driver serializes access.
package book
