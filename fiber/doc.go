// Package fiber is an incremental tree reconciler. A Root keeps the committed
// (current) tree and builds a work-in-progress tree for the next description
// one unit of work at a time: a capture step walks down creating or reusing
// nodes, a completion step walks back up collecting nodes that need mutation
// into a post-order effect list. The finished list is applied to a Target in
// three passes that never suspend, then the trees swap.
//
// Passes run either to completion (Render, Flush) or in slices that stop when
// a Yielder says so (Work), resuming from where they left off.
package fiber
