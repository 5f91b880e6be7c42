// Package traverse walks a model subtree with concurrent fan-out and a single
// join.
//
// # Overview
//
// [Walker.Walk] loads the children of a root node and visits every reachable
// descendant exactly once. Each child starts a branch: the branch visits its
// node, loads the node's children, and starts one new branch per child. All
// branches of one walk belong to a single task group, and Walk returns when
// the group drains. That is the join: it happens once, after every reachable
// node was visited or its branch failed.
//
// # Failures
//
//   - The root's own child load failing aborts the walk before any node is
//     visited. Walk returns a CHILD_LOAD_FAILED error.
//   - A child load failing below the root ends that branch only. Its
//     descendants are never visited; sibling branches continue.
//   - A visitor error is recorded and the branch keeps descending.
//
// Branch failures are collected as [*BranchError] records and returned
// together, at the join, as a [*multierror.Error]:
//
//	stats, err := w.Walk(ctx, root)
//	var merr *multierror.Error
//	if errors.As(err, &merr) {
//	    for _, e := range merr.Errors {
//	        // each e is a *traverse.BranchError
//	    }
//	}
//
// # Concurrency
//
// Branches run on their own goroutines. Calls to the [model.ChildLoader] are
// bounded by Options.Concurrency; the bound is held only for the load itself,
// so deep trees cannot starve themselves. Visitors must be safe for
// concurrent use.
//
// [*multierror.Error]: https://pkg.go.dev/github.com/hashicorp/go-multierror#Error
package traverse
