// Package query runs filter/limit queries over a container's live elements.
//
// A container exposes itself as a Source. Run walks the source in its own
// order, keeps elements for which the filter holds, and stops once the
// limit is reached. Each match comes back as a Result bound to the source,
// so the caller can re-locate or delete it later:
//
//	for _, r := range query.Run(src, query.All(isRed, isLarge), query.Options{Limit: 2}) {
//	    r.Delete()
//	}
//
// Results do not snapshot positions. Index re-finds the element by identity
// each time it is called, and both Index and Delete report "not found" once
// the element has left the container.
package query
