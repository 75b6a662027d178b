// Package resource implements the Controller that bounds what concurrent
// density evaluations may consume.
//
//   - Memory: accumulator and tree buffers are reserved before a traversal
//     starts and released when it ends
//   - Workers: parallel traversal tasks hold a slot while they run
//   - IO: persisted datasets and results are written through a token bucket
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxWorkers:         8,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// All methods are safe for concurrent use and are no-ops on a nil Controller.
package resource
