package aggregation

import "github.com/logistics-lab/palletbook/internal/core/storage"

// ReconcileStore is what the reconciler needs from the store: the buckets that
// hold data in a date window and a transaction to rebuild each one in.
type ReconcileStore interface {
	storage.Transactor
	storage.BucketLister
}
