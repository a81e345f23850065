package kv

import (
	"fmt"

	"github.com/benz9527/xstl/lib/infra"
)

// BucketViolationValidate checks every value is chained in the bucket of
// its key, the equal keys are adjacent and the count matches the chains.
func BucketViolationValidate[K any, V any](tb *HashTable[K, V]) error {
	if !tb.allocated() {
		if tb.count != 0 {
			return infra.WrapErrorStackWithMessage(errCountViolation, "values without buckets")
		}
		return nil
	}

	total := int64(0)
	for n, first := range tb.bkts.slots {
		for cur := first; cur != nil; cur = cur.next {
			if m := tb.bkts.bucketOf(cur.val); m != n {
				return infra.WrapErrorStackWithMessage(errBucketViolation,
					fmt.Sprintf("value of bucket %d chained in bucket %d", m, n))
			}
			total++

			// Once the run of the equal keys ends, the key never shows up
			// again in the chain.
			k := tb.keyOf(cur.val)
			aux := cur.next
			for ; aux != nil && tb.keyEqual(aux, k); aux = aux.next {
			}
			for ; aux != nil; aux = aux.next {
				if tb.keyEqual(aux, k) {
					return infra.WrapErrorStackWithMessage(errBucketViolation,
						fmt.Sprintf("equal keys are not adjacent in bucket %d", n))
				}
			}
		}
	}
	if total != tb.count {
		return infra.WrapErrorStackWithMessage(errCountViolation,
			fmt.Sprintf("chained %d values, but count is %d", total, tb.count))
	}
	return nil
}
