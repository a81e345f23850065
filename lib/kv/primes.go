package kv

import "sort"

// The bucket counts grow roughly doubling through the primes.
var primes = [...]uint64{
	53, 97, 193, 389, 769,
	1543, 3079, 6151, 12289, 24593,
	49157, 98317, 196613, 393241, 786433,
	1572869, 3145739, 6291469, 12582917, 25165843,
	50331653, 100663319, 201326611, 402653189, 805306457,
	1610612741, 3221225473, 4294967291,
}

// nextPrime returns the smallest listed prime not less than n, or the
// largest one if n exceeds the list.
func nextPrime(n uint64) uint64 {
	i := sort.Search(len(primes), func(i int) bool {
		return primes[i] >= n
	})
	if i >= len(primes) {
		return primes[len(primes)-1]
	}
	return primes[i]
}

func maxBucketCount() uint64 {
	return primes[len(primes)-1]
}
