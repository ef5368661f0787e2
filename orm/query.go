package orm

import "github.com/iov-one/drip"

// queryPrefix returns all models with the given key prefix,
// in ascending key order.
func queryPrefix(db drip.ReadOnlyKVStore, prefix []byte) []drip.Model {
	itr := db.Iterator(prefix, prefixEnd(prefix))
	return ConsumeIterator(itr)
}

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr drip.Iterator) []drip.Model {
	defer itr.Close()

	res := []drip.Model{}
	for ; itr.Valid(); itr.Next() {
		mod := drip.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		}
		res = append(res, mod)
	}
	return res
}

// prefixEnd returns the first key outside the range of keys
// beginning with prefix, or nil if prefix is all 0xff.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
