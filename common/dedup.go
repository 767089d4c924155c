package common

import (
	"bytes"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent calls for the same key into one.
// A key is forgotten as soon as its call settles, so the next call after
// that runs again.
type Deduplicator struct {
	group    singleflight.Group
	inFlight atomic.Int64
}

// NewDeduplicator returns an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Do runs produce once per key per overlapping window. Every caller that
// joined the window gets the same bytes or the same error; shared reports
// whether the result went to more than one caller, in which case each
// caller gets its own copy.
func (d *Deduplicator) Do(key string, produce func() ([]byte, error)) (value []byte, shared bool, err error) {
	v, err, shared := d.group.Do(key, func() (interface{}, error) {
		d.inFlight.Add(1)
		defer d.inFlight.Add(-1)
		return produce()
	})
	if v == nil {
		return nil, shared, err
	}
	if shared {
		return bytes.Clone(v.([]byte)), shared, err
	}
	return v.([]byte), shared, err
}

// InFlight is the number of keys with an unsettled call.
func (d *Deduplicator) InFlight() int {
	return int(d.inFlight.Load())
}
