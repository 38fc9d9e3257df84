// Package fingerprint computes a fast, order-independent hash of a
// MetaData value so bucket.Assembler can cheaply pre-check whether two
// buckets share identical metadata before falling back to a full
// comparison.
package fingerprint

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/cyface-de/serialization-go/model"
)

// Of returns an xxhash digest of m's fields. Two MetaData values with the
// same digest are very likely equal; bucket.Assembler still falls back to a
// direct struct comparison before treating buckets as consistent, since a
// hash collision must never silently merge divergent metadata.
func Of(m model.MetaData) uint64 {
	d := xxhash.New()

	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}

	write(m.Identifier.DeviceID)
	write(strconv.FormatUint(m.Identifier.MeasurementID, 10))
	write(m.DeviceType)
	write(m.OSVersion)
	write(m.AppVersion)
	write(strconv.FormatFloat(m.LengthMeters, 'g', -1, 64))
	write(m.UserID)
	write(strconv.FormatUint(uint64(m.FormatVersion), 10))
	write(strconv.FormatInt(m.UploadTimestamp, 10))

	return d.Sum64()
}
