// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// EpochMicrosecondsAsTime converts microseconds since epoch to a
// time.Time value.
func EpochMicrosecondsAsTime(ts int64) time.Time {
	seconds := ts / 1000000
	nanos := 1000 * (ts % 1000000)
	return time.Unix(seconds, nanos)
}

// TimeAsEpochMicroseconds converts time.Time to microseconds since
// epoch, the resolution all annotation timestamps are stored in.
func TimeAsEpochMicroseconds(t time.Time) int64 {
	return t.UnixNano() / 1000
}

// MicrosecondsAsDuration converts a microsecond count to time.Duration.
func MicrosecondsAsDuration(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// DurationAsMicroseconds converts time.Duration to microseconds.
func DurationAsMicroseconds(d time.Duration) int64 {
	return d.Nanoseconds() / 1000
}
