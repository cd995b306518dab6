// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package badger

import (
	"bytes"
	"encoding/binary"

	"github.com/samirscode/zipkin/model"
)

// Keys are written in big-endian order so lexicographic iteration
// yields timestamp-sorted index scans. Dimension fields are separated
// by a zero byte so "service1"+"x" never collides with "service"+"1x".
const (
	spanKeyPrefix        byte = 0x80
	serviceIndexKey      byte = 0x81
	spanNameIndexKey     byte = 0x82
	annotationIndexKey   byte = 0x83
	binaryAnnoIndexKey   byte = 0x84
	traceStatsKey        byte = 0x86
	jsonEncoding         byte = 0x01
	fieldSeparator       byte = 0x00
	indexKeySuffixLength      = 16 // ts(8) + traceID(8)
)

func spanKey(traceID model.TraceID, spanID model.SpanID) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(spanKeyPrefix)
	binary.Write(buf, binary.BigEndian, uint64(traceID))
	binary.Write(buf, binary.BigEndian, uint64(spanID))
	return buf.Bytes()
}

func traceKeyPrefix(traceID model.TraceID) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(spanKeyPrefix)
	binary.Write(buf, binary.BigEndian, uint64(traceID))
	return buf.Bytes()
}

// indexKey builds prefix|field0|0x00|field1|0x00|...|ts|traceID.
func indexKey(prefix byte, ts int64, traceID model.TraceID, fields ...string) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(prefix)
	for _, f := range fields {
		buf.WriteString(f)
		buf.WriteByte(fieldSeparator)
	}
	binary.Write(buf, binary.BigEndian, uint64(ts))
	binary.Write(buf, binary.BigEndian, uint64(traceID))
	return buf.Bytes()
}

// indexSeekPrefix is indexKey without the timestamp/trace id suffix.
func indexSeekPrefix(prefix byte, fields ...string) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(prefix)
	for _, f := range fields {
		buf.WriteString(f)
		buf.WriteByte(fieldSeparator)
	}
	return buf.Bytes()
}

// parseIndexKeySuffix extracts the timestamp and trace id trailing an
// index key. Returns false for a key too short to carry them.
func parseIndexKeySuffix(key []byte) (int64, model.TraceID, bool) {
	if len(key) < indexKeySuffixLength {
		return 0, 0, false
	}
	tsStart := len(key) - indexKeySuffixLength
	ts := int64(binary.BigEndian.Uint64(key[tsStart : tsStart+8]))
	traceID := model.TraceID(binary.BigEndian.Uint64(key[tsStart+8:]))
	return ts, traceID, true
}

func statsKey(traceID model.TraceID) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(traceStatsKey)
	binary.Write(buf, binary.BigEndian, uint64(traceID))
	return buf.Bytes()
}

func encodeStats(minTs, maxTs int64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], uint64(minTs))
	binary.BigEndian.PutUint64(buf[8:], uint64(maxTs))
	return buf
}

func decodeStats(val []byte) (minTs, maxTs int64) {
	if len(val) != 16 {
		return 0, 0
	}
	return int64(binary.BigEndian.Uint64(val[:8])), int64(binary.BigEndian.Uint64(val[8:]))
}
