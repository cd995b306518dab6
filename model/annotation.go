// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

// Core annotation values marking the four RPC lifecycle events.
const (
	ClientSend = "cs"
	ClientRecv = "cr"
	ServerRecv = "sr"
	ServerSend = "ss"
)

// Annotation records that something happened at a point in time on a host.
// Timestamps are microseconds since epoch.
type Annotation struct {
	Timestamp int64    `json:"timestamp"`
	Value     string   `json:"value"`
	Host      Endpoint `json:"host"`
}

// AnnotationType tags the payload encoding of a BinaryAnnotation value.
type AnnotationType int32

const (
	AnnotationBool AnnotationType = iota
	AnnotationBytes
	AnnotationI16
	AnnotationI32
	AnnotationI64
	AnnotationDouble
	AnnotationString
)

func (t AnnotationType) String() string {
	switch t {
	case AnnotationBool:
		return "BOOL"
	case AnnotationBytes:
		return "BYTES"
	case AnnotationI16:
		return "I16"
	case AnnotationI32:
		return "I32"
	case AnnotationI64:
		return "I64"
	case AnnotationDouble:
		return "DOUBLE"
	case AnnotationString:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// BinaryAnnotation is a key/value fact attached to a span. It is not
// inherently time-ordered and is never touched by skew adjustment.
type BinaryAnnotation struct {
	Key            string         `json:"key"`
	Value          []byte         `json:"value"`
	AnnotationType AnnotationType `json:"annotationType"`
	Host           Endpoint       `json:"host"`
}

// StringAnnotation is a convenience constructor for string-typed
// binary annotations.
func StringAnnotation(key, value string, host Endpoint) BinaryAnnotation {
	return BinaryAnnotation{
		Key:            key,
		Value:          []byte(value),
		AnnotationType: AnnotationString,
		Host:           host,
	}
}
