// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"net"
)

// Endpoint identifies a service instance that recorded an annotation.
// It is a comparable value type and is embedded by value everywhere.
type Endpoint struct {
	ServiceName string `json:"serviceName"`
	IPv4        uint32 `json:"ipv4"`
	Port        uint16 `json:"port"`
}

// NewEndpoint creates an Endpoint from a service name and a dotted-quad
// IPv4 address. An unparsable address yields address 0.
func NewEndpoint(serviceName, ipv4 string, port uint16) Endpoint {
	return Endpoint{
		ServiceName: serviceName,
		IPv4:        packIPv4(ipv4),
		Port:        port,
	}
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s@%s:%d", e.ServiceName, unpackIPv4(e.IPv4), e.Port)
}

func packIPv4(s string) uint32 {
	ip := net.ParseIP(s)
	if ip == nil {
		return 0
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

func unpackIPv4(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
