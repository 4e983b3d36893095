// SPDX-License-Identifier: Apache-2.0

// Package utils provides general-purpose helper utilities used across
// different parts of the application.
package utils

import "github.com/google/uuid"

// UUIDGenerator issues note identifiers. Time-ordered UUIDv7 is preferred
// so ids sort roughly by creation time; random v4 is the fallback when the
// v7 clock source fails.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
