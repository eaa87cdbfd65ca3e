// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice holds the small generic helpers the standard [slices]
// package lacks.
package slice

// Map returns transform applied to every element. A nil input stays nil.
func Map[T, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, value := range input {
		result[i] = transform(value)
	}
	return result
}

// Filter keeps the elements for which keep reports true, in order.
func Filter[T any](input []T, keep func(T) bool) []T {
	var result []T
	for _, value := range input {
		if keep(value) {
			result = append(result, value)
		}
	}
	return result
}

// Unique drops repeated elements, keeping the first occurrence of each.
// The result is never nil.
func Unique[T comparable](input []T) []T {
	seen := make(map[T]struct{}, len(input))
	result := make([]T, 0, len(input))
	for _, value := range input {
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
