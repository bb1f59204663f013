// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with the two generic
helpers the batch tooling needs: projecting results and selecting failures.
*/
package slice

// Map projects every element of input through transform, keeping order.
// A nil input yields nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Count returns how many elements satisfy predicate.
func Count[T any](input []T, predicate func(T) bool) int {
	count := 0
	for _, v := range input {
		if predicate(v) {
			count++
		}
	}
	return count
}
