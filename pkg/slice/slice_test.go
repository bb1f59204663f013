// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicvoice/pkg/slice"
)

/*
TestMapAndCount covers projection order and predicate counting.
*/
func TestMapAndCount(t *testing.T) {
	numbers := []int{1, 2, 3, 4}

	assert.Equal(t, []string{"1", "2", "3", "4"}, slice.Map(numbers, strconv.Itoa))
	assert.Nil(t, slice.Map[int, string](nil, strconv.Itoa))

	assert.Equal(t, 2, slice.Count(numbers, func(n int) bool { return n%2 == 0 }))
	assert.Zero(t, slice.Count[int](nil, func(int) bool { return true }))
}
