// Package format renders large in-game numbers for Discord output.
package format

import (
	"fmt"
	"math"
	"strconv"
)

var shortNames = []string{"", " k", " M", " B", " T"}
var fullNames = []string{"", " Thousand", " Million", " Billion", " Trillion"}

// Short renders 1234567 as "1.23 M".
func Short(num float64) string {
	return display(num, shortNames)
}

// Full renders 1234567 as "1.23 Million".
func Full(num float64) string {
	return display(num, fullNames)
}

func display(num float64, names []string) string {
	if num < 10000 {
		if num == math.Trunc(num) {
			return strconv.FormatInt(int64(num), 10)
		}
		return strconv.FormatFloat(num, 'g', -1, 64)
	}
	pos := 0
	if num != 0 {
		pos = int(math.Floor(math.Log10(math.Abs(num)) / 3))
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(names)-1 {
		pos = len(names) - 1
	}
	scaled := math.Round(num/math.Pow(10, float64(3*pos))*100) / 100
	return fmt.Sprintf("%g%s", scaled, names[pos])
}
