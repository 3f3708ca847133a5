package util

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanBytes formats n with two decimals in binary units, e.g. 104857600 -> "100.00MB".
func HumanBytes(n int64) string {
	i := 0
	val := float64(n)

	for val >= 1024 && i < len(byteUnits)-1 {
		val /= 1024
		i++
	}

	return fmt.Sprintf("%.2f%s", val, byteUnits[i])
}
