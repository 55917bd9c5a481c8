package zoneminder

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeSuffixes = []string{"Kb", "Mb", "Gb", "Tb"}

// HumanSize formats a byte count for people, e.g. "2.17 Mb". Values under
// one kilobyte are reported in bytes.
func HumanSize(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " bytes"
	}
	v := float64(n)
	i := 0
	for v >= 1024 {
		v /= 1024
		if i == len(sizeSuffixes)-1 || v < 1024 {
			break
		}
		i++
	}
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " " + sizeSuffixes[i]
}
