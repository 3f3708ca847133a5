package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type semver struct {
	parts      [3]int
	prerelease string
}

func parse(s string) (semver, error) {
	var v semver

	core, pre, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(s), "v"), "-")
	v.prerelease = pre

	fields := strings.Split(core, ".")
	if len(fields) == 0 || len(fields) > 3 {
		return v, fmt.Errorf("invalid version %q", s)
	}

	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return v, fmt.Errorf("invalid version %q", s)
		}
		v.parts[i] = n
	}

	return v, nil
}

// Compare orders two versions such as "1.2.3", "v1.2" or "1.3.0-rc.1".
// It returns 1 if a > b, -1 if a < b and 0 if they are equal.
// A pre-release sorts before the release it precedes.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range lo.Zip2(av.parts[:], bv.parts[:]) {
		switch {
		case pair.A > pair.B:
			return 1, nil
		case pair.A < pair.B:
			return -1, nil
		}
	}

	switch {
	case av.prerelease == bv.prerelease:
		return 0, nil
	case av.prerelease == "":
		return 1, nil
	case bv.prerelease == "":
		return -1, nil
	case av.prerelease > bv.prerelease:
		return 1, nil
	default:
		return -1, nil
	}
}
