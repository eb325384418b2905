package gopaginator

const (
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax returns the page size that will actually be requested
// and whether the input was already within (0, maxLimit].
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	if limit <= 0 {
		return min(DefaultLimit, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}
