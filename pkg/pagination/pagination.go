package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any query can request.
	MaxLimit = 100
	// MaxOffset bounds how deep offset pagination can walk.
	MaxOffset = 100000
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset clamps negative offsets to zero.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// Normalize returns params with both fields clamped.
func Normalize(params Params) Params {
	return Params{
		Limit:  NormalizeLimit(params.Limit),
		Offset: NormalizeOffset(params.Offset),
	}
}

// HasMore reports whether rows remain past the current page.
func HasMore(total, limit, offset int) bool {
	return offset+limit < total
}
