package thumbnail

import (
	"golang.org/x/sync/singleflight"

	"webmedia/internal/metrics"
)

// regenGroup collapses concurrent refreshes of one derivative into a single
// call whose result every caller shares.
type regenGroup struct {
	g singleflight.Group
}

type regenResult struct {
	dims      Dimensions
	generated bool
}

func (r *regenGroup) do(key string, fn func() (Dimensions, bool, error)) (Dimensions, bool, error) {
	v, err, shared := r.g.Do(key, func() (any, error) {
		dims, generated, err := fn()
		return regenResult{dims: dims, generated: generated}, err
	})
	if shared {
		metrics.ThumbnailSharedRegenerations.Inc()
	}
	res, _ := v.(regenResult)
	return res.dims, res.generated, err
}
