package nodelink

import (
	"context"
	"time"

	"github.com/L1TangDingZhen/BOX-P/pkg/cache"
)

const svgKeyPrefix = "svg"

// SVGKey returns the cache key for the SVG rendering of dot.
func SVGKey(dot string) string { return cache.Key(svgKeyPrefix, []byte(dot)) }

// RenderSVGCached serves the SVG for dot from c, rendering and storing it on
// a miss. hit reports whether c served the result. Cache read and write
// failures fall back to rendering and are otherwise ignored.
func RenderSVGCached(ctx context.Context, c cache.Cache, dot string, ttl time.Duration) (svg []byte, hit bool, err error) {
	key := SVGKey(dot)
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	svg, err = RenderSVGContext(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, svg, ttl)
	return svg, false, nil
}
