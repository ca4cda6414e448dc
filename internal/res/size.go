package res

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gompdf/pageflow/internal/unit"
	"github.com/srwiley/oksvg"
)

type size struct {
	w, h unit.Unit
}

// IntrinsicSize returns the natural size of an image in points. Raster
// images are measured from their header; SVG documents from their viewBox.
// One pixel is 0.75pt.
func (l *Loader) IntrinsicSize(src string) (width, height unit.Unit, err error) {
	l.cacheLock.RLock()
	s, ok := l.sizes[src]
	l.cacheLock.RUnlock()
	if ok {
		return s.w, s.h, nil
	}

	res, err := l.LoadImage(src)
	if err != nil {
		return 0, 0, err
	}
	if res.Type == ResourceTypeSVG {
		s, err = svgSize(res.Data)
	} else {
		s, err = rasterSize(res.Data)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("res: size of %s: %w", src, err)
	}

	l.cacheLock.Lock()
	l.sizes[src] = s
	l.cacheLock.Unlock()
	return s.w, s.h, nil
}

func rasterSize(data []byte) (size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return size{}, err
	}
	return size{unit.Px(float64(cfg.Width)), unit.Px(float64(cfg.Height))}, nil
}

func svgSize(data []byte) (size, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return size{}, err
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return size{}, fmt.Errorf("svg without a viewBox")
	}
	return size{unit.Px(icon.ViewBox.W), unit.Px(icon.ViewBox.H)}, nil
}
