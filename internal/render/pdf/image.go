package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/unit"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgScale is the rasterisation density of SVG graphics in pixels per point.
const svgScale = 2

var errNoLoader = errors.New("pdf: no resource loader")

type registered struct {
	name string
	opts fpdf.ImageOptions
}

// renderComponent draws the image of a Component run, or a placeholder box
// when the source cannot be loaded.
func (j *job) renderComponent(r layout.Run, x, y unit.Unit) {
	box := layout.Rect{X: x, Y: y, Width: r.Width, Height: r.Height}
	name, opts, err := j.image(r.Src, r.Width, r.Height)
	if err != nil {
		j.Logger.Warn("image not rendered", "src", r.Src, "owner", r.Owner, "err", err)
		j.placeholder(box)
		return
	}
	j.pdf.ImageOptions(name, x.Points(), y.Points(), r.Width.Points(), r.Height.Points(), false, opts, 0, "")
}

// placeholder outlines box and crosses it out.
func (j *job) placeholder(b layout.Rect) {
	j.pdf.SetDrawColor(160, 160, 160)
	j.pdf.SetLineWidth(0.5)
	rect(j.pdf, b, "D")
	x0, y0, x1, y1 := b.X.Points(), b.Y.Points(), b.Right().Points(), b.Bottom().Points()
	j.pdf.Line(x0, y0, x1, y1)
	j.pdf.Line(x0, y1, x1, y0)
}

// image registers src with the document once and returns its name. JPEG
// data is embedded as is; other rasters are re-encoded as PNG and SVG is
// rasterised at the drawn size.
func (j *job) image(src string, w, h unit.Unit) (string, fpdf.ImageOptions, error) {
	if r, ok := j.images[src]; ok {
		return r.name, r.opts, nil
	}
	if j.Loader == nil {
		return "", fpdf.ImageOptions{}, errNoLoader
	}
	rs, err := j.Loader.LoadImage(src)
	if err != nil {
		return "", fpdf.ImageOptions{}, err
	}

	var (
		data []byte
		typ  = "PNG"
	)
	switch {
	case rs.Type == res.ResourceTypeSVG:
		data, err = rasterizeSVG(rs.Data, w, h)
	case rs.MimeType == "image/jpeg":
		if _, _, err = image.DecodeConfig(rs.GetReader()); err == nil {
			data, typ = rs.Data, "JPG"
		}
	default:
		data, err = reencode(rs.Data)
	}
	if err != nil {
		return "", fpdf.ImageOptions{}, fmt.Errorf("pdf: decode %s: %w", src, err)
	}

	name := fmt.Sprintf("img%d", len(j.images))
	opts := fpdf.ImageOptions{ImageType: typ}
	j.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := j.pdf.Error(); err != nil {
		return "", opts, err
	}
	j.images[src] = registered{name: name, opts: opts}
	return name, opts, nil
}

// reencode decodes any registered raster format and writes it as PNG.
func reencode(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rasterizeSVG renders an SVG document into a PNG of the given size.
func rasterizeSVG(data []byte, w, h unit.Unit) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	pw := int(math.Max(1, math.Ceil(w.Points()*svgScale)))
	ph := int(math.Max(1, math.Ceil(h.Points()*svgScale)))
	icon.SetTarget(0, 0, float64(pw), float64(ph))

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
