package res

// Register a broad set of image decoders so image.DecodeConfig and
// image.Decode handle every raster format a document may reference.
import (
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)
