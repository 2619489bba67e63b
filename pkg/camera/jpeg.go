package camera

import (
	"bytes"
	"image"
	"image/jpeg"
)

// EncodeJPEG converts an RGB image to JPEG bytes.
func EncodeJPEG(img *image.RGBA, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
