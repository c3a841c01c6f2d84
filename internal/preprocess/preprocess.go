// Package preprocess turns an uploaded image into the tensor layout the
// classifier expects: [1, 224, 224, 3] float32, row-major NHWC, RGB values
// scaled to [0,1].
package preprocess

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

const (
	Size     = 224
	Channels = 3
)

// Shape is the model input shape including the leading batch dimension.
var Shape = []int64{1, Size, Size, Channels}

// TensorLen is the number of float32 values in one input tensor.
const TensorLen = Size * Size * Channels

// Decode reads any registered image format. EXIF orientation is not applied.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return img, nil
}

// Tensor resizes img to Size×Size and flattens it to NHWC.
func Tensor(img image.Image) []float32 {
	resized := resize.Resize(Size, Size, img, resize.Bicubic)
	bounds := resized.Bounds()

	data := make([]float32, 0, TensorLen)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// alpha is dropped, not composited
			c := color.NRGBAModel.Convert(resized.At(x, y)).(color.NRGBA)
			data = append(data,
				float32(c.R)/255.0,
				float32(c.G)/255.0,
				float32(c.B)/255.0,
			)
		}
	}
	return data
}

func FromReader(r io.Reader) ([]float32, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Tensor(img), nil
}
