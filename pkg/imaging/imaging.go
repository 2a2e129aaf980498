// Package imaging приводит изображения к виду, в котором они уходят в
// модель: непрозрачный RGB на белом фоне. Одна и та же нормализация
// применяется и при индексации, и к изображению поискового запроса,
// иначе их эмбеддинги несопоставимы.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/MametaroGG/BoothPic/pkg/e"
	_ "golang.org/x/image/webp"
)

// Normalizer декодирует jpeg/png/gif/webp и сводит изображение к
// непрозрачному PNG на белом фоне.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, e.Wrap(err.Error(), e.ErrImageDecodeFailed)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, e.Wrap(err.Error(), e.ErrImageDecodeFailed)
	}

	return buf.Bytes(), nil
}
