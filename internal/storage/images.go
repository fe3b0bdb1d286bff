package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ThumbWidth is the width of the listing image; the original upload is kept
// as the large image.
const ThumbWidth = 500

// MaxPixels bounds the decoded canvas. Headers are checked before decoding,
// so a small file declaring a huge canvas is rejected without allocating it.
const MaxPixels = 40_000_000

var (
	ErrNotAnImage    = errors.New("file is not a jpeg or png image")
	ErrImageTooLarge = errors.New("image dimensions are too large")
)

type ObjectStore interface {
	Key(prefix, name string) string
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type ItemImages struct {
	Image      string `json:"image"`
	LargeImage string `json:"largeImage"`
}

// Images uploads item pictures in two sizes.
type Images struct {
	Store ObjectStore
}

func (im Images) Upload(ctx context.Context, name string, data []byte) (ItemImages, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ItemImages{}, ErrNotAnImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return ItemImages{}, ErrImageTooLarge
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ItemImages{}, ErrNotAnImage
	}

	large, err := im.Store.Put(ctx, im.Store.Key("items/large", name), "image/"+format, data)
	if err != nil {
		return ItemImages{}, err
	}

	thumb, err := thumbnail(src, ThumbWidth)
	if err != nil {
		return ItemImages{}, err
	}
	small, err := im.Store.Put(ctx, im.Store.Key("items", name+".jpg"), "image/jpeg", thumb)
	if err != nil {
		return ItemImages{}, err
	}
	return ItemImages{Image: small, LargeImage: large}, nil
}

func thumbnail(src image.Image, width int) ([]byte, error) {
	b := src.Bounds()
	if b.Dx() > width {
		h := b.Dy() * width / b.Dx()
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
