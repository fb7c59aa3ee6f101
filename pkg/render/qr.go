package render

import (
	"context"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"badgeforge/pkg/cache"
	"badgeforge/pkg/errors"
)

// qrPixels is the raster edge length of encoded QR codes. The image is
// scaled to the 40mm badge slot at draw time, so the exact value only
// affects print sharpness.
const qrPixels = 256

// Encoder turns a payload string into a PNG raster.
type Encoder interface {
	Encode(ctx context.Context, payload string) ([]byte, error)
}

// QREncoder encodes QR codes at recovery level Low, matching the badge
// scanners in use: badges are printed large and scanned up close, so the
// lowest redundancy (and densest payload capacity) is sufficient.
type QREncoder struct{}

// Encode returns the payload as a PNG-encoded QR code.
// Encoding is deterministic: identical payloads yield identical bytes.
func (QREncoder) Encode(ctx context.Context, payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Low, qrPixels)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode QR for %q", payload)
	}
	return png, nil
}

// CachedEncoder wraps an Encoder with a byte cache keyed by payload
// hash. Cache failures fall back to encoding; they never fail a run.
type CachedEncoder struct {
	Inner Encoder
	Cache cache.Cache
	TTL   time.Duration
}

// NewCachedEncoder wraps enc with c. Entries never expire by default.
func NewCachedEncoder(enc Encoder, c cache.Cache) *CachedEncoder {
	return &CachedEncoder{Inner: enc, Cache: c}
}

// Encode returns the cached raster for payload, encoding and storing it
// on a miss.
func (e *CachedEncoder) Encode(ctx context.Context, payload string) ([]byte, error) {
	key := "qr:" + cache.Hash([]byte(payload))

	if png, ok, err := e.Cache.Get(ctx, key); err == nil && ok {
		return png, nil
	}

	png, err := e.Inner.Encode(ctx, payload)
	if err != nil {
		return nil, err
	}
	_ = e.Cache.Set(ctx, key, png, e.TTL)
	return png, nil
}
