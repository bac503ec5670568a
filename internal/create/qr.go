package create

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// QRPNG renders a share link as a QR code PNG, for receivers scanning from
// a phone on the same network. The server offers the same image via the
// creation response's qr_link; rendering locally works even when the link
// is shown after the server went away.
func QRPNG(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}

	code, err := qr.Encode(link, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
