package main

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const qrImageSize = 300

// qrASCII renders the otpauth URI as a QR symbol made of block characters
// for terminal display. The symbol encoding itself is boombuler/barcode's
// job; unscaled, the barcode is one pixel per module.
func qrASCII(content string) (string, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	bounds := code.Bounds()
	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := code.At(x, y).RGBA()
			if r == 0 && g == 0 && b == 0 {
				sb.WriteString("██")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// qrPNG writes the otpauth URI as a scannable PNG image.
func qrPNG(content, path string) error {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}

	scaled, err := barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return fmt.Errorf("failed to scale QR code: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, scaled); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
