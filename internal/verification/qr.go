package verification

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrHeader is returned when at least one QR region decoded cleanly but none
// of the decoded payloads carried the MATRIX tag.
var ErrHeader = errors.New("no scanned QR code carried a verification payload")

// EncodeQR frames a verification record and renders it as a size-by-size
// pixel QR code. Oversized payloads surface as a capacity error; callers can
// shorten the flow id to recover.
//
// The payload goes through the writer as a single ISO-8859-1 byte-mode
// segment. A segment-splitting encoder would put the leading ASCII magic in
// an alphanumeric segment, which scanners report separately from the byte
// segments, and the tag check on the scanning side would never see it.
func EncodeQR(mode byte, flowID, firstKey, secondKey, sharedSecret string, size int) (*gozxing.BitMatrix, error) {
	data, err := Encode(mode, flowID, firstKey, secondKey, sharedSecret)
	if err != nil {
		return nil, err
	}

	hints := map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_CHARACTER_SET: "ISO-8859-1",
	}
	matrix, err := qrcode.NewQRCodeWriter().Encode(
		latin1String(data), gozxing.BarcodeFormat_QR_CODE, size, size, hints)
	if err != nil {
		return nil, fmt.Errorf("verification payload does not fit a QR code: %w", err)
	}
	return matrix, nil
}

// DecodeImage scans img for QR codes and returns the raw bytes of the first
// one whose payload starts with the MATRIX tag.
//
// A live camera frame can contain several detected regions, some of them
// misreads or foreign codes, so every candidate is tried and the first
// tag-matching payload wins. If regions decoded but none matched, the result
// is ErrHeader; if nothing decoded at all, the scanner's error is returned.
func DecodeImage(img image.Image) ([]byte, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, err
	}

	results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, nil)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		payload := resultBytes(result)
		if bytes.HasPrefix(payload, magic) {
			return payload, nil
		}
	}
	return nil, ErrHeader
}

// ScanImage decodes the first verification record found in img.
func ScanImage(img image.Image) (*Payload, error) {
	data, err := DecodeImage(img)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// resultBytes recovers the raw payload bytes from a scan result.
//
// The byte segments metadata carries byte-mode content exactly, but only
// byte-mode content: an encoder that split the leading ASCII into a numeric
// or alphanumeric segment leaves it out of the metadata. The segments are
// therefore only trusted when they already carry the tag; otherwise the
// result text, which concatenates every segment, is mapped rune-for-byte
// back into ISO-8859-1.
func resultBytes(result *gozxing.Result) []byte {
	meta := result.GetResultMetadata()
	if segs, ok := meta[gozxing.ResultMetadataType_BYTE_SEGMENTS].([][]byte); ok {
		var payload []byte
		for _, seg := range segs {
			payload = append(payload, seg...)
		}
		if bytes.HasPrefix(payload, magic) {
			return payload
		}
	}
	return latin1Bytes(result.GetText())
}

// latin1String maps each byte to the rune of the same value, so the QR
// writer's ISO-8859-1 byte mode carries data losslessly.
func latin1String(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// latin1Bytes inverts latin1String. Runes above 0xff cannot come from an
// ISO-8859-1 payload, so such text is returned in its UTF-8 form and will
// fail the tag check naturally.
func latin1Bytes(text string) []byte {
	buf := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xff {
			return []byte(text)
		}
		buf = append(buf, byte(r))
	}
	return buf
}
