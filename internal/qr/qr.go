package qr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrMalformedPayload is returned when a scanned string is not a
// payload this service produced. Callers should treat it as a
// re-scan condition, not as a missing ticket.
var ErrMalformedPayload = errors.New("malformed qr payload")

const (
	productPrefix = "product:"
	ticketPrefix  = "ticket:"
)

// Identity kinds
const (
	KindProduct = "product"
	KindTicket  = "ticket"
)

// Identity is the decoded content of a QR payload.
type Identity struct {
	Kind  string
	Value string
}

// ProductPayload derives the stable QR payload for a product. It
// depends on product_id only, so edits to name or value never change
// already-printed codes.
func ProductPayload(productID string) string {
	return productPrefix + productID
}

// TicketPayload derives the QR payload for a ticket number.
func TicketPayload(ticketNumber int64) string {
	return fmt.Sprintf("%s%d", ticketPrefix, ticketNumber)
}

// DecodePayload parses a scanned payload back into an identity.
func DecodePayload(payload string) (Identity, error) {
	switch {
	case strings.HasPrefix(payload, productPrefix):
		id := strings.TrimPrefix(payload, productPrefix)
		if id == "" {
			return Identity{}, ErrMalformedPayload
		}
		return Identity{Kind: KindProduct, Value: id}, nil
	case strings.HasPrefix(payload, ticketPrefix):
		num := strings.TrimPrefix(payload, ticketPrefix)
		if _, err := strconv.ParseInt(num, 10, 64); err != nil {
			return Identity{}, ErrMalformedPayload
		}
		return Identity{Kind: KindTicket, Value: num}, nil
	default:
		return Identity{}, ErrMalformedPayload
	}
}

// EncodePNG renders a payload as a QR PNG. Output is deterministic
// for a given payload.
func EncodePNG(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr payload: %w", err)
	}
	return png, nil
}

// EncodeBase64 renders a payload as a base64 PNG for embedding in
// JSON responses.
func EncodeBase64(payload string) (string, error) {
	png, err := EncodePNG(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
