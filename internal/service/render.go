package service

import (
	"voucher-service/internal/models"
	"voucher-service/internal/qr"

	"go.uber.org/zap"
)

// attachProductQR fills in the base64 QR image for a product record.
// Image generation failure is logged, not fatal; the raw payload in
// qr_code_data is always present.
func attachProductQR(product *models.Product, logger *zap.Logger) {
	image, err := qr.EncodeBase64(product.QRCodeData)
	if err != nil {
		logger.Error("Failed to render product QR image",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return
	}
	product.QRCodeImage = image
}

// attachTicketQR fills in the base64 QR image for a ticket record
func attachTicketQR(ticket *models.Ticket, logger *zap.Logger) {
	image, err := qr.EncodeBase64(ticket.QRCodeData)
	if err != nil {
		logger.Error("Failed to render ticket QR image",
			zap.Int64("ticket_number", ticket.TicketNumber),
			zap.Error(err))
		return
	}
	ticket.QRCodeImage = image
}
