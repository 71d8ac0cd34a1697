// models/qrcode.go
package models

import "time"

// QRCode is one entry in the admin-curated payment QR catalog
type QRCode struct {
	ID   string `json:"id" bson:"id"` // "qr_" + uuid
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

// QRCatalog is the singleton document in the adminData collection that
// holds every registered payment QR code.
type QRCatalog struct {
	ID        string    `json:"id" bson:"_id"` // always "qrCodes"
	QRCodes   []QRCode  `json:"qrCodes" bson:"qrCodes"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// QRCatalogDocID is the fixed _id of the singleton catalog document
const QRCatalogDocID = "qrCodes"

// GenerateQRRequest model for server-side QR generation from a payment URI
type GenerateQRRequest struct {
	Name       string `json:"name" validate:"required"`
	PaymentURI string `json:"paymentUri" validate:"required"`
}

// QRCodeResponse model
type QRCodeResponse struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    *QRCode `json:"data,omitempty"`
}

// QRCodesResponse model for the full catalog
type QRCodesResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    []QRCode `json:"data,omitempty"`
}
