package controllers

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appdesk/appdesk_backend/config"
	"github.com/appdesk/appdesk_backend/models"
	"github.com/appdesk/appdesk_backend/repositories"
	"github.com/appdesk/appdesk_backend/utils"
)

// AdminController contains the admin console logic: the full project list,
// the payment QR catalog and dashboard stats
type AdminController struct {
	DB     *mongo.Client
	repo   *repositories.ProjectRepository
	logger *log.Logger
}

// NewAdminController creates a new admin controller
func NewAdminController(db *mongo.Client) *AdminController {
	return &AdminController{
		DB:     db,
		repo:   repositories.NewProjectRepository(db),
		logger: log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// GetAllProjects returns every project, optionally filtered by ?status=
func (adc *AdminController) GetAllProjects(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !models.IsValidStatus(status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown project status",
		})
	}

	projects, err := adc.repo.FindAll(status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ProjectsResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch projects",
		})
	}

	return c.JSON(http.StatusOK, models.ProjectsResponse{
		Status:  http.StatusOK,
		Message: "Projects retrieved successfully",
		Data:    projects,
	})
}

// GetStats returns the per-status project counts for the dashboard
func (adc *AdminController) GetStats(c echo.Context) error {
	counts, err := adc.repo.CountByStatus()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute stats",
		})
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Stats retrieved successfully",
		Data: map[string]interface{}{
			"total":    total,
			"byStatus": counts,
		},
	})
}

// GetQRCodes returns the payment QR catalog
func (adc *AdminController) GetQRCodes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var catalog models.QRCatalog
	err := config.GetCollection(adc.DB, "adminData").FindOne(ctx, bson.M{"_id": models.QRCatalogDocID}).Decode(&catalog)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusOK, models.QRCodesResponse{
				Status:  http.StatusOK,
				Message: "QR code catalog is empty",
				Data:    []models.QRCode{},
			})
		}
		return c.JSON(http.StatusInternalServerError, models.QRCodesResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch QR codes",
		})
	}

	return c.JSON(http.StatusOK, models.QRCodesResponse{
		Status:  http.StatusOK,
		Message: "QR codes retrieved successfully",
		Data:    catalog.QRCodes,
	})
}

// addQRToCatalog pushes an entry into the singleton catalog document,
// creating it on first use
func (adc *AdminController) addQRToCatalog(entry models.QRCode) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(adc.DB, "adminData")
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": models.QRCatalogDocID},
		bson.M{
			"$push": bson.M{"qrCodes": entry},
			"$set":  bson.M{"updatedAt": time.Now()},
		}, opts)
	return err
}

// UploadQRCode accepts a QR image, normalizes it and adds it to the catalog
func (adc *AdminController) UploadQRCode(c echo.Context) error {
	name := utils.SanitizeInput(c.FormValue("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A name for the QR code is required",
		})
	}

	fileHeader, err := c.FormFile("qrcode")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "QR code image is required",
		})
	}

	if err := utils.ValidateImage(fileHeader.Filename, fileHeader.Size); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read file",
		})
	}

	normalized, err := utils.NormalizeQRImage(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "File is not a readable image",
		})
	}

	key := utils.BuildUploadKey(utils.QRCodeUploadDir, fileHeader.Filename+".png")
	url, err := utils.UploadFile(normalized, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store QR code",
		})
	}

	entry := models.QRCode{
		ID:   "qr_" + uuid.NewString(),
		Name: name,
		URL:  url,
	}

	if err := adc.addQRToCatalog(entry); err != nil {
		return c.JSON(http.StatusInternalServerError, models.QRCodeResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QR code",
		})
	}

	return c.JSON(http.StatusCreated, models.QRCodeResponse{
		Status:  http.StatusCreated,
		Message: "QR code uploaded successfully",
		Data:    &entry,
	})
}

// RenderQRCode encodes a payment URI into a 600px PNG
func RenderQRCode(paymentURI string) ([]byte, error) {
	qrCode, err := qr.Encode(paymentURI, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}

	qrCode, err = barcode.Scale(qrCode, 600, 600)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateQRCode renders a QR image from a payment URI server side and adds
// it to the catalog
func (adc *AdminController) GenerateQRCode(c echo.Context) error {
	var req models.GenerateQRRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Name and payment URI are required",
		})
	}

	imageData, err := RenderQRCode(req.PaymentURI)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to encode payment URI",
		})
	}

	key := utils.BuildUploadKey(utils.QRCodeUploadDir, "generated.png")
	url, err := utils.UploadFile(imageData, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store QR code",
		})
	}

	entry := models.QRCode{
		ID:   "qr_" + uuid.NewString(),
		Name: utils.SanitizeInput(req.Name),
		URL:  url,
	}

	if err := adc.addQRToCatalog(entry); err != nil {
		return c.JSON(http.StatusInternalServerError, models.QRCodeResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save QR code",
		})
	}

	return c.JSON(http.StatusCreated, models.QRCodeResponse{
		Status:  http.StatusCreated,
		Message: "QR code generated successfully",
		Data:    &entry,
	})
}

// DeleteQRCode removes a catalog entry and its stored image. Projects that
// reference the deleted id keep the reference; the pay dialog reports the
// missing entry instead.
func (adc *AdminController) DeleteQRCode(c echo.Context) error {
	qrID := c.Param("id")
	if qrID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "QR code ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(adc.DB, "adminData")

	var catalog models.QRCatalog
	if err := collection.FindOne(ctx, bson.M{"_id": models.QRCatalogDocID}).Decode(&catalog); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "QR code not found",
		})
	}

	var removed *models.QRCode
	for i := range catalog.QRCodes {
		if catalog.QRCodes[i].ID == qrID {
			removed = &catalog.QRCodes[i]
			break
		}
	}
	if removed == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "QR code not found",
		})
	}

	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": models.QRCatalogDocID},
		bson.M{
			"$pull": bson.M{"qrCodes": bson.M{"id": qrID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete QR code",
		})
	}

	if err := utils.DeleteFile(removed.URL); err != nil {
		adc.logger.Printf("failed to delete QR image %s: %v", removed.URL, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code deleted successfully",
	})
}
