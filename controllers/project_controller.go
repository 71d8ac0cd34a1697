package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/config"
	"github.com/appdesk/appdesk_backend/middleware"
	"github.com/appdesk/appdesk_backend/models"
	"github.com/appdesk/appdesk_backend/repositories"
	"github.com/appdesk/appdesk_backend/utils"
	ws "github.com/appdesk/appdesk_backend/websocket"
)

// ProjectController contains the project workflow logic
type ProjectController struct {
	DB     *mongo.Client
	Hub    *ws.Hub
	repo   *repositories.ProjectRepository
	logger *log.Logger
}

// NewProjectController creates a new project controller
func NewProjectController(db *mongo.Client, hub *ws.Hub) *ProjectController {
	return &ProjectController{
		DB:     db,
		Hub:    hub,
		repo:   repositories.NewProjectRepository(db),
		logger: log.New(os.Stdout, "[PROJECT] ", log.LstdFlags),
	}
}

// loadProject fetches a project and checks the caller may see it. Owners see
// their own projects; admins see everything.
func (pc *ProjectController) loadProject(c echo.Context) (*models.Project, int, error) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid project ID")
	}

	project, err := pc.repo.FindByID(projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound, errors.New("project not found")
		}
		return nil, http.StatusInternalServerError, errors.New("database error")
	}

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}

	if middleware.ExtractRole(c) != models.RoleAdmin && project.UserID != userID {
		return nil, http.StatusForbidden, errors.New("you do not have access to this project")
	}

	return project, http.StatusOK, nil
}

// CreateProject accepts the multipart submission form with optional attachments
func (pc *ProjectController) CreateProject(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	title := utils.SanitizeInput(c.FormValue("title"))
	description := utils.SanitizeInput(c.FormValue("description"))
	contactName := utils.SanitizeInput(c.FormValue("contactName"))
	if title == "" || description == "" || contactName == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title, description and contact name are required",
		})
	}

	email, err := utils.SanitizeEmail(c.FormValue("email"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	phone, err := utils.SanitizePhone(c.FormValue("phone"))
	if err != nil || phone == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid phone number is required",
		})
	}

	whatsapp := ""
	if w := c.FormValue("whatsapp"); w != "" {
		whatsapp, err = utils.SanitizePhone(w)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid WhatsApp number format",
			})
		}
	}

	budget, _ := strconv.ParseFloat(c.FormValue("budget"), 64)
	if budget < 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Budget cannot be negative",
		})
	}
	timeline, _ := strconv.Atoi(c.FormValue("timeline"))
	if timeline < 0 {
		timeline = 0
	}

	projectID := primitive.NewObjectID()
	attachments := []string{}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, fileHeader := range form.File["attachments"] {
			if err := utils.ValidateAttachment(fileHeader.Filename, fileHeader.Size); err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: err.Error(),
				})
			}

			src, err := fileHeader.Open()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to read attachment",
				})
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to read attachment",
				})
			}

			key := utils.BuildUploadKey(filepath.Join(utils.ProjectUploadDir, projectID.Hex()), fileHeader.Filename)
			url, err := utils.UploadFile(data, key)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to store attachment",
				})
			}
			attachments = append(attachments, url)
		}
	}

	now := time.Now()
	project := models.Project{
		ID:          projectID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Features:    utils.SanitizeInput(c.FormValue("features")),
		Budget:      budget,
		Timeline:    timeline,
		ContactName: contactName,
		Email:       email,
		Phone:       phone,
		Whatsapp:    whatsapp,
		Status:      models.StatusPending,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(pc.DB, "projects")
	if _, err := collection.InsertOne(ctx, project); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ProjectResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create project",
		})
	}

	return c.JSON(http.StatusCreated, models.ProjectResponse{
		Status:  http.StatusCreated,
		Message: "Project submitted successfully",
		Data:    &project,
	})
}

// GetUserProjects returns the caller's own projects, newest first
func (pc *ProjectController) GetUserProjects(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	projects, err := pc.repo.FindByUser(userID)
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

// GetProject returns one project to its owner or an admin
func (pc *ProjectController) GetProject(c echo.Context) error {
	project, status, err := pc.loadProject(c)
	if err != nil {
		return c.JSON(status, models.ProjectResponse{
			Status:  status,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.ProjectResponse{
		Status:  http.StatusOK,
		Message: "Project retrieved successfully",
		Data:    project,
	})
}

// UpdateProject lets the owner edit submission fields while the project is
// still pending. New attachments replace the existing set; omitting them
// keeps the current set.
func (pc *ProjectController) UpdateProject(c echo.Context) error {
	project, status, err := pc.loadProject(c)
	if err != nil {
		return c.JSON(status, models.ProjectResponse{
			Status:  status,
			Message: err.Error(),
		})
	}

	userID, _ := utils.GetUserIDFromToken(c)
	if project.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the project owner can edit the submission",
		})
	}

	if project.Status != models.StatusPending {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Only pending projects can be edited",
		})
	}

	fields := bson.M{}

	if title := utils.SanitizeInput(c.FormValue("title")); title != "" {
		fields["title"] = title
	}
	if description := utils.SanitizeInput(c.FormValue("description")); description != "" {
		fields["description"] = description
	}
	if features := c.FormValue("features"); features != "" {
		fields["features"] = utils.SanitizeInput(features)
	}
	if contactName := utils.SanitizeInput(c.FormValue("contactName")); contactName != "" {
		fields["contactName"] = contactName
	}
	if emailValue := c.FormValue("email"); emailValue != "" {
		email, err := utils.SanitizeEmail(emailValue)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email format",
			})
		}
		fields["email"] = email
	}
	if phoneValue := c.FormValue("phone"); phoneValue != "" {
		phone, err := utils.SanitizePhone(phoneValue)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number format",
			})
		}
		fields["phone"] = phone
	}
	if whatsappValue := c.FormValue("whatsapp"); whatsappValue != "" {
		whatsapp, err := utils.SanitizePhone(whatsappValue)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid WhatsApp number format",
			})
		}
		fields["whatsapp"] = whatsapp
	}
	if budgetValue := c.FormValue("budget"); budgetValue != "" {
		budget, err := strconv.ParseFloat(budgetValue, 64)
		if err != nil || budget < 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid budget",
			})
		}
		fields["budget"] = budget
	}
	if timelineValue := c.FormValue("timeline"); timelineValue != "" {
		timeline, err := strconv.Atoi(timelineValue)
		if err != nil || timeline < 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid timeline",
			})
		}
		fields["timeline"] = timeline
	}

	form, formErr := c.MultipartForm()
	if formErr == nil && form != nil && len(form.File["attachments"]) > 0 {
		attachments := []string{}
		for _, fileHeader := range form.File["attachments"] {
			if err := utils.ValidateAttachment(fileHeader.Filename, fileHeader.Size); err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: err.Error(),
				})
			}

			src, err := fileHeader.Open()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to read attachment",
				})
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to read attachment",
				})
			}

			key := utils.BuildUploadKey(filepath.Join(utils.ProjectUploadDir, project.ID.Hex()), fileHeader.Filename)
			url, err := utils.UploadFile(data, key)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to store attachment",
				})
			}
			attachments = append(attachments, url)
		}

		// Replaced attachments are removed from disk, best effort
		for _, old := range project.Attachments {
			if err := utils.DeleteFile(old); err != nil {
				pc.logger.Printf("failed to delete replaced attachment %s: %v", old, err)
			}
		}
		fields["attachments"] = attachments
	}

	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Nothing to update",
		})
	}

	if err := pc.repo.UpdateFields(project.ID, fields); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update project",
		})
	}

	updated, err := pc.repo.FindByID(project.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch updated project",
		})
	}

	return c.JSON(http.StatusOK, models.ProjectResponse{
		Status:  http.StatusOK,
		Message: "Project updated successfully",
		Data:    updated,
	})
}

// qrCodeExists reports whether a QR id is present in the admin catalog
func (pc *ProjectController) qrCodeExists(qrID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var catalog models.QRCatalog
	err := config.GetCollection(pc.DB, "adminData").FindOne(ctx, bson.M{"_id": models.QRCatalogDocID}).Decode(&catalog)
	if err != nil {
		return false
	}
	for _, qr := range catalog.QRCodes {
		if qr.ID == qrID {
			return true
		}
	}
	return false
}

// UpdateProjectStatus drives the admin workflow. The transition table is
// checked before anything is written; moving to PAYMENT_PROCESSING without a
// QR reference is rejected with a flag the admin console turns into the
// QR-selection dialog.
func (pc *ProjectController) UpdateProjectStatus(c echo.Context) error {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	var req models.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status is required",
		})
	}

	project, err := pc.repo.FindByID(projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Project not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	effectiveQR := project.PaymentQrCode
	if req.PaymentQrCode != "" {
		effectiveQR = req.PaymentQrCode
	}

	// The QR reference must resolve against the catalog before payment starts
	if req.Status == models.StatusPaymentProcessing && effectiveQR != "" && !pc.qrCodeExists(effectiveQR) {
		return c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  http.StatusUnprocessableEntity,
			Message: "Payment QR code not found in the catalog",
			Data: map[string]interface{}{
				"qrSelectionRequired": true,
			},
		})
	}

	if err := project.ValidateStatusChange(req.Status, effectiveQR); err != nil {
		if errors.Is(err, models.ErrQRCodeRequired) {
			return c.JSON(http.StatusUnprocessableEntity, models.Response{
				Status:  http.StatusUnprocessableEntity,
				Message: err.Error(),
				Data: map[string]interface{}{
					"qrSelectionRequired": true,
				},
			})
		}
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: err.Error(),
		})
	}

	fields := bson.M{"status": req.Status}
	if req.PaymentQrCode != "" {
		fields["paymentQrCode"] = req.PaymentQrCode
	}
	if req.ApkFileURL != "" {
		fields["apkFileUrl"] = req.ApkFileURL
	}
	if req.PaymentDetails != nil {
		fields["paymentDetails"] = req.PaymentDetails
	}

	if err := pc.repo.UpdateFields(projectID, fields); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update project status",
		})
	}

	updated, err := pc.repo.FindByID(projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch updated project",
		})
	}

	// Notifications never fail the write
	go utils.NotifyProjectStatusChange(pc.DB, updated, req.Status)
	pc.Hub.NotifyProjectStatus(projectID.Hex(), updated.UserID, req.Status, updated)

	return c.JSON(http.StatusOK, models.ProjectResponse{
		Status:  http.StatusOK,
		Message: "Project status updated",
		Data:    updated,
	})
}

// UploadApk stores the built application package against the project
func (pc *ProjectController) UploadApk(c echo.Context) error {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	if _, err := pc.repo.FindByID(projectID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Project not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	fileHeader, err := c.FormFile("apk")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "APK file is required",
		})
	}

	if err := utils.ValidateAPK(fileHeader.Filename, fileHeader.Size); err != nil {
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

	key := utils.BuildUploadKey(filepath.Join(utils.APKUploadDir, projectID.Hex()), fileHeader.Filename)
	url, err := utils.UploadFile(data, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store file",
		})
	}

	if err := pc.repo.UpdateFields(projectID, bson.M{"apkFileUrl": url}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update project",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "APK uploaded successfully",
		Data: map[string]interface{}{
			"apkFileUrl": url,
		},
	})
}

// UpdatePaymentDetails sets the account details shown in the pay dialog
func (pc *ProjectController) UpdatePaymentDetails(c echo.Context) error {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	var req models.PaymentDetailsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Account holder and account name are required",
		})
	}

	details := models.PaymentDetails{
		AccountHolder: utils.SanitizeInput(req.AccountHolder),
		AccountName:   utils.SanitizeInput(req.AccountName),
	}

	if err := pc.repo.UpdateFields(projectID, bson.M{"paymentDetails": details}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update payment details",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment details updated",
		Data:    details,
	})
}

// GetPaymentQR resolves the project's QR reference against the admin catalog
// and returns the entry the pay dialog should render
func (pc *ProjectController) GetPaymentQR(c echo.Context) error {
	project, status, err := pc.loadProject(c)
	if err != nil {
		return c.JSON(status, models.Response{
			Status:  status,
			Message: err.Error(),
		})
	}

	if project.PaymentQrCode == "" {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No payment QR code assigned to this project",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var catalog models.QRCatalog
	err = config.GetCollection(pc.DB, "adminData").FindOne(ctx, bson.M{"_id": models.QRCatalogDocID}).Decode(&catalog)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.QRCodeResponse{
			Status:  http.StatusNotFound,
			Message: "QR code catalog is empty",
		})
	}

	for i := range catalog.QRCodes {
		if catalog.QRCodes[i].ID == project.PaymentQrCode {
			return c.JSON(http.StatusOK, models.QRCodeResponse{
				Status:  http.StatusOK,
				Message: "Payment QR code retrieved",
				Data:    &catalog.QRCodes[i],
			})
		}
	}

	return c.JSON(http.StatusNotFound, models.QRCodeResponse{
		Status:  http.StatusNotFound,
		Message: "Assigned QR code no longer exists in the catalog",
	})
}
