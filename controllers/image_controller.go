package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/picstash/picstash/middleware"
	"github.com/picstash/picstash/models"
	"github.com/picstash/picstash/storage"
	"github.com/picstash/picstash/utils"
)

const (
	msgNoFileSelected = "Please select image to be uploaded!"
	msgRecordNotFound = "File record not found!"
	msgNotOwner       = "You can only delete your own uploads!"
)

// ImageController handles the per-user upload lifecycle: upload,
// listing and deletion. All routes sit behind the session gate.
type ImageController struct {
	db        *gorm.DB
	store     storage.Storage
	uploadDir string
	maxBytes  int64
}

// NewImageController creates an ImageController writing into uploadDir.
func NewImageController(db *gorm.DB, store storage.Storage, uploadDir string, maxUploadMB int) *ImageController {
	return &ImageController{
		db:        db,
		store:     store,
		uploadDir: uploadDir,
		maxBytes:  int64(maxUploadMB) * 1024 * 1024,
	}
}

// UploadPage serves the empty upload form payload.
func (i *ImageController) UploadPage(ctx *gin.Context) {
	utils.Page(ctx, http.StatusOK, "")
}

// Upload accepts a multipart file, writes it to storage and records it
// for the current user. The file is written first; if the record
// cannot be persisted the file is rolled back, so neither a dangling
// record nor an orphaned file survives a failure.
func (i *ImageController) Upload(ctx *gin.Context) {
	userID, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil || header == nil || header.Filename == "" {
		utils.Page(ctx, http.StatusBadRequest, msgNoFileSelected)
		return
	}
	defer file.Close()

	// The client filename is never trusted as-is: strip any path,
	// then namespace with a random id to avoid collisions.
	original := filepath.Base(header.Filename)
	if original == "." || original == string(filepath.Separator) {
		utils.Page(ctx, http.StatusBadRequest, msgNoFileSelected)
		return
	}
	storedName := fmt.Sprintf("%s_%s", uuid.NewString(), original)
	storedPath := filepath.Join(i.uploadDir, storedName)

	if err := i.store.Save(storedPath, file, i.maxBytes); err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			utils.Page(ctx, http.StatusBadRequest, fmt.Sprintf("File exceeds the %dMB upload limit!", i.maxBytes/(1024*1024)))
			return
		}
		utils.Sugar.Errorf("save upload failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to store uploaded file.")
		return
	}

	record := models.ImageUpload{UserID: userID, Path: storedPath}
	if err := i.db.Create(&record).Error; err != nil {
		// Roll the file back so no record/file pair is ever half-created.
		if rmErr := i.store.Remove(storedPath); rmErr != nil {
			utils.Sugar.Errorf("rollback of %s failed: %v", storedPath, rmErr)
		}
		utils.Sugar.Errorf("create upload record failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to record uploaded file.")
		return
	}

	utils.Page(ctx, http.StatusOK, fmt.Sprintf("Success upload file %s", utils.Sanitize(original)))
}

// Home lists the current user's upload records.
func (i *ImageController) Home(ctx *gin.Context) {
	userID, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	var images []models.ImageUpload
	if err := i.db.Where("id_user = ?", userID).Find(&images).Error; err != nil {
		utils.Sugar.Errorf("list uploads failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to list uploads.")
		return
	}

	utils.PageWithImages(ctx, http.StatusOK, "", images)
}

// Delete removes an upload record and its backing file, then redirects
// home. Unknown ids are a clean not-found; records owned by another
// user are refused.
func (i *ImageController) Delete(ctx *gin.Context) {
	userID, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	recordID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Page(ctx, http.StatusNotFound, msgRecordNotFound)
		return
	}

	var record models.ImageUpload
	if err := i.db.First(&record, uint(recordID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Page(ctx, http.StatusNotFound, msgRecordNotFound)
			return
		}
		utils.Sugar.Errorf("load upload record failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to load upload record.")
		return
	}

	if record.UserID != userID {
		utils.Page(ctx, http.StatusForbidden, msgNotOwner)
		return
	}

	// File first, record second, matching the legacy ordering. A file
	// already gone from disk must not block deleting the record.
	if err := i.store.Remove(record.Path); err != nil && !os.IsNotExist(err) {
		utils.Sugar.Warnf("remove file %s failed: %v", record.Path, err)
	}
	if err := i.db.Delete(&models.ImageUpload{}, record.ID).Error; err != nil {
		utils.Sugar.Errorf("delete upload record failed: %v", err)
		utils.Page(ctx, http.StatusInternalServerError, "Failed to delete upload record.")
		return
	}

	ctx.Redirect(http.StatusFound, "/home")
}
