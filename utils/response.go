package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/picstash/picstash/models"
)

// AppData is the structured payload handed to the external template
// renderer: a user-visible message plus, for the home page, the
// caller's upload records.
type AppData struct {
	Message string               `json:"message"`
	Images  []models.ImageUpload `json:"images"`
}

// Page writes an app_data response carrying only a message.
func Page(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"app_data": AppData{Message: message, Images: []models.ImageUpload{}}})
}

// PageWithImages writes an app_data response including the image list.
func PageWithImages(ctx *gin.Context, status int, message string, images []models.ImageUpload) {
	if images == nil {
		images = []models.ImageUpload{}
	}
	ctx.JSON(status, gin.H{"app_data": AppData{Message: message, Images: images}})
}
