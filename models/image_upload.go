package models

// ImageUpload pairs an owning user with the stored path of an uploaded
// file. The path includes the configured upload directory.
type ImageUpload struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"column:id_user;index" json:"id_user"`
	Path   string `gorm:"column:path_image;size:100" json:"path_image"`
}

// TableName keeps the legacy table name the schema was created with.
func (ImageUpload) TableName() string { return "image_upload" }
