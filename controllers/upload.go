package controller

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"minevent/models"
	"minevent/utils"
)

const maxUploadSize = 5 << 20 // 5 MiB

var allowedUploadTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func uploadInvalid(message string) *models.DomainError {
	return &models.DomainError{Code: "UPLOAD_INVALID", Message: message}
}

// storeUpload validates the multipart file and writes it to object storage
// at the deterministic {folder}/{account_id}.{ext} key, overwriting any
// prior file for this account.
func storeUpload(c *fiber.Ctx, field, folder string, accountID uint) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", uploadInvalid(field + " file is required")
	}
	if fileHeader.Size > maxUploadSize {
		return "", uploadInvalid("file must be at most 5 MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedUploadTypes[ext]
	if !ok {
		return "", uploadInvalid("file must be a PDF, JPG or PNG")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	key := models.ObjectKey(folder, accountID, ext)
	if err := utils.UploadObject(key, contentType, file); err != nil {
		return "", err
	}
	return key, nil
}

// presignIfSet resolves a stored key to a short-lived URL, or "" when the
// document has not been uploaded yet.
func presignIfSet(key string) string {
	if key == "" {
		return ""
	}
	url, err := utils.PresignObject(key)
	if err != nil {
		LogError("presign_failed", err, map[string]interface{}{"key": key})
		return ""
	}
	return url
}
