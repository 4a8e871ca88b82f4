package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
)

const maxPhotoSizeMB = 10

var allowedPhotoMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

// ValidatePhoto проверяет размер и содержимое фото по magic numbers,
// а не по расширению имени файла.
func ValidatePhoto(fileHeader *multipart.FileHeader, file io.ReadSeeker) error {
	maxSizeBytes := int64(maxPhotoSizeMB) * 1024 * 1024
	if fileHeader.Size > maxSizeBytes {
		return fmt.Errorf("размер файла (%.2f MB) превышает лимит в %d MB",
			float64(fileHeader.Size)/1024/1024, maxPhotoSizeMB)
	}

	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		return fmt.Errorf("ошибка чтения файла")
	}

	// Курсор обязан вернуться в начало: дальше файл уходит в хранилище.
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("ошибка обработки файла")
	}

	mimeType := http.DetectContentType(buffer)
	if !slices.Contains(allowedPhotoMimeTypes, mimeType) {
		return fmt.Errorf("недопустимый формат файла: %s", mimeType)
	}

	return nil
}
