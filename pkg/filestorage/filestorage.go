package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorageInterface определяет контракт для сервиса хранения файлов.
// Save возвращает публичный URL сохранённого файла.
type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (fileURL string, err error)
	Delete(fileURL string) error
}

type LocalFileStorage struct {
	basePath     string
	publicPrefix string
}

func NewLocalFileStorage(basePath, publicPrefix string) (FileStorageInterface, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию для хранения файлов: %w", err)
		}
	}
	return &LocalFileStorage{basePath: basePath, publicPrefix: publicPrefix}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	// Уникальное имя файла, чтобы избежать коллизий
	ext := filepath.Ext(originalFileName)
	base := strings.TrimSuffix(filepath.Base(originalFileName), ext)
	uniqueFileName := fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), uuid.New().String()[:8], ext)

	fullDirPath := filepath.Join(s.basePath, prefix)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return s.publicPrefix + "/" + filepath.ToSlash(filepath.Join(prefix, uniqueFileName)), nil
}

func (s *LocalFileStorage) Delete(fileURL string) error {
	relativePath := strings.TrimPrefix(fileURL, s.publicPrefix+"/")
	fullPath := filepath.Join(s.basePath, relativePath)

	// Если файла и так нет, считаем операцию успешной.
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(fullPath)
}
