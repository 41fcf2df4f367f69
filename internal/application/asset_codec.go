package application

import (
	"encoding/base64"
	"os"
	"path"
	"strings"

	"theme-images-manager/internal/domain"
)

// UploadedFile is a multipart file buffered to a local temp path
type UploadedFile struct {
	Name string
	Path string
}

// EncodeUploads reads each temp file into an asset payload, preserving input
// order. Every temp file is removed before returning, whether or not reading
// succeeded.
func EncodeUploads(files []UploadedFile) ([]domain.AssetPayload, error) {
	defer func() {
		for _, f := range files {
			_ = os.Remove(f.Path)
		}
	}()

	payloads := make([]domain.AssetPayload, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, &domain.FileReadError{Name: f.Name, Err: err}
		}
		payloads = append(payloads, domain.AssetPayload{
			Key:        domain.AssetKey(cleanAssetName(f.Name)),
			Attachment: base64.StdEncoding.EncodeToString(data),
		})
	}
	return payloads, nil
}

// cleanAssetName keeps only the final path element so a name cannot leave assets/
func cleanAssetName(name string) string {
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}
