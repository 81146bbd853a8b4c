package tools

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/registry"
)

// imageMimeTypes maps file extensions to their image MIME type.
var imageMimeTypes = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg",
	".png": "image/png", ".gif": "image/gif", ".webp": "image/webp",
}

func detectImageMimeType(path string) string {
	for ext, mime := range imageMimeTypes {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return mime
		}
	}
	return ""
}

// ReadImage loads an image file and returns it as a data: URI, the shape
// consumed by analyze_image's specialist call (agent.ContentPart with
// Type "image").
func ReadImage(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "file_path")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "read_image requires file_path"}
	}
	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}

	mime := detectImageMimeType(abs)
	if mime == "" {
		return "", &errs.InvalidArgumentError{Reason: "unsupported image type: " + abs}
	}

	info, statErr := os.Stat(abs)
	if statErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot stat image: " + statErr.Error()}
	}
	if info.Size() > MaxFileSize {
		return "", &errs.InvalidArgumentError{Reason: fmt.Sprintf("image exceeds %d byte cap", MaxFileSize)}
	}

	data, readErr := os.ReadFile(abs)
	if readErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot read image: " + readErr.Error()}
	}
	session.MarkRead(abs)

	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
}

// WriteImage decodes a base64 (optionally data-URI-prefixed) payload and
// saves it to disk, the counterpart generate_image needs to persist a
// model's returned image bytes.
func WriteImage(session *registry.Session, args map[string]interface{}) (string, error) {
	rawPath, ok := argString(args, "file_path")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "write_image requires file_path"}
	}
	payload, ok := argString(args, "data")
	if !ok {
		return "", &errs.InvalidArgumentError{Reason: "write_image requires data"}
	}

	abs, err := validatePath(session.Cwd(), rawPath)
	if err != nil {
		return "", err
	}
	if detectImageMimeType(abs) == "" {
		return "", &errs.InvalidArgumentError{Reason: "unsupported image type: " + abs}
	}

	if idx := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && idx != -1 {
		payload = payload[idx+1:]
	}

	data, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "invalid base64 image data: " + decodeErr.Error()}
	}
	if len(data) > MaxFileSize {
		return "", &errs.InvalidArgumentError{Reason: fmt.Sprintf("image exceeds %d byte cap", MaxFileSize)}
	}

	if writeErr := os.WriteFile(abs, data, 0o644); writeErr != nil {
		return "", &errs.InvalidArgumentError{Reason: "cannot write image: " + writeErr.Error()}
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(data), abs), nil
}
