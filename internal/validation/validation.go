package validation

import (
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate *validator.Validate
	policy   *bluemonday.Policy
)

func init() {
	validate = validator.New()

	// StrictPolicy() strips all HTML tags.
	policy = bluemonday.StrictPolicy()
}

// ValidateStruct validates a struct and returns a user-friendly error message
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation failed: %w", err)
	}

	var errorMessages []string
	for _, fe := range validationErrors {
		errorMessages = append(errorMessages, getErrorMessage(fe))
	}

	return fmt.Errorf("validation failed: %s", strings.Join(errorMessages, "; "))
}

// getErrorMessage returns a user-friendly error message for validation errors
func getErrorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// SanitizeString strips markup and NUL bytes and returns plain text.
// The policy escapes the text it keeps; that is undone so names are stored
// as typed and never grow past their validated length.
func SanitizeString(input string) string {
	cleaned := strings.ReplaceAll(input, "\x00", "")
	sanitized := html.UnescapeString(policy.Sanitize(cleaned))
	return strings.TrimSpace(sanitized)
}

// imageTypes maps an accepted MIME type to the extensions it may be uploaded under.
var imageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// DetectImage checks that the extension of filename is an accepted image type
// and that the content agrees with it. The reader is rewound afterwards.
func DetectImage(r io.ReadSeeker, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", fmt.Errorf("file has no extension")
	}

	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file: %w", err)
	}

	for mime, exts := range imageTypes {
		if !mtype.Is(mime) {
			continue
		}
		for _, allowed := range exts {
			if allowed == ext {
				return ext, nil
			}
		}
	}

	return "", fmt.Errorf("content type %s does not match extension %s", mtype.String(), ext)
}
