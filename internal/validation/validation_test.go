package validation

import (
	"bytes"
	"strings"
	"testing"

	"profile-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
)

func TestValidateStruct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		req := models.RegisterRequest{
			FirstName: "Ada", LastName: "Lovelace", Username: "ada",
			Email: "a@x.com", Password: "secret1",
		}
		assert.NoError(t, ValidateStruct(&req))
	})

	t.Run("Fail_MissingFields", func(t *testing.T) {
		err := ValidateStruct(&models.RegisterRequest{Email: "not-an-email"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "firstname is required")
		assert.Contains(t, err.Error(), "email must be a valid email address")
		assert.Contains(t, err.Error(), "password is required")
	})

	t.Run("Fail_ShortPassword", func(t *testing.T) {
		req := models.RegisterRequest{
			FirstName: "Ada", LastName: "Lovelace", Username: "ada",
			Email: "a@x.com", Password: "123",
		}
		assert.ErrorContains(t, ValidateStruct(&req), "password must be at least 6 characters long")
	})
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Ada", SanitizeString("  <b>Ada</b>\x00 "))
	assert.Equal(t, "", SanitizeString("<script>alert(1)</script>"))

	// Plain text comes back unescaped.
	assert.Equal(t, "O'Brien & Sons", SanitizeString("O'Brien & Sons"))
	assert.Equal(t, `Ada "The Countess"`, SanitizeString(`Ada "The Countess"`))
	assert.Equal(t, "x < y", SanitizeString("x < y"))

	// Escaped markup stays inert text.
	assert.Equal(t, "&lt;b&gt;", SanitizeString("&amp;lt;b&amp;gt;"))

	long := strings.Repeat("&", 100)
	assert.Equal(t, long, SanitizeString(long))
}

func TestDetectImage(t *testing.T) {
	t.Run("PNG", func(t *testing.T) {
		r := bytes.NewReader(pngHeader)
		ext, err := DetectImage(r, "Avatar.PNG")
		require.NoError(t, err)
		assert.Equal(t, ".png", ext)

		// Reader must be rewound for the subsequent copy.
		pos, _ := r.Seek(0, 1)
		assert.Zero(t, pos)
	})

	t.Run("GIF", func(t *testing.T) {
		ext, err := DetectImage(bytes.NewReader(gifHeader), "me.gif")
		require.NoError(t, err)
		assert.Equal(t, ".gif", ext)
	})

	t.Run("Fail_ExtensionMismatch", func(t *testing.T) {
		_, err := DetectImage(bytes.NewReader(pngHeader), "photo.jpg")
		assert.Error(t, err)
	})

	t.Run("Fail_NotAnImage", func(t *testing.T) {
		_, err := DetectImage(bytes.NewReader([]byte("#!/bin/sh\necho hi\n")), "photo.png")
		assert.Error(t, err)
	})

	t.Run("Fail_NoExtension", func(t *testing.T) {
		_, err := DetectImage(bytes.NewReader(pngHeader), "photo")
		assert.ErrorContains(t, err, "no extension")
	})
}
