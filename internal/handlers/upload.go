package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const publicRootDir = "/app/public"

// UploadPhotos saves the photos of a multipart form to local disk and
// returns the relative paths to store on the listing.
func UploadPhotos() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /upload"
		defer handlePanic(c, route)

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid multipart form"})
			return
		}

		files := form.File["photos"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no photos in request"})
			return
		}

		paths := make([]string, 0, len(files))
		for _, file := range files {
			saved, err := savePhoto(file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			paths = append(paths, saved)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": paths})
	}
}

func savePhoto(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", fmt.Errorf("photo file extension is required")
	}
	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported photo type: %s", extension)
	}
	const maxPhotoSize = 5 << 20
	if file.Size > maxPhotoSize {
		return "", fmt.Errorf("photo file too large (max 5MB)")
	}

	filename := primitive.NewObjectID().Hex() + extension

	dir := filepath.Join(publicRootDir, "uploads", "places")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] savePhoto: failed to create directory %s: %v", dir, err)
		return "", err
	}

	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] savePhoto: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] savePhoto: failed to open upload %s: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] savePhoto: failed to save file %s: %v", fullPath, err)
		return "", err
	}

	// Path stored on the place document and served under /public.
	return filepath.ToSlash(filepath.Join("uploads", "places", filename)), nil
}

// safeDeleteUpload removes a stored photo, refusing anything that resolves
// outside the uploads tree. Missing files are not an error.
func safeDeleteUpload(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}

	cleanBase := filepath.Clean(publicRootDir)
	targetPath := filepath.Join(cleanBase, filepath.FromSlash(cleanRel))
	cleanTarget := filepath.Clean(targetPath)
	if cleanTarget != cleanBase && !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside public root: %s", relPath)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return nil
}
