// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// allowedImageExtensions is the upload allowlist.
var allowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// multipartOverhead is slack on top of the image size cap for
// multipart boundaries and headers when limiting the request body.
const multipartOverhead = 1 << 20

type uploadResponse struct {
	OK       bool   `json:"ok"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// handleUpload stores an uploaded image and returns its public URL.
// Files are content-addressed: the name is the BLAKE3 hash of the
// bytes plus the original extension, so re-uploading the same image
// is a no-op rather than a new file.
func (s *SyncService) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing multipart field \"image\"")
		return
	}
	defer file.Close()

	extension := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[extension] {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported image type %q", extension))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}
	if int64(len(content)) > s.maxUploadBytes {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("image exceeds the %d byte limit", s.maxUploadBytes))
		return
	}

	digest := blake3.Sum256(content)
	filename := hex.EncodeToString(digest[:8]) + extension

	if err := os.WriteFile(filepath.Join(s.uploadDir, filename), content, 0o644); err != nil {
		s.logger.Error("writing upload", "filename", filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "storing upload failed")
		return
	}

	s.logger.Info("image uploaded",
		"filename", filename,
		"original_name", header.Filename,
		"bytes", len(content),
	)
	s.writeJSON(w, http.StatusOK, uploadResponse{
		OK:       true,
		URL:      s.uploadURL(filename),
		Filename: filename,
		Size:     int64(len(content)),
	})
}

func (s *SyncService) uploadURL(filename string) string {
	return s.baseURL + "/uploads/" + filename
}

// randomUploadURL picks a random previously uploaded raster image for
// injection. SVG is excluded: injected images are placed on the
// canvas as bitmaps by the frontend.
func (s *SyncService) randomUploadURL() (string, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return "", fmt.Errorf("reading upload directory: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		extension := strings.ToLower(filepath.Ext(entry.Name()))
		if allowedImageExtensions[extension] && extension != ".svg" {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return "", errors.New("no uploaded images available and no urls provided")
	}

	return s.uploadURL(candidates[rand.IntN(len(candidates))]), nil
}
