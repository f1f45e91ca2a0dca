package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/server/blobstore"
	"github.com/ADevelopere/storagegate/internal/server/models"
)

// UploadRequest carries the validated-header view of a PUT request.
type UploadRequest struct {
	TokenID       string
	ContentType   string
	ContentMD5    string
	ContentLength int64
	Body          io.Reader
}

// UploadResult is returned on a successful write.
type UploadResult struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// Upload runs the validation pipeline and streams the payload into the
// blob store.
//
// Claim policy: the token is consumed atomically right after the liveness
// checks (exists, unexpired, unused). Every failure past that point leaves
// the token spent — a presented capability id is never replayable. Failures
// before the claim (missing, expired, already used) leave the token
// untouched. No failure after the claim leaves a StorageFile row or
// readable bytes behind.
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	token, err := s.tokens.GetByID(ctx, req.TokenID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("loading token: %w", err)
	}

	if s.now().After(token.ExpiresAt) {
		return nil, common.ErrTokenExpired
	}
	if token.Used {
		return nil, common.ErrTokenClaimed
	}

	// The conditional update is the authoritative claim; the Used check
	// above is only a cheap fast path. A concurrent upload racing on the
	// same id loses here.
	if err := s.tokens.Claim(ctx, req.TokenID); err != nil {
		if errors.Is(err, common.ErrTokenClaimed) {
			return nil, common.ErrTokenClaimed
		}
		return nil, fmt.Errorf("claiming token: %w", err)
	}

	if req.ContentType != token.ContentType {
		return nil, ErrContentTypeMismatch
	}

	declaredDigest, err := base64.StdEncoding.DecodeString(req.ContentMD5)
	if req.ContentMD5 == "" || err != nil || len(declaredDigest) != md5.Size {
		return nil, ErrMD5Required
	}

	if req.ContentLength < 0 {
		return nil, ErrLengthRequired
	}
	if req.ContentLength > token.FileSize {
		return nil, ErrSizeExceeded
	}

	path, err := blobstore.CleanPath(token.FilePath)
	if err != nil {
		return nil, err
	}

	// Stream to the backend, hashing en route. The limit is one past the
	// declared size so an oversized body that lied in Content-Length is
	// still caught.
	hash := md5.New()
	limited := io.LimitReader(req.Body, token.FileSize+1)
	written, err := s.blobs.Put(ctx, path, io.TeeReader(limited, hash))
	if err != nil {
		return nil, fmt.Errorf("writing object: %w", err)
	}
	if written > token.FileSize {
		s.removeBytes(ctx, path)
		return nil, ErrSizeExceeded
	}

	sum := hash.Sum(nil)
	if !bytes.Equal(sum, declaredDigest) {
		s.removeBytes(ctx, path)
		return nil, ErrMD5Mismatch
	}
	if tokenDigest, decErr := base64.StdEncoding.DecodeString(token.ContentMD5); decErr != nil || !bytes.Equal(sum, tokenDigest) {
		s.removeBytes(ctx, path)
		return nil, ErrMD5Mismatch
	}

	file := &models.StorageFile{
		Path:        path,
		IsProtected: token.IsProtected,
		ContentType: token.ContentType,
		Size:        written,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.removeBytes(ctx, path)
		return nil, fmt.Errorf("registering file: %w", err)
	}

	s.log.Info(ctx, "upload complete", "path", path, "size", written)
	return &UploadResult{Path: path, ContentType: token.ContentType}, nil
}
