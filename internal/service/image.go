package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tastebook/backend/config"
)

// ImageService stores recipe photos in S3.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadRecipeImage uploads the photo bytes for a recipe and returns the
// public URL.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID uint, imageData []byte, contentType string) (string, error) {
	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	fileName := fmt.Sprintf("recipe-images/%d/%s.%s", recipeID, uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded recipe %d image to %s", recipeID, publicURL)

	return publicURL, nil
}
