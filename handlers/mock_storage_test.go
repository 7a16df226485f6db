package handlers

import (
	"context"
	"io"
)

type mockStorage struct {
	UploadRewardIconFn   func(file io.Reader, filename, contentType string) (string, error)
	DownloadRewardIconFn func(imageURL, rewardID string) (string, error)
	DeleteFileFn         func(objectPath string) error
	DeleteFileCalls      []string
	UploadCallCount      int
	DownloadedURLs       []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadRewardIcon(_ context.Context, file io.Reader, filename, contentType string) (string, error) {
	m.UploadCallCount++
	if m.UploadRewardIconFn != nil {
		return m.UploadRewardIconFn(file, filename, contentType)
	}
	return "https://storage.googleapis.com/test-bucket/rewards/" + filename, nil
}

func (m *mockStorage) DownloadRewardIcon(_ context.Context, imageURL, rewardID string) (string, error) {
	m.UploadCallCount++
	m.DownloadedURLs = append(m.DownloadedURLs, imageURL)
	if m.DownloadRewardIconFn != nil {
		return m.DownloadRewardIconFn(imageURL, rewardID)
	}
	return "https://storage.googleapis.com/test-bucket/rewards/" + rewardID + "_icon.png", nil
}

func (m *mockStorage) DeleteFile(_ context.Context, objectPath string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}
