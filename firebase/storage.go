package firebase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"milk-backend/utils"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// StorageClient is the reward icon storage used by the handlers.
type StorageClient interface {
	UploadRewardIcon(ctx context.Context, file io.Reader, filename, contentType string) (string, error)
	DownloadRewardIcon(ctx context.Context, imageURL, rewardID string) (string, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

type FirebaseStorageClient struct{}

func NewStorageClient() StorageClient {
	return &FirebaseStorageClient{}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}
	return sanitized
}

var privateRanges = []*net.IPNet{
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
	parseCIDR("127.0.0.0/8"),
	parseCIDR("169.254.0.0/16"),
	parseCIDR("0.0.0.0/8"),
	parseCIDR("::1/128"),
	parseCIDR("fc00::/7"),
	parseCIDR("fe80::/10"),
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR: %s", cidr))
	}
	return network
}

// lookupIP is replaced in tests.
var lookupIP = net.LookupIP

// validateExternalURL refuses URLs that resolve to internal addresses.
func validateExternalURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme '%s' is not allowed; only http and https are permitted", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no hostname")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("requests to localhost are not allowed")
	}

	ips, err := lookupIP(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname '%s': %v", host, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private IP address %s, which is not allowed", ip.String())
		}
	}
	return nil
}

var errTooLarge = fmt.Errorf("file exceeds %d bytes", utils.MaxUploadSize)

// readLimited fails instead of truncating when r holds more than MaxUploadSize.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, utils.MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > utils.MaxUploadSize {
		return nil, errTooLarge
	}
	return data, nil
}

// checkRedirect re-validates every hop so a public URL cannot bounce the
// download to an internal address.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 5 {
		return errors.New("too many redirects")
	}
	return validateExternalURL(req.URL.String())
}

func newDownloadClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second, CheckRedirect: checkRedirect}
}

func iconObjectPath(name string) string {
	return path.Join(utils.RewardIconFolder, fmt.Sprintf("%d_%s", time.Now().Unix(), sanitizeFilename(name)))
}

func bucketHandle(ctx context.Context) (*storage.BucketHandle, error) {
	if App == nil {
		return nil, errNotInitialised
	}
	if bucket == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}
	client, err := App.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage client: %w", err)
	}
	return client.Bucket(bucket)
}

// upload writes r to objectPath, makes it public and returns its URL.
func upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	bh, err := bucketHandle(ctx)
	if err != nil {
		return "", err
	}
	data, err := readLimited(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", objectPath, err)
	}

	obj := bh.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		slog.Warn("Failed to set public ACL", "object", objectPath, "error", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath), nil
}

func (f *FirebaseStorageClient) UploadRewardIcon(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	return upload(ctx, iconObjectPath(filename), contentType, file)
}

// DownloadRewardIcon copies an external image into the bucket so the reward
// does not depend on a third-party host.
func (f *FirebaseStorageClient) DownloadRewardIcon(ctx context.Context, imageURL, rewardID string) (string, error) {
	if App == nil {
		return "", errNotInitialised
	}
	if err := validateExternalURL(imageURL); err != nil {
		return "", fmt.Errorf("URL validation failed for %s: %v", imageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := newDownloadClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %v", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	if resp.ContentLength > utils.MaxUploadSize {
		return "", fmt.Errorf("image at %s is %d bytes: %w", imageURL, resp.ContentLength, errTooLarge)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("URL %s returned non-image content-type: %q", imageURL, contentType)
	}

	name := fmt.Sprintf("%s_%s", rewardID, uuid.New().String()[:8])
	return upload(ctx, iconObjectPath(name), contentType, resp.Body)
}

func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, objectPath string) error {
	bh, err := bucketHandle(ctx)
	if err != nil {
		return err
	}
	if err := bh.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}
	slog.Info("Deleted file", "object", objectPath, "bucket", bucket)
	return nil
}
