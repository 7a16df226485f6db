package firebase

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"milk-backend/utils"
)

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("shake_icon-1.png"); got != "shake_icon-1.png" {
		t.Errorf("expected name unchanged, got '%s'", got)
	}
	if got := sanitizeFilename("koktajl (1)@#$.png"); strings.ContainsAny(got, " ()@#$") {
		t.Errorf("special chars not replaced: '%s'", got)
	}
	if got := sanitizeFilename(strings.Repeat("a", 200)); len(got) != 100 {
		t.Errorf("expected length 100, got %d", len(got))
	}
	for _, name := range []string{"", ".", ".."} {
		if sanitizeFilename(name) != "file" {
			t.Errorf("%q should become 'file'", name)
		}
	}
}

func TestIconObjectPath(t *testing.T) {
	p := iconObjectPath("../../etc/passwd")
	if !strings.HasPrefix(p, "rewards/") {
		t.Errorf("expected rewards/ prefix, got %s", p)
	}
	if strings.Count(p, "/") != 1 {
		t.Errorf("object path escaped its folder: %s", p)
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.10.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
	}
	for _, tc := range tests {
		if got := isPrivateIP(net.ParseIP(tc.ip)); got != tc.expected {
			t.Errorf("isPrivateIP(%s) = %v, want %v", tc.ip, got, tc.expected)
		}
	}
}

func TestParseCIDRInvalid(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid CIDR")
		}
	}()
	parseCIDR("not-a-cidr")
}

func stubLookup(t *testing.T, ips ...string) {
	orig := lookupIP
	lookupIP = func(host string) ([]net.IP, error) {
		if len(ips) == 0 {
			return nil, errors.New("no such host")
		}
		out := make([]net.IP, 0, len(ips))
		for _, ip := range ips {
			out = append(out, net.ParseIP(ip))
		}
		return out, nil
	}
	t.Cleanup(func() { lookupIP = orig })
}

func TestValidateExternalURL(t *testing.T) {
	stubLookup(t, "93.184.216.34")

	if err := validateExternalURL("https://cdn.example.com/icon.png"); err != nil {
		t.Errorf("expected public URL to pass, got %v", err)
	}
	for _, raw := range []string{
		"ftp://example.com/icon.png",
		"http://localhost/icon.png",
		"http:///icon.png",
		"://broken",
	} {
		if err := validateExternalURL(raw); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestValidateExternalURLPrivateResolution(t *testing.T) {
	stubLookup(t, "93.184.216.34", "10.1.2.3")
	if err := validateExternalURL("https://sneaky.example.com/icon.png"); err == nil {
		t.Error("expected error when any address is private")
	}
}

func TestValidateExternalURLUnresolvable(t *testing.T) {
	stubLookup(t)
	if err := validateExternalURL("https://nowhere.invalid/icon.png"); err == nil {
		t.Error("expected resolution error")
	}
}

func TestStorageRequiresInit(t *testing.T) {
	App = nil
	client := NewStorageClient()
	ctx := context.Background()

	if _, err := client.UploadRewardIcon(ctx, strings.NewReader("x"), "a.png", "image/png"); err == nil {
		t.Error("expected error without firebase app")
	}
	if _, err := client.DownloadRewardIcon(ctx, "https://cdn.example.com/a.png", "r1"); err == nil {
		t.Error("expected error without firebase app")
	}
	if err := client.DeleteFile(ctx, "rewards/a.png"); err == nil {
		t.Error("expected error without firebase app")
	}
	if _, err := Firestore(ctx); err == nil {
		t.Error("expected error without firebase app")
	}
}

func TestReadLimitedRejectsOversize(t *testing.T) {
	data, err := readLimited(bytes.NewReader(make([]byte, utils.MaxUploadSize)))
	if err != nil {
		t.Fatalf("expected exactly the limit to pass, got %v", err)
	}
	if len(data) != utils.MaxUploadSize {
		t.Errorf("expected %d bytes, got %d", utils.MaxUploadSize, len(data))
	}

	if _, err := readLimited(bytes.NewReader(make([]byte, utils.MaxUploadSize+1))); !errors.Is(err, errTooLarge) {
		t.Errorf("expected errTooLarge, got %v", err)
	}
}

func TestCheckRedirectValidatesEachHop(t *testing.T) {
	stubLookup(t, "169.254.169.254")
	req := httptest.NewRequest("GET", "http://metadata.example.com/latest", nil)
	if err := checkRedirect(req, []*http.Request{req}); err == nil {
		t.Error("expected redirect to a link-local address to be refused")
	}

	stubLookup(t, "93.184.216.34")
	if err := checkRedirect(req, []*http.Request{req}); err != nil {
		t.Errorf("expected public redirect to pass, got %v", err)
	}
	if err := checkRedirect(req, make([]*http.Request, 5)); err == nil {
		t.Error("expected too many redirects to fail")
	}
}

func TestDownloadClientRefusesRedirectToLoopback(t *testing.T) {
	var innerHit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/inner" {
			innerHit = true
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png"))
			return
		}
		http.Redirect(w, r, "/inner", http.StatusFound)
	}))
	defer srv.Close()

	resp, err := newDownloadClient().Get(srv.URL + "/icon.png")
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected the redirect to loopback to be refused")
	}
	if innerHit {
		t.Error("redirect target was fetched")
	}
}
