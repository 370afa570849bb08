package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrBlockedAddress is returned when an image URL resolves to a loopback,
// private or otherwise internal address.
var ErrBlockedAddress = errors.New("image host address is not allowed")

// Cache stores converted data URIs by source URL.
type Cache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url, dataURI string)
}

// Inliner converts remote image URLs to data URIs for the generation
// service.
type Inliner struct {
	httpClient *http.Client
	cache      Cache
}

// NewInliner builds an inliner. A nil httpClient gets a client that only
// dials public addresses.
func NewInliner(httpClient *http.Client, cache Cache) *Inliner {
	if httpClient == nil {
		httpClient = publicOnlyClient(15 * time.Second)
	}
	return &Inliner{httpClient: httpClient, cache: cache}
}

func publicOnlyClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			return checkPublicAddress(address)
		},
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// checkPublicAddress runs on the resolved ip:port of every connection,
// redirects included.
func checkPublicAddress(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

// CheckImageURL accepts absolute http and https URLs only.
func CheckImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image url scheme %q is not allowed", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("image url has no host")
	}
	return nil
}

// Inline returns ref unchanged when it already is a data URI, otherwise
// fetches it.
func (in *Inliner) Inline(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty image reference")
	}
	if IsDataURI(ref) {
		return ref, nil
	}
	if err := CheckImageURL(ref); err != nil {
		return "", err
	}

	if in.cache != nil {
		if uri, ok := in.cache.Get(ctx, ref); ok {
			return uri, nil
		}
	}

	uri, err := in.fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	if in.cache != nil {
		in.cache.Set(ctx, ref, uri)
	}
	return uri, nil
}

func (in *Inliner) fetch(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}
	resp, err := in.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("fetch image: body exceeds %d bytes", MaxFileSize)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("fetch image: unexpected content type %s", mime)
	}
	return ToDataURI(mime, data), nil
}
