package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Asset is a raster image ready to be placed on a page.
type Asset struct {
	Data   []byte
	Format string // "PNG" or "JPG"
}

// assetClient bounds how long a document render may wait on the asset
// host.  A slow or dead host degrades the document, it does not hang
// the request.
var assetClient = &http.Client{Timeout: 3 * time.Second}

// LoadLogo fetches the company logo from the asset host.  The error
// is returned explicitly so the caller decides once whether to render
// with or without the logo; there is no silent swallowing inside the
// draw path.  An empty base URL means no logo is configured and
// yields (nil, nil).
func LoadLogo(ctx context.Context, baseURL string) (*Asset, error) {
	if baseURL == "" {
		return nil, nil
	}
	url := strings.TrimRight(baseURL, "/") + "/logo.png"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	resp, err := assetClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return &Asset{Data: data, Format: "PNG"}, nil
}
