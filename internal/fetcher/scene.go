package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FetchScene downloads the configured band sources into destDir. sources
// maps band name to URL; each band lands in destDir under the URL's base
// file name. Returns the local path per band.
func FetchScene(ctx context.Context, sources map[string]string, destDir string, httpF *HTTPFetcher, ftpF *FTPFetcher) (map[string]string, error) {
	if len(sources) == 0 {
		return nil, eris.New("fetcher: no band sources configured")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "fetcher: create %s", destDir)
	}

	paths := make(map[string]string, len(sources))
	for band, rawURL := range sources {
		f, err := ForURL(rawURL, httpF, ftpF)
		if err != nil {
			return nil, err
		}
		dest := filepath.Join(destDir, filepath.Base(rawURL))

		n, err := downloadTo(ctx, f, rawURL, dest)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: band %q", band)
		}
		zap.L().Info("fetcher: downloaded band",
			zap.String("band", band),
			zap.String("dest", dest),
			zap.Int64("bytes", n),
		)
		paths[band] = dest
	}
	return paths, nil
}

// downloadTo streams one URL into a local file, removing the partial
// file on failure.
func downloadTo(ctx context.Context, f Fetcher, rawURL, dest string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return 0, eris.Wrapf(err, "create %s", dest)
	}
	n, err := io.Copy(out, body)
	closeErr := out.Close()
	if err != nil {
		_ = os.Remove(dest)
		return 0, eris.Wrapf(err, "write %s", dest)
	}
	if closeErr != nil {
		_ = os.Remove(dest)
		return 0, eris.Wrapf(closeErr, "close %s", dest)
	}
	return n, nil
}
