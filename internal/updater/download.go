package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Fetch downloads url to dest, creating dest's directory when needed.
// Redirects are followed. Any network failure or non-2xx status is returned
// as a *FetchError and leaves no file at dest.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Debug("fetching archive", "url", url, "dest", dest)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}

	n, err := f.copyWithProgress(out, resp.Body, resp.ContentLength)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("writing download: %w", closeErr)
	}
	if err != nil {
		os.Remove(dest)
		return &FetchError{URL: url, Err: err}
	}

	f.logger.Debug("archive downloaded", "bytes", n)
	return nil
}

func (f *Fetcher) copyWithProgress(dst io.Writer, src io.Reader, total int64) (int64, error) {
	if f.progress == nil || total <= 0 {
		return io.Copy(dst, src)
	}

	var downloaded int64
	lastPercent := -1
	buf := make([]byte, 32*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return downloaded, fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			percent := int(downloaded * 100 / total)
			if percent != lastPercent {
				fmt.Fprintf(f.progress, "\rDownloading... %d%%", percent)
				lastPercent = percent
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fmt.Fprintln(f.progress)
			return downloaded, fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	fmt.Fprintln(f.progress)
	return downloaded, nil
}
