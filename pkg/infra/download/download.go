// Package download fetches release assets over HTTP.
package download

import (
	"context"
	"fmt"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fataldecomp/roller-installer/pkg/domain/interfaces"
	"github.com/fataldecomp/roller-installer/pkg/utils/async"
)

type downloader struct {
	client   *grab.Client
	interval time.Duration
}

// New returns a downloader that reports progress to the log every few
// seconds while a transfer is running.
func New() interfaces.AssetDownloader {
	return &downloader{
		client:   grab.NewClient(),
		interval: 3 * time.Second,
	}
}

// Download fetches url into destDir and returns the local file path. The
// file name is taken from the URL or the server's disposition header.
func (d *downloader) Download(ctx context.Context, url, destDir string) (string, error) {
	logger := ctxlog.From(ctx)

	req, err := grab.NewRequest(destDir, url)
	if err != nil {
		return "", goerr.Wrap(err, "invalid download request", goerr.V("url", url))
	}
	req = req.WithContext(ctx)

	logger.Info("downloading release asset", "url", url)
	resp := d.client.Do(req)

	async.Dispatch(ctx, func(ctx context.Context) error {
		t := time.NewTicker(d.interval)
		defer t.Stop()
		for {
			select {
			case <-resp.Done:
				return nil
			case <-t.C:
				ctxlog.From(ctx).Info("download progress",
					"complete", resp.BytesComplete(),
					"total", resp.Size(),
					"percent", fmt.Sprintf("%.1f%%", 100*resp.Progress()))
			}
		}
	})

	<-resp.Done
	if err := resp.Err(); err != nil {
		return "", goerr.Wrap(err, "failed to download release asset",
			goerr.V("url", url))
	}

	logger.Info("download complete",
		"file", resp.Filename, "bytes", resp.BytesComplete())

	return resp.Filename, nil
}
