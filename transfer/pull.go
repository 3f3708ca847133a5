package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/constant"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/filesystem"
	"github.com/epget-cli/epget/log"
	"github.com/epget-cli/epget/progress"
)

// Pull streams a direct link into a temporary file and renames it once complete.
type Pull struct {
	Client *http.Client
	// ChunkSize is the read size. Progress is reported once per chunk.
	ChunkSize int
}

func (p *Pull) Execute(ctx context.Context, d episode.Descriptor, targetDir string, sink progress.Sink) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", d.URL, err)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", d.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewTransportError(d.URL, resp.StatusCode, resp.Status)
	}

	target := filepath.Join(targetDir, d.Name)
	temp := target + constant.TempSuffix

	file, err := filesystem.API().OpenFile(temp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apperrors.NewFilesystemError("create", temp, err)
	}

	written, err := p.copy(file, temp, resp.Body, resp.ContentLength, sink)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = apperrors.NewFilesystemError("close", temp, closeErr)
	}
	if err != nil {
		return err
	}

	if err := filesystem.API().Rename(temp, target); err != nil {
		return apperrors.NewFilesystemError("rename", temp, err)
	}

	sink.Finish(progress.NewState(written, resp.ContentLength))
	log.With(log.Fields{"file": target, "bytes": written}).Info("download committed")
	return nil
}

// copy moves src into dst, the file at path, chunk by chunk, reporting the running total after each chunk.
func (p *Pull) copy(dst io.Writer, path string, src io.Reader, total int64, sink progress.Sink) (int64, error) {
	buf := make([]byte, p.chunkSize())

	var written int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, apperrors.NewFilesystemError("write", path, werr)
			}
			written += int64(n)
			sink.Update(progress.NewState(written, total))
		}

		switch {
		case errors.Is(err, io.EOF):
			return written, nil
		case err != nil:
			return written, fmt.Errorf("read response body: %w", err)
		}
	}
}

func (p *Pull) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}

func (p *Pull) chunkSize() int {
	if p.ChunkSize <= 0 {
		return constant.ChunkSize
	}
	return p.ChunkSize
}
