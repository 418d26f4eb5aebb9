package fetch

import (
	"fmt"
	"io"
	"time"

	"github.com/ZebulonRouseFrantzich/getnode/internal/logging"
)

// progressReader logs download progress at most once per second.
type progressReader struct {
	rc          io.ReadCloser
	logger      logging.Logger
	file        string
	transferred int64
	total       int64
	startTime   time.Time
	lastLog     time.Time
}

func newProgressReader(rc io.ReadCloser, total int64, file string, logger logging.Logger) *progressReader {
	now := time.Now()
	return &progressReader{
		rc:        rc,
		logger:    logger,
		file:      file,
		total:     total,
		startTime: now,
		lastLog:   now,
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.rc.Read(p)
	pr.transferred += int64(n)

	if time.Since(pr.lastLog) >= time.Second {
		pr.lastLog = time.Now()
		pr.log("downloading")
	}

	if n > 0 && pr.total > 0 && pr.transferred == pr.total {
		pr.log("download complete")
	}

	return n, err
}

func (pr *progressReader) Close() error {
	return pr.rc.Close()
}

func (pr *progressReader) log(msg string) {
	elapsed := time.Since(pr.startTime)
	kv := []interface{}{
		"file", pr.file,
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pr.transferred,
	}
	if pr.total > 0 {
		kv = append(kv,
			"total", pr.total,
			"progress", fmt.Sprintf("%.1f%%", float64(pr.transferred)/float64(pr.total)*100))
	}
	if secs := elapsed.Seconds(); secs > 0 {
		kv = append(kv, "mbps", fmt.Sprintf("%.2f", float64(pr.transferred)/secs/(1024*1024)))
	}
	pr.logger.Info(msg, kv...)
}
