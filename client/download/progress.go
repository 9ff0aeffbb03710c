package download

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Fraction returns written/total clamped to [0,1]. An unknown (negative)
// or zero total yields 0.
func Fraction(written, total int64) float64 {
	if total <= 0 {
		return 0
	}

	f := float64(written) / float64(total)
	switch {
	case f > 1:
		return 1
	case f < 0:
		return 0
	}
	return f
}

// progressWriter is an io.Writer reporting the transferred fraction on
// every write, and logging at most once per second when a logger is set.
type progressWriter struct {
	w           io.Writer
	report      func(float64)
	logger      *slog.Logger
	transferred int64
	total       int64
	last        float64
	startTime   time.Time
	lastLog     time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)

	// Never step backwards, even if the server sends more than announced.
	if f := Fraction(pw.transferred, pw.total); f >= pw.last {
		pw.last = f
	}
	if pw.report != nil {
		pw.report(pw.last)
	}

	if pw.logger != nil {
		if time.Since(pw.lastLog) >= time.Second {
			pw.lastLog = time.Now()
			pw.log("downloading")
		}
		if pw.total > 0 && pw.transferred == pw.total {
			pw.log("download complete")
		}
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.startTime)
	attrs := []any{
		"progress", fmt.Sprintf("%.1f%%", pw.last*100),
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pw.transferred,
		"total", pw.total,
		"mbps", fmt.Sprintf("%.2f", float64(pw.transferred)/elapsed.Seconds()/(1024*1024)),
	}
	pw.logger.Info(msg, attrs...)
}
