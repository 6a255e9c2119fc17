package storage

import "io"

// progressReader wraps a reader and reports transfer progress at coarse
// milestones. Reported percentages never decrease and stop at 99; the
// caller reports 100 once the backend acknowledges the upload.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	lastPct    int
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, onProgress: onProgress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.onProgress != nil && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 99 {
			pct = 99
		}
		if pct > p.lastPct {
			p.lastPct = pct
			p.onProgress(pct)
		}
	}
	return n, err
}
