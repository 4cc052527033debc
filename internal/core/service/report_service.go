package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// ReportService opens the joined request history for export.
type ReportService struct {
	requests ports.RequestRepository
	log      zerolog.Logger
}

func NewReportService(requests ports.RequestRepository, log zerolog.Logger) *ReportService {
	return &ReportService{requests: requests, log: log}
}

// Open checks the caller is an admin and opens a newest-first cursor. The
// set of records is whatever the store's cursor sees; requests created while
// an export runs may or may not appear.
func (s *ReportService) Open(ctx context.Context, sess *domain.Session) (ports.JoinedRequestCursor, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	cur, err := s.requests.StreamAllJoined(ctx)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	return cur, nil
}

// Flusher is implemented by writers that can push buffered bytes to the
// client, such as an HTTP response.
type Flusher interface {
	Flush()
}

// WriteJSONArray writes "[", each record separated by ",", then "]" and
// closes cur. It flushes after every record when w is a Flusher.
//
// An error after the opening bracket stops the stream where it is: the
// output is left as truncated JSON and the error is returned. There is no
// in-band error marker, so readers must treat an unparseable body as a
// failed export. Cancelling ctx stops the loop before the next record.
func WriteJSONArray(ctx context.Context, w io.Writer, cur ports.JoinedRequestCursor) (n int, err error) {
	defer func() {
		if cerr := cur.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = fmt.Errorf("close cursor: %w", cerr)
		}
	}()

	flusher, _ := w.(Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}

	for cur.Next(ctx) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		rec, err := cur.Current()
		if err != nil {
			return n, fmt.Errorf("decode record %d: %w", n, err)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return n, fmt.Errorf("encode record %d: %w", n, err)
		}
		if n > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return n, err
			}
		}
		if _, err := w.Write(b); err != nil {
			return n, err
		}
		n++
		flush()
	}
	if err := cur.Err(); err != nil {
		return n, fmt.Errorf("cursor: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return n, err
	}

	if _, err := io.WriteString(w, "]"); err != nil {
		return n, err
	}
	flush()
	return n, nil
}
