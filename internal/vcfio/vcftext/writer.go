package vcftext

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/grailbio/hts/bgzf"
	"github.com/inodb/bcfdelta/internal/pipeline"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"github.com/klauspost/compress/gzip"
)

const defaultFormatWorkers = 4

// Writer writes a VCF text stream, optionally BGZF- or gzip-framed.
// Formatting a record to its wire-text line is fanned out across a
// worker pool (cheap per record but adds up across many samples);
// results are reassembled in order and written by a single drain
// goroutine, so the underlying stream only ever sees one writer.
type Writer struct {
	closer io.Closer
	flush  func() error
	writer *bufio.Writer
	header *vcfmodel.Header

	workers int
	items   chan pipeline.Item[*vcfmodel.Record]
	seq     int
	ctx     context.Context
	cancel  context.CancelFunc
	drained chan struct{}

	mu      sync.Mutex
	drainErr error
}

// Create opens path for writing. "-" writes to stdout. framing selects the
// compression container used when format calls for one; it has no effect
// when format is FormatVCF.
func Create(path string, format vcfmodel.Format, framing vcfmodel.Framing) (*Writer, error) {
	if path == "-" {
		return newWriterTo(os.Stdout, nil, format, framing)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("vcftext: create %s: %w", path, err)
	}
	w, err := newWriterTo(f, f, format, framing)
	if err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func newWriterTo(w io.Writer, closer io.Closer, format vcfmodel.Format, framing vcfmodel.Framing) (*Writer, error) {
	ctx, cancel := context.WithCancel(context.Background())
	base := &Writer{workers: defaultFormatWorkers, ctx: ctx, cancel: cancel}

	if format == vcfmodel.FormatVCF {
		base.closer, base.writer = closer, bufio.NewWriter(w)
		return base, nil
	}

	switch framing {
	case vcfmodel.FramingBGZF:
		bgzfWriter := bgzf.NewWriter(w, 0)
		base.closer = chainCloser{bgzfWriter, closer}
		base.flush = bgzfWriter.Flush
		base.writer = bufio.NewWriter(bgzfWriter)
	default:
		gz := gzip.NewWriter(w)
		base.closer = chainCloser{gz, closer}
		base.flush = gz.Flush
		base.writer = bufio.NewWriter(gz)
	}
	return base, nil
}

// SetWorkers configures the record-formatting worker pool size. It must
// be called before the first WriteRecord call.
func (w *Writer) SetWorkers(n int) {
	if n > 0 {
		w.workers = n
	}
}

// WriteHeader writes the meta lines and #CHROM line. It must be called
// exactly once, before any WriteRecord call.
func (w *Writer) WriteHeader(h *vcfmodel.Header) error {
	w.header = h

	if _, err := fmt.Fprintf(w.writer, "##fileformat=%s\n", h.FileFormat); err != nil {
		return fmt.Errorf("vcftext: write fileformat: %w", err)
	}
	for _, line := range h.Extra {
		if _, err := fmt.Fprintln(w.writer, line); err != nil {
			return fmt.Errorf("vcftext: write header line: %w", err)
		}
	}
	for _, def := range h.Infos {
		if _, err := fmt.Fprintln(w.writer, FormatInfoLine(def)); err != nil {
			return fmt.Errorf("vcftext: write INFO line: %w", err)
		}
	}
	for _, def := range h.Formats {
		if _, err := fmt.Fprintln(w.writer, FormatFormatLine(def)); err != nil {
			return fmt.Errorf("vcftext: write FORMAT line: %w", err)
		}
	}

	if _, err := w.writer.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"); err != nil {
		return fmt.Errorf("vcftext: write CHROM line: %w", err)
	}
	if len(h.Samples) > 0 {
		if _, err := w.writer.WriteString("\tFORMAT"); err != nil {
			return err
		}
		for _, s := range h.Samples {
			if _, err := w.writer.WriteString("\t" + s); err != nil {
				return err
			}
		}
	}
	_, err := w.writer.WriteString("\n")
	return err
}

func (w *Writer) start() {
	w.items = make(chan pipeline.Item[*vcfmodel.Record], 2*w.workers)
	w.drained = make(chan struct{})

	results := pipeline.Run(w.ctx, w.items, w.workers, func(_ context.Context, rec *vcfmodel.Record) (string, error) {
		return FormatRecord(rec, w.header), nil
	})
	ordered := pipeline.OrderedChannel(w.ctx, results)

	go func() {
		defer close(w.drained)
		for res := range ordered {
			if _, err := w.writer.WriteString(res.Value); err != nil {
				w.setDrainErr(fmt.Errorf("vcftext: write record: %w", err))
				continue
			}
			if err := w.writer.WriteByte('\n'); err != nil {
				w.setDrainErr(fmt.Errorf("vcftext: write record: %w", err))
			}
		}
	}()
}

func (w *Writer) setDrainErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.drainErr == nil {
		w.drainErr = err
	}
}

func (w *Writer) getDrainErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.drainErr
}

// WriteRecord queues rec for formatting and writing. Any error surfaces
// on a later WriteRecord call or on Close, since formatting happens on a
// background worker.
func (w *Writer) WriteRecord(rec *vcfmodel.Record) error {
	if err := w.getDrainErr(); err != nil {
		return err
	}
	if w.items == nil {
		w.start()
	}
	select {
	case w.items <- pipeline.Item[*vcfmodel.Record]{Seq: w.seq, Value: rec}:
		w.seq++
		return nil
	case <-w.ctx.Done():
		return w.ctx.Err()
	}
}

// Close drains any queued records, flushes buffered output, and releases
// the underlying file/compressor.
func (w *Writer) Close() error {
	if w.items != nil {
		close(w.items)
		<-w.drained
	}
	w.cancel()
	if err := w.getDrainErr(); err != nil {
		return err
	}

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("vcftext: flush: %w", err)
	}
	if w.flush != nil {
		if err := w.flush(); err != nil {
			return fmt.Errorf("vcftext: flush compressor: %w", err)
		}
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
