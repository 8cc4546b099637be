package bcfbin

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/grailbio/hts/bgzf"
	"github.com/inodb/bcfdelta/internal/pipeline"
	"github.com/inodb/bcfdelta/internal/vcfio/vcftext"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

const defaultEncodeWorkers = 4

// Writer writes a .bcf stream: a BGZF-framed textual header followed by a
// stream of length-prefixed binary records. Encoding a record's body is
// fanned out across a worker pool; a single drain goroutine reassembles
// the results in order and writes the length-prefixed bytes to the one
// shared BGZF stream.
type Writer struct {
	file   *os.File
	bgzf   *bgzf.Writer
	writer *bufio.Writer
	header *vcfmodel.Header

	workers int
	items   chan pipeline.Item[*vcfmodel.Record]
	seq     int
	ctx     context.Context
	cancel  context.CancelFunc
	drained chan struct{}

	mu       sync.Mutex
	drainErr error
}

// Create opens path for writing a BGZF-framed binary BCF stream.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bcfbin: create %s: %w", path, err)
	}
	bz := bgzf.NewWriter(f, 0)
	ctx, cancel := context.WithCancel(context.Background())
	return &Writer{
		file: f, bgzf: bz, writer: bufio.NewWriter(bz),
		workers: defaultEncodeWorkers, ctx: ctx, cancel: cancel,
	}, nil
}

// SetWorkers configures the record-encoding worker pool size. It must be
// called before the first WriteRecord call.
func (w *Writer) SetWorkers(n int) {
	if n > 0 {
		w.workers = n
	}
}

// WriteHeader writes the textual meta lines and #CHROM line. It must be
// called exactly once, before any WriteRecord call.
func (w *Writer) WriteHeader(h *vcfmodel.Header) error {
	w.header = h

	if _, err := fmt.Fprintf(w.writer, "##fileformat=%s\n", h.FileFormat); err != nil {
		return fmt.Errorf("bcfbin: write fileformat: %w", err)
	}
	for _, line := range h.Extra {
		if _, err := fmt.Fprintln(w.writer, line); err != nil {
			return fmt.Errorf("bcfbin: write header line: %w", err)
		}
	}
	for _, def := range h.Infos {
		if _, err := fmt.Fprintln(w.writer, vcftext.FormatInfoLine(def)); err != nil {
			return fmt.Errorf("bcfbin: write INFO line: %w", err)
		}
	}
	for _, def := range h.Formats {
		if _, err := fmt.Fprintln(w.writer, vcftext.FormatFormatLine(def)); err != nil {
			return fmt.Errorf("bcfbin: write FORMAT line: %w", err)
		}
	}

	if _, err := w.writer.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"); err != nil {
		return err
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

	results := pipeline.Run(w.ctx, w.items, w.workers, func(_ context.Context, rec *vcfmodel.Record) ([]byte, error) {
		return encodeRecordBytes(rec)
	})
	ordered := pipeline.OrderedChannel(w.ctx, results)

	go func() {
		defer close(w.drained)
		for res := range ordered {
			if res.Err != nil {
				w.setDrainErr(fmt.Errorf("bcfbin: encode record: %w", res.Err))
				continue
			}
			if err := writeRawRecord(w.writer, res.Value); err != nil {
				w.setDrainErr(fmt.Errorf("bcfbin: write record: %w", err))
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

// WriteRecord queues rec for encoding and writing. Any error surfaces on a
// later WriteRecord call or on Close, since encoding happens on a
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
// the BGZF stream and file.
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
		return fmt.Errorf("bcfbin: flush: %w", err)
	}
	if err := w.bgzf.Close(); err != nil {
		return fmt.Errorf("bcfbin: close bgzf: %w", err)
	}
	return w.file.Close()
}
