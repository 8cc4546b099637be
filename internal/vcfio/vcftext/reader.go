// Package vcftext implements the line-oriented VCF text codec: plain,
// plain-gzip, or BGZF-framed.
package vcftext

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/hts/bgzf"
	"github.com/inodb/bcfdelta/internal/pipeline"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
	"github.com/klauspost/compress/gzip"
)

// defaultParseWorkers is used when the caller never calls SetWorkers.
const defaultParseWorkers = 4

// Reader reads a VCF text stream, sniffing gzip compression from the
// first two magic bytes, then dispatching to the BGZF or plain gzip
// decompressor chosen by the caller's framing.
// Line reading off the underlying stream
// is sequential, but once raw lines are in hand, parsing them into
// vcfmodel.Records is fanned out across a worker pool and reassembled in
// order, so a many-sample file's column parsing isn't bottlenecked on a
// single goroutine.
type Reader struct {
	closer     io.Closer
	reader     *bufio.Reader
	lineNumber int
	header     *vcfmodel.Header

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	ordered <-chan pipeline.Result[*vcfmodel.Record]
}

// Open opens path for reading. "-" reads from stdin. framing selects how a
// gzip-magic-prefixed stream is decompressed (BGZF vs plain gzip); it has
// no effect on an uncompressed file.
func Open(path string, framing vcfmodel.Framing) (*Reader, error) {
	if path == "-" {
		return newReaderFrom(os.Stdin, nil, framing)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vcftext: open %s: %w", path, err)
	}
	r, err := newReaderFrom(f, f, framing)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func newReaderFrom(r io.Reader, closer io.Closer, framing vcfmodel.Framing) (*Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("vcftext: peek magic bytes: %w", err)
	}

	var body io.Reader = br
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		switch framing {
		case vcfmodel.FramingBGZF:
			bgzfReader, err := bgzf.NewReader(br, 0)
			if err != nil {
				return nil, fmt.Errorf("vcftext: open bgzf stream: %w", err)
			}
			closer = chainCloser{bgzfReader, closer}
			body = bgzfReader
		default:
			gz, err := gzip.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("vcftext: open gzip stream: %w", err)
			}
			closer = chainCloser{gz, closer}
			body = gz
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	rd := &Reader{reader: bufio.NewReader(body), closer: closer, workers: defaultParseWorkers, ctx: ctx, cancel: cancel}
	if err := rd.parseHeader(); err != nil {
		cancel()
		return nil, err
	}
	return rd, nil
}

// SetWorkers configures the record-parsing worker pool size. It must be
// called before the first ReadRecord call.
func (r *Reader) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

type chainCloser struct {
	inner io.Closer
	outer io.Closer
}

func (c chainCloser) Close() error {
	err1 := c.inner.Close()
	if c.outer == nil {
		return err1
	}
	err2 := c.outer.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (r *Reader) parseHeader() error {
	h := &vcfmodel.Header{}
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("vcftext: read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		r.lineNumber++

		switch {
		case strings.HasPrefix(line, "##fileformat="):
			h.FileFormat = strings.TrimPrefix(line, "##fileformat=")
		case strings.HasPrefix(line, "##INFO="):
			def, perr := ParseInfoLine(line)
			if perr != nil {
				return &ParseError{Line: r.lineNumber, Message: perr.Error()}
			}
			h.Infos = append(h.Infos, def)
		case strings.HasPrefix(line, "##FORMAT="):
			def, perr := ParseFormatLine(line)
			if perr != nil {
				return &ParseError{Line: r.lineNumber, Message: perr.Error()}
			}
			h.Formats = append(h.Formats, def)
		case strings.HasPrefix(line, "##"):
			h.Extra = append(h.Extra, line)
		case strings.HasPrefix(line, "#CHROM"):
			h.Samples = ParseChromLine(line)
			h.IndexInfo()
			h.IndexFormat()
			r.header = h
			return nil
		case err == io.EOF:
			return &ParseError{Line: r.lineNumber, Message: "no #CHROM header line found"}
		default:
			return &ParseError{Line: r.lineNumber, Message: "expected #CHROM header line"}
		}

		if err == io.EOF {
			return &ParseError{Line: r.lineNumber, Message: "no #CHROM header line found"}
		}
	}
}

// ReadHeader returns the header parsed during Open.
func (r *Reader) ReadHeader() (*vcfmodel.Header, error) { return r.header, nil }

// rawLine is one not-yet-parsed data line, or a terminal read error.
type rawLine struct {
	lineNo int
	text   string
	err    error
}

// start launches the sequential line pump and the parallel parse pool.
// Called lazily on the first ReadRecord, after SetWorkers has had its
// chance to run.
func (r *Reader) start() {
	lines := make(chan pipeline.Item[rawLine], 2*r.workers)

	go func() {
		defer close(lines)
		seq := 0
		lineNo := r.lineNumber
		for {
			line, err := r.reader.ReadString('\n')
			lineNo++
			trimmed := strings.TrimRight(line, "\r\n")

			if trimmed == "" {
				if err == io.EOF {
					return
				}
				if err != nil {
					r.sendRaw(lines, &seq, rawLine{lineNo: lineNo, err: fmt.Errorf("vcftext: read record line: %w", err)})
					return
				}
				continue
			}

			r.sendRaw(lines, &seq, rawLine{lineNo: lineNo, text: trimmed})
			if err == io.EOF {
				return
			}
			if err != nil {
				r.sendRaw(lines, &seq, rawLine{lineNo: lineNo, err: fmt.Errorf("vcftext: read record line: %w", err)})
				return
			}
		}
	}()

	results := pipeline.Run(r.ctx, lines, r.workers, func(_ context.Context, rl rawLine) (*vcfmodel.Record, error) {
		if rl.err != nil {
			return nil, rl.err
		}
		return ParseRecord(rl.text, rl.lineNo, r.header)
	})
	r.ordered = pipeline.OrderedChannel(r.ctx, results)
}

func (r *Reader) sendRaw(lines chan<- pipeline.Item[rawLine], seq *int, rl rawLine) {
	select {
	case lines <- pipeline.Item[rawLine]{Seq: *seq, Value: rl}:
		*seq++
	case <-r.ctx.Done():
	}
}

// ReadRecord reads the next data line. It returns io.EOF when exhausted.
func (r *Reader) ReadRecord() (*vcfmodel.Record, error) {
	if r.ordered == nil {
		r.start()
	}
	res, ok := <-r.ordered
	if !ok {
		return nil, io.EOF
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Value, nil
}

// Close releases the underlying file/decompressor and stops any
// in-flight parse workers.
func (r *Reader) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
