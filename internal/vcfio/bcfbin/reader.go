package bcfbin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/hts/bgzf"
	"github.com/inodb/bcfdelta/internal/pipeline"
	"github.com/inodb/bcfdelta/internal/vcfio/vcftext"
	"github.com/inodb/bcfdelta/internal/vcfmodel"
)

const defaultDecodeWorkers = 4

// Reader reads a .bcf stream: a BGZF-framed textual header (the same
// meta-line format vcftext parses) followed by a stream of
// length-prefixed binary records. Reading each record's raw bytes off
// the BGZF stream is sequential, but decoding those bytes into a
// vcfmodel.Record is fanned out across a worker pool and reassembled in
// order.
type Reader struct {
	file   *os.File
	bgzf   *bgzf.Reader
	reader *bufio.Reader
	header *vcfmodel.Header

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	ordered <-chan pipeline.Result[*vcfmodel.Record]
}

// Open opens path, a BGZF-framed binary BCF stream, for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bcfbin: open %s: %w", path, err)
	}
	bz, err := bgzf.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bcfbin: open bgzf stream: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	rd := &Reader{file: f, bgzf: bz, reader: bufio.NewReader(bz), workers: defaultDecodeWorkers, ctx: ctx, cancel: cancel}
	if err := rd.parseHeader(); err != nil {
		cancel()
		rd.Close()
		return nil, err
	}
	return rd, nil
}

// SetWorkers configures the record-decoding worker pool size. It must be
// called before the first ReadRecord call.
func (r *Reader) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

func (r *Reader) parseHeader() error {
	h := &vcfmodel.Header{}
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("bcfbin: read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "##fileformat="):
			h.FileFormat = strings.TrimPrefix(line, "##fileformat=")
		case strings.HasPrefix(line, "##INFO="):
			def, perr := vcftext.ParseInfoLine(line)
			if perr != nil {
				return fmt.Errorf("bcfbin: %w", perr)
			}
			h.Infos = append(h.Infos, def)
		case strings.HasPrefix(line, "##FORMAT="):
			def, perr := vcftext.ParseFormatLine(line)
			if perr != nil {
				return fmt.Errorf("bcfbin: %w", perr)
			}
			h.Formats = append(h.Formats, def)
		case strings.HasPrefix(line, "##"):
			h.Extra = append(h.Extra, line)
		case strings.HasPrefix(line, "#CHROM"):
			h.Samples = vcftext.ParseChromLine(line)
			h.IndexInfo()
			h.IndexFormat()
			r.header = h
			return nil
		case err == io.EOF:
			return fmt.Errorf("bcfbin: no #CHROM header line found")
		default:
			return fmt.Errorf("bcfbin: expected #CHROM header line, got %q", line)
		}

		if err == io.EOF {
			return fmt.Errorf("bcfbin: no #CHROM header line found")
		}
	}
}

// ReadHeader returns the header parsed during Open.
func (r *Reader) ReadHeader() (*vcfmodel.Header, error) { return r.header, nil }

// rawBody is one not-yet-decoded record body, or a terminal read error.
type rawBody struct {
	body []byte
	err  error
}

func (r *Reader) start() {
	bodies := make(chan pipeline.Item[rawBody], 2*r.workers)

	go func() {
		defer close(bodies)
		seq := 0
		for {
			body, err := readRawRecord(r.reader)
			if err != nil {
				if err != io.EOF {
					select {
					case bodies <- pipeline.Item[rawBody]{Seq: seq, Value: rawBody{err: err}}:
					case <-r.ctx.Done():
					}
				}
				return
			}
			select {
			case bodies <- pipeline.Item[rawBody]{Seq: seq, Value: rawBody{body: body}}:
				seq++
			case <-r.ctx.Done():
				return
			}
		}
	}()

	results := pipeline.Run(r.ctx, bodies, r.workers, func(_ context.Context, rb rawBody) (*vcfmodel.Record, error) {
		if rb.err != nil {
			return nil, rb.err
		}
		return decodeRecordBody(rb.body)
	})
	r.ordered = pipeline.OrderedChannel(r.ctx, results)
}

// ReadRecord reads the next binary record. It returns io.EOF when
// exhausted.
func (r *Reader) ReadRecord() (*vcfmodel.Record, error) {
	if r.ordered == nil {
		r.start()
	}
	res, ok := <-r.ordered
	if !ok {
		return nil, io.EOF
	}
	if res.Err != nil {
		return nil, fmt.Errorf("bcfbin: read record: %w", res.Err)
	}
	return res.Value, nil
}

// Close releases the underlying bgzf stream and file.
func (r *Reader) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	err1 := r.bgzf.Close()
	err2 := r.file.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
