// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// chunkNamespace scopes the name-based UUIDs given to chunks.
var chunkNamespace = uuid.MustParse("6f1c3c8e-5b7a-4d8e-9a51-2f0e4b1d7c3a")

// Processor splits document segments into fixed-size, overlapping chunks.
// Sizes are measured in runes. It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits each segment of the document into chunks.
// Input chunks are ignored; this processor creates new chunks from the segments.
// Chunks never cross segment boundaries and indivisible segments are kept whole.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	position := 0

	for _, seg := range doc.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}

		var windows []string
		if seg.Indivisible {
			windows = []string{seg.Text}
		} else {
			windows = p.split(seg.Text)
		}

		for _, content := range windows {
			chunks = append(chunks, newChunk(doc.Path, seg.Page, position, content))
			position++
		}
	}

	return chunks, nil
}

// split cuts text into windows of chunkSize runes advancing by
// chunkSize-overlap. The final window always ends at the end of the text,
// so a text of L > size runes yields ceil((L-overlap)/(size-overlap)) windows.
func (p *Processor) split(text string) []string {
	runes := []rune(text)
	contentLen := len(runes)
	if contentLen <= p.chunkSize {
		return []string{text}
	}

	step := p.chunkSize - p.overlap
	windows := make([]string, 0, (contentLen-p.overlap+step-1)/step)

	for start := 0; ; start += step {
		end := start + p.chunkSize
		if end >= contentLen {
			windows = append(windows, string(runes[start:]))
			break
		}
		windows = append(windows, string(runes[start:end]))
	}

	return windows
}

// newChunk builds a chunk with an identifier derived from its origin and content.
func newChunk(source string, page *int, position int, content string) domain.Chunk {
	hash := ContentHash(content)

	pageKey := "-"
	var pageCopy *int
	if page != nil {
		pageKey = strconv.Itoa(*page)
		pageCopy = domain.IntPtr(*page)
	}

	name := source + "\x00" + pageKey + "\x00" + strconv.Itoa(position) + "\x00" + hash

	return domain.Chunk{
		ID:          uuid.NewSHA1(chunkNamespace, []byte(name)).String(),
		Source:      source,
		Page:        pageCopy,
		Position:    position,
		Content:     content,
		ContentHash: hash,
	}
}

// ContentHash returns the hex SHA-256 used to detect changed chunk content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
