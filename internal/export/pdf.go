package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// pageSizes in points.
var pageSizes = map[string][2]float64{
	"A4":     {595, 842},
	"Letter": {612, 792},
}

const (
	pdfMargin      = 56.0
	pdfLineSpacing = 1.35
	stagingLimit   = 4
)

type textStyle struct {
	font  string
	size  int
	color string
	// advance approximates the average glyph width as a fraction of size.
	advance float64
	indent  float64
	after   float64
}

var pdfStyles = map[Kind]textStyle{
	Heading:      {font: fontBold, size: 16, color: "#2F5496", advance: 0.55, after: 6},
	Meta:         {font: fontRegular, size: 10, color: "#666666", advance: 0.5, after: 10},
	Body:         {font: fontMono, size: 11, color: "#000000", advance: 0.6, indent: 36, after: 12},
	PictureError: {font: fontRegular, size: 11, color: "#FF0000", advance: 0.5, after: 8},
	Tip:          {font: fontItalic, size: 11, color: "#000000", advance: 0.5, after: 12},
}

// tabWidth is how many spaces a tab expands to.
const tabWidth = 4

// PDF renders blocks through pdfcpu's JSON page description.
type PDF struct {
	paper   string
	width   float64
	height  float64
	fontDir string
	logger  *slog.Logger
}

// NewPDF creates a PDF encoder for the named page size. The embedded fonts
// are installed into fontDir on first use.
func NewPDF(paper, fontDir string, logger *slog.Logger) *PDF {
	size, ok := pageSizes[paper]
	if !ok {
		paper, size = "A4", pageSizes["A4"]
	}
	return &PDF{
		paper:   paper,
		width:   size[0],
		height:  size[1],
		fontDir: fontDir,
		logger:  logger.With("encoder", "pdf"),
	}
}

func (p *PDF) ContentType() string {
	return "application/pdf"
}

type pdfFont struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"col,omitempty"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfImage struct {
	Src    string     `json:"src"`
	Pos    [2]float64 `json:"pos"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

type pdfContent struct {
	Text  []pdfText  `json:"text,omitempty"`
	Image []pdfImage `json:"image,omitempty"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfDocument struct {
	Paper string             `json:"paper"`
	Pages map[string]pdfPage `json:"pages"`
}

// Encode stages picture blocks as files, lays out the blocks top to bottom,
// and renders the result with pdfcpu. Text the fonts cannot render fails
// with ErrUnsupportedText rather than being dropped from the page.
func (p *PDF) Encode(ctx context.Context, blocks []Block) ([]byte, error) {
	if err := installFonts(p.fontDir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := checkCoverage(blocks); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "promptvault-export-*")
	if err != nil {
		return nil, fmt.Errorf("%w: staging dir: %w", ErrEncode, err)
	}
	defer os.RemoveAll(dir)

	sources, err := stageImages(ctx, dir, blocks)
	if err != nil {
		return nil, err
	}

	doc := p.layout(blocks, sources)

	spec, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	conf := model.NewDefaultConfiguration()

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(spec), &out, conf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	pages, err := api.PageCount(bytes.NewReader(out.Bytes()), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: verify output: %w", ErrEncode, err)
	}

	p.logger.Debug("pdf rendered", "pages", pages, "bytes", out.Len())
	return out.Bytes(), nil
}

func checkCoverage(blocks []Block) error {
	for _, b := range blocks {
		style, ok := pdfStyles[b.Kind]
		if !ok {
			continue
		}
		if missing := uncovered(style.font, blockText(b)); len(missing) > 0 {
			return fmt.Errorf("%w: %w: %q", ErrEncode, ErrUnsupportedText, string(missing))
		}
	}
	return nil
}

// blockText is the text a block renders, with tabs expanded and other
// control characters except newlines removed.
func blockText(b Block) string {
	text := b.Text
	if b.Kind == Tip {
		text = TipLabel + text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))
	return strings.Map(func(r rune) rune {
		if r != '\n' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// stageImages writes every picture block to dir concurrently and returns the
// file path for each block index.
func stageImages(ctx context.Context, dir string, blocks []Block) (map[int]string, error) {
	sources := make(map[int]string)
	for i, b := range blocks {
		if b.Kind == Picture {
			sources[i] = filepath.Join(dir, fmt.Sprintf("image%d%s", i, b.Image.Ext()))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stagingLimit)

	for i, path := range sources {
		data := blocks[i].Image.Data
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("%w: stage image: %w", ErrEncode, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

type cursor struct {
	doc   *pdfDocument
	page  int
	y     float64
	empty bool
}

func (p *PDF) layout(blocks []Block, sources map[int]string) *pdfDocument {
	doc := &pdfDocument{Paper: p.paper, Pages: make(map[string]pdfPage)}
	c := &cursor{doc: doc}
	p.newPage(c)

	for i, b := range blocks {
		switch b.Kind {
		case PageBreak:
			if !c.empty {
				p.newPage(c)
			}
		case Picture:
			p.placeImage(c, sources[i])
		default:
			if style, ok := pdfStyles[b.Kind]; ok {
				p.placeText(c, style, blockText(b))
			}
		}
	}

	return doc
}

func (p *PDF) newPage(c *cursor) {
	c.page++
	c.doc.Pages[strconv.Itoa(c.page)] = pdfPage{}
	c.y = p.height - pdfMargin
	c.empty = true
}

func (p *PDF) placeText(c *cursor, style textStyle, text string) {
	lineHeight := float64(style.size) * pdfLineSpacing
	x := pdfMargin + style.indent
	width := p.width - x - pdfMargin

	for _, line := range wrap(text, int(width/(float64(style.size)*style.advance))) {
		if c.y-lineHeight < pdfMargin {
			p.newPage(c)
		}
		c.y -= lineHeight

		page := c.doc.Pages[strconv.Itoa(c.page)]
		page.Content.Text = append(page.Content.Text, pdfText{
			Value: line,
			Pos:   [2]float64{x, c.y},
			Font:  pdfFont{Name: style.font, Size: style.size, Color: style.color},
		})
		c.doc.Pages[strconv.Itoa(c.page)] = page
		c.empty = false
	}

	c.y -= style.after
}

func (p *PDF) placeImage(c *cursor, src string) {
	if c.y-ImageHeight < pdfMargin {
		p.newPage(c)
	}
	c.y -= ImageHeight

	page := c.doc.Pages[strconv.Itoa(c.page)]
	page.Content.Image = append(page.Content.Image, pdfImage{
		Src:    src,
		Pos:    [2]float64{(p.width - ImageWidth) / 2, c.y},
		Width:  ImageWidth,
		Height: ImageHeight,
	})
	c.doc.Pages[strconv.Itoa(c.page)] = page
	c.empty = false
	c.y -= 12
}

// wrap splits text into lines of at most limit runes, breaking after the
// last space that follows some text. Explicit newlines, indentation and
// runs of whitespace are kept; only the space a line breaks on is consumed.
func wrap(text string, limit int) []string {
	if limit < 1 {
		limit = 1
	}

	var lines []string
	for raw := range strings.SplitSeq(text, "\n") {
		r := []rune(raw)
		for len(r) > limit {
			cut := breakAt(r, limit)
			lines = append(lines, string(r[:cut]))
			if r[cut] == ' ' {
				cut++
			}
			r = r[cut:]
		}
		lines = append(lines, string(r))
	}
	return lines
}

// breakAt returns the length of the next line for r, which is longer than
// limit: the position of the last breakable space, or limit when there is
// none.
func breakAt(r []rune, limit int) int {
	for i := limit; i > 0; i-- {
		if r[i] == ' ' && strings.TrimSpace(string(r[:i])) != "" {
			return i
		}
	}
	return limit
}
