// Package export turns a selected set of prompts into a downloadable
// teaching document. Assemble produces a format-neutral block sequence;
// encoders render that sequence as DOCX or PDF.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/JaimeStill/promptvault/internal/prompts"
)

// Kind identifies a content block.
type Kind int

const (
	Heading Kind = iota
	Meta
	Body
	Picture
	PictureError
	Tip
	PageBreak
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Meta:
		return "meta"
	case Body:
		return "body"
	case Picture:
		return "picture"
	case PictureError:
		return "picture_error"
	case Tip:
		return "tip"
	case PageBreak:
		return "page_break"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Image bounding box in points; encoders center the image in it.
const (
	ImageWidth  = 400
	ImageHeight = 400
)

// Text rendered for blocks whose wording is fixed.
const (
	TipLabel       = "Tip for students: "
	ImageErrorText = "[Error inserting image]"
	metaTemplate   = "Model: %s | Category: %s"
)

const (
	imageFormatPNG  = "png"
	imageFormatJPEG = "jpeg"
)

var dataURL = regexp.MustCompile(`(?s)^data:image/(\w+);base64,(.+)$`)

// Image is decoded picture data ready for embedding.
type Image struct {
	Data   []byte
	Format string
}

// Ext returns the file extension for the image format.
func (i Image) Ext() string {
	return "." + i.Format
}

// ContentType returns the MIME type for the image format.
func (i Image) ContentType() string {
	return "image/" + i.Format
}

// Block is one unit of document content. Blocks carry no record identity.
type Block struct {
	Kind  Kind
	Text  string
	Image *Image
}

// Assemble converts records into an ordered block sequence: heading, meta
// line, body, an optional picture (or an error line when the payload cannot
// be decoded), an optional tip, and a page break between records.
// An empty input yields an empty sequence.
func Assemble(records []prompts.Prompt) []Block {
	blocks := make([]Block, 0, len(records)*4)

	for i, p := range records {
		blocks = append(blocks,
			Block{Kind: Heading, Text: p.Title},
			Block{Kind: Meta, Text: fmt.Sprintf(metaTemplate, p.Model, p.Category)},
			Block{Kind: Body, Text: p.Content},
		)

		if p.HasImage() {
			img, err := DecodeImage(p.ImageBase64)
			if err != nil {
				blocks = append(blocks, Block{Kind: PictureError, Text: ImageErrorText})
			} else {
				blocks = append(blocks, Block{Kind: Picture, Image: img})
			}
		}

		if p.HasNotes() {
			blocks = append(blocks, Block{Kind: Tip, Text: p.Notes})
		}

		if i < len(records)-1 {
			blocks = append(blocks, Block{Kind: PageBreak})
		}
	}

	return blocks
}

// DecodeImage decodes a data URL of the form data:image/<subtype>;base64,<payload>.
// JPEG and PNG payloads are kept as-is; any other decodable format is
// re-encoded as PNG.
func DecodeImage(payload string) (*Image, error) {
	m := dataURL.FindStringSubmatch(strings.TrimSpace(payload))
	if m == nil {
		return nil, fmt.Errorf("%w: not an inline image data URL", ErrImageDecode)
	}

	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(m[2]), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", ErrImageDecode, m[1], err)
	}

	switch format {
	case imageFormatJPEG, imageFormatPNG:
		return &Image{Data: data, Format: format}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageDecode, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: re-encode %s: %w", ErrImageDecode, format, err)
	}
	return &Image{Data: buf.Bytes(), Format: imageFormatPNG}, nil
}
