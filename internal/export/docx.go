package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// emuPerPixel converts the image bounding box to EMUs at 96 DPI.
const emuPerPixel = 9525

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="jpeg" ContentType="image/jpeg"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>
<w:pPr><w:keepNext/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:color w:val="2F5496"/><w:sz w:val="32"/></w:rPr></w:style>
</w:styles>`

const documentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><w:body>`

const documentClose = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
	`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/>` +
	`</w:sectPr></w:body></w:document>`

// DOCX renders blocks as a WordprocessingML package.
type DOCX struct{}

// NewDOCX creates a DOCX encoder.
func NewDOCX() *DOCX {
	return &DOCX{}
}

func (d *DOCX) ContentType() string {
	return docxContentType
}

type part struct {
	name string
	data []byte
}

type media struct {
	rel  string
	name string
	data []byte
}

// Encode writes the package parts in a fixed order so output is deterministic.
func (d *DOCX) Encode(ctx context.Context, blocks []Block) ([]byte, error) {
	var body strings.Builder
	var images []media

	body.WriteString(documentOpen)
	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch b.Kind {
		case Heading:
			paragraph(&body, `<w:pStyle w:val="Heading1"/><w:spacing w:after="120"/>`, run(b.Text, ""))
		case Meta:
			paragraph(&body, `<w:spacing w:after="200"/>`, run(b.Text, `<w:color w:val="666666"/><w:sz w:val="20"/>`))
		case Body:
			paragraph(&body,
				`<w:pBdr><w:left w:val="single" w:sz="6" w:space="10" w:color="CCCCCC"/></w:pBdr>`+
					`<w:spacing w:before="120" w:after="240"/><w:ind w:left="720"/>`,
				run(b.Text, `<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New" w:cs="Courier New"/><w:sz w:val="22"/>`))
		case Picture:
			n := len(images) + 1
			m := media{
				rel:  fmt.Sprintf("rIdImg%d", n),
				name: fmt.Sprintf("image%d%s", n, b.Image.Ext()),
				data: b.Image.Data,
			}
			images = append(images, m)
			paragraph(&body, `<w:jc w:val="center"/><w:spacing w:after="240"/>`, drawing(n, m))
		case PictureError:
			paragraph(&body, "", run(b.Text, `<w:color w:val="FF0000"/>`))
		case Tip:
			paragraph(&body, `<w:spacing w:before="120" w:after="240"/>`, run(TipLabel+b.Text, `<w:i/><w:sz w:val="22"/>`))
		case PageBreak:
			paragraph(&body, `<w:pageBreakBefore/>`, "")
		}
	}
	body.WriteString(documentClose)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []part{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", []byte(body.String())},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/_rels/document.xml.rels", documentRels(images)},
	}
	for _, m := range images {
		parts = append(parts, part{"word/media/" + m.name, m.data})
	}

	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", ErrEncode, p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("%w: write %s: %w", ErrEncode, p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

func paragraph(sb *strings.Builder, props, runs string) {
	sb.WriteString("<w:p>")
	if props != "" {
		sb.WriteString("<w:pPr>" + props + "</w:pPr>")
	}
	sb.WriteString(runs)
	sb.WriteString("</w:p>")
}

// run renders text as a single run. Line breaks become w:br elements.
func run(text, props string) string {
	var sb strings.Builder
	sb.WriteString("<w:r>")
	if props != "" {
		sb.WriteString("<w:rPr>" + props + "</w:rPr>")
	}
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if i > 0 {
			sb.WriteString("<w:br/>")
		}
		sb.WriteString(`<w:t xml:space="preserve">`)
		sb.WriteString(escape(line))
		sb.WriteString("</w:t>")
	}
	sb.WriteString("</w:r>")
	return sb.String()
}

func drawing(n int, m media) string {
	cx := ImageWidth * emuPerPixel
	cy := ImageHeight * emuPerPixel
	return fmt.Sprintf(`<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:docPr id="%[3]d" name="Picture %[3]d"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%[3]d" name="%[4]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[5]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>`+
		`</a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, n, m.name, m.rel)
}

func documentRels(images []media) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for _, m := range images {
		fmt.Fprintf(&sb,
			`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`,
			m.rel, m.name)
	}
	sb.WriteString(`</Relationships>`)
	return []byte(sb.String())
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
