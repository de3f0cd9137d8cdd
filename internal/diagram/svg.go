// Package diagram renders a parsed document as an SVG entity diagram.
//
// Layout is a simple fixed grid: entities are placed left to right, top to
// bottom in declaration order, and declared relationships are drawn as
// straight lines between box centers. The renderer is best-effort and
// never fails on a well-formed document.
package diagram

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemadoc/internal/generator"
	"github.com/tordrt/schemadoc/internal/schema"
)

const (
	boxWidth   = 220
	rowHeight  = 18
	headerRows = 2
	marginX    = 40
	marginY    = 40
	gapX       = 60
	gapY       = 50
	columns    = 3
	maxFields  = 12
)

type box struct {
	entity schema.Entity
	x, y   int
	height int
}

// Render writes the document as a standalone SVG image.
func Render(w io.Writer, doc *schema.Document) {
	boxes, width, height := layout(doc)

	_, _ = fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="monospace" font-size="12">`+"\n", width, height)
	_, _ = fmt.Fprintln(w, `<rect width="100%" height="100%" fill="white"/>`)

	if doc.Relationships != nil {
		renderEdges(w, doc.Relationships.Relationships, boxes)
	}
	for _, b := range boxes {
		renderBox(w, b)
	}
	_, _ = fmt.Fprintln(w, "</svg>")
}

func layout(doc *schema.Document) (map[string]box, int, int) {
	boxes := make(map[string]box)
	entities := doc.Entities()

	x, y := marginX, marginY
	rowMax := 0
	for i, entity := range entities {
		h := boxHeight(entity)
		boxes[entity.Name] = box{entity: entity, x: x, y: y, height: h}
		if h > rowMax {
			rowMax = h
		}
		if (i+1)%columns == 0 {
			x = marginX
			y += rowMax + gapY
			rowMax = 0
		} else {
			x += boxWidth + gapX
		}
	}

	width := marginX*2 + columns*boxWidth + (columns-1)*gapX
	height := y + rowMax + marginY
	if len(entities) == 0 {
		height = marginY * 2
	}
	return boxes, width, height
}

func boxHeight(entity schema.Entity) int {
	rows := len(entity.Fields)
	if rows > maxFields {
		rows = maxFields + 1 // truncation row
	}
	return (rows + headerRows) * rowHeight
}

func renderBox(w io.Writer, b box) {
	fill := "#f8f8f8"
	if b.entity.Kind == schema.EmbeddedEntity {
		fill = "#eef3fb"
	}
	_, _ = fmt.Fprintf(w, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="black"/>`+"\n",
		b.x, b.y, boxWidth, b.height, fill)
	_, _ = fmt.Fprintf(w, `<text x="%d" y="%d" font-weight="bold">%s</text>`+"\n",
		b.x+8, b.y+rowHeight, escape(b.entity.Name))
	_, _ = fmt.Fprintf(w, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="black"/>`+"\n",
		b.x, b.y+rowHeight+6, b.x+boxWidth, b.y+rowHeight+6)

	for i, field := range b.entity.Fields {
		if i == maxFields {
			_, _ = fmt.Fprintf(w, `<text x="%d" y="%d" fill="gray">… %d more</text>`+"\n",
				b.x+8, b.y+(headerRows+i+1)*rowHeight, len(b.entity.Fields)-maxFields)
			break
		}
		label := fmt.Sprintf("%s %s: %s", prefixString(field), field.Name(), generator.FormatDataType(field.Type))
		if field.FindConstraint("PK") != nil {
			label += " PK"
		}
		_, _ = fmt.Fprintf(w, `<text x="%d" y="%d">%s</text>`+"\n",
			b.x+8, b.y+(headerRows+i+1)*rowHeight, escape(label))
	}
}

func renderEdges(w io.Writer, rels []schema.Relationship, boxes map[string]box) {
	for _, rel := range rels {
		from, okFrom := boxes[rel.From]
		to, okTo := boxes[rel.To]
		if !okFrom || !okTo {
			// Unresolved entities are a validator concern; skip the edge.
			continue
		}
		x1, y1 := from.x+boxWidth/2, from.y+from.height/2
		x2, y2 := to.x+boxWidth/2, to.y+to.height/2
		dash := ""
		if rel.Kind == schema.Inheritance {
			dash = ` stroke-dasharray="6,3"`
		}
		_, _ = fmt.Fprintf(w, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#555"%s/>`+"\n", x1, y1, x2, y2, dash)
		_, _ = fmt.Fprintf(w, `<text x="%d" y="%d" fill="#555">%s</text>`+"\n",
			(x1+x2)/2, (y1+y2)/2-4, escape(string(rel.Kind)))
	}
}

func prefixString(field schema.Field) string {
	var b strings.Builder
	for _, p := range field.Prefixes {
		b.WriteRune(rune(p))
	}
	return b.String()
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
