package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/datamapper/pkg/errors"
)

// RenderSVG lays out dot and returns an SVG framed for the editor canvas.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := layout(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return frameSVG(out), nil
}

// RenderPNG lays out dot and returns a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return layout(ctx, dot, graphviz.PNG)
}

func layout(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "start graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse generated DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "lay out %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgOpenTag = regexp.MustCompile(`<svg\b[^>]*>`)
	// Attributes frameSVG owns on the root element.
	frameAttrs = regexp.MustCompile(`\s(?:width|height|viewBox|preserveAspectRatio)="[^"]*"`)
	viewBoxRe  = regexp.MustCompile(`viewBox="([^"]*)"`)
)

// frameSVG rewrites the root element so the diagram scales from a zero
// origin and stays pinned to the top left, where the input tables sit, when
// the canvas is wider than the graph. Other root attributes are kept.
func frameSVG(svg []byte) []byte {
	loc := svgOpenTag.FindIndex(svg)
	if loc == nil {
		return svg
	}
	tag := svg[loc[0]:loc[1]]
	w, h, ok := viewBoxSize(tag)
	if !ok {
		return svg
	}

	rest := frameAttrs.ReplaceAll(tag[len("<svg"):], nil)
	var framed bytes.Buffer
	framed.Write(svg[:loc[0]])
	fmt.Fprintf(&framed, `<svg viewBox="0 0 %s %s" width="%d" height="%d" preserveAspectRatio="xMinYMin meet"`,
		trimFloat(w), trimFloat(h), int(math.Ceil(w)), int(math.Ceil(h)))
	framed.Write(rest)
	framed.Write(svg[loc[1]:])
	return framed.Bytes()
}

// viewBoxSize returns the width and height of tag's viewBox.
func viewBoxSize(tag []byte) (w, h float64, ok bool) {
	m := viewBoxRe.FindSubmatch(tag)
	if m == nil {
		return 0, 0, false
	}
	f := strings.Fields(strings.ReplaceAll(string(m[1]), ",", " "))
	if len(f) != 4 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(f[2], 64)
	h, errH := strconv.ParseFloat(f[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
