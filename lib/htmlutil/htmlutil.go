package htmlutil

import (
	"bytes"

	"asthma-pipeline/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func writeText(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeText(child, buffer)
	}
}

// Text returns the whitespace-collapsed text of every node in sel. Non-breaking spaces
// are kept.
func Text(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		writeText(n, &buffer)
	}
	return textutil.CollapseWhitespace(buffer.String())
}
