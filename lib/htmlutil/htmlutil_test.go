package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<div><p>  Asthma is a <b>major</b>\n   noncommunicable disease. </p><p>Second</p></div>",
	))
	require.NoError(t, err)

	require.Equal(t, "Asthma is a major noncommunicable disease.", Text(doc.Find("p").First()))
	require.Equal(t, "Asthma is a major noncommunicable disease. Second", Text(doc.Find("p")))
	require.Equal(t, "", Text(doc.Find("span")))
}

func TestTextKeepsNonBreakingSpaces(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<table><tr><td>358&nbsp;198\n  (323&nbsp;000 to 393&nbsp;000)</td></tr></table>",
	))
	require.NoError(t, err)

	require.Equal(t, "358\u00a0198 (323\u00a0000 to 393\u00a0000)", Text(doc.Find("td")))
}
