package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html lang="en-GB">
<head>
  <title>  Acme   Quarterly Results </title>
  <meta name="description" content="Acme reports record revenue.">
  <script>var tracking = true;</script>
</head>
<body>
  <nav><a href="/">Home</a> <a href="/about">About</a></nav>
  <main>
    <h1>Q3 results</h1>
    <p>Revenue grew   <b>40%</b> year over year.</p>
    <p>Net revenue retention was 125%.</p>
    <style>.x { color: red }</style>
  </main>
  <footer>Copyright Acme</footer>
</body>
</html>`

func TestExtractDocument(t *testing.T) {
	doc, err := extractDocument(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Acme Quarterly Results", doc.Title)
	assert.Equal(t, "Acme reports record revenue.", doc.Description)
	assert.Equal(t, "en-GB", doc.Language)
	assert.Equal(t, "Q3 results\nRevenue grew 40% year over year.\nNet revenue retention was 125%.", doc.Content)
}

func TestExtractDocument_BodyFallback(t *testing.T) {
	doc, err := extractDocument(`<html><head><meta property="og:description" content="OG text"></head>
<body><header>Menu</header><div>First block</div><div>Second block</div></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "", doc.Title)
	assert.Equal(t, "OG text", doc.Description)
	assert.Equal(t, "First block\nSecond block", doc.Content)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "héllo", truncate("héllo", 0))
}
