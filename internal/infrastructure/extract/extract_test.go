package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtract(t *testing.T) {
	t.Parallel()

	got, err := Text{}.Extract(context.Background(), []byte("  Ambulance arrived 40 minutes late.\n"))
	require.NoError(t, err)
	assert.Equal(t, "  Ambulance arrived 40 minutes late.\n", got)
}

func TestHTMLExtract(t *testing.T) {
	t.Parallel()

	html := `<html>
	<head><title>Regulation 28 report</title><style>body { color: red; }</style></head>
	<body>
	  <script>var tracking = true;</script>
	  <h1>REGULATION 28: REPORT TO PREVENT FUTURE DEATHS</h1>


	  <p>The ambulance arrived
	  40 minutes late.</p>
	</body>
	</html>`

	got, err := HTML{}.Extract(context.Background(), []byte(html))
	require.NoError(t, err)

	assert.Equal(t, "REGULATION 28: REPORT TO PREVENT FUTURE DEATHS\n\nThe ambulance arrived\n40 minutes late.", got)
	assert.NotContains(t, got, "tracking")
	assert.NotContains(t, got, "color")
}

func TestPDFExtractEmpty(t *testing.T) {
	t.Parallel()

	got, err := PDF{}.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPDFExtractInvalid(t *testing.T) {
	t.Parallel()

	_, err := PDF{}.Extract(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := NewDefaultRegistry()
	for _, ext := range []string{".txt", ".html", ".htm", ".pdf"} {
		assert.True(t, reg.Supports(ext), ext)
	}
	assert.False(t, reg.Supports(".docx"))
}
