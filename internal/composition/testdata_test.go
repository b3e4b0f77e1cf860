package composition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const thumbnailsYAML = `
name: pdf-thumbnails
description: Extract images from a PDF and make thumbnails
version: "1.2"
settings:
  Jobs: 4
  keep_temp: false
steps:
  - name: extract
    type: pdf_extract
    description: pull every embedded image
    params:
      input: "{workflow_input}"
      output_dir: "{temp_dir}/images"
      Format: png
  - name: shrink
    type: Resize
    condition: extracted_count > 0
    params:
      max_width: 800
      quality: 85
  - name: stamp
    type: watermark
    params:
      watermark: logo.png
      position: southeast
      sizes: [64, 128]
hooks:
  pre_workflow:
    - echo starting {workflow_name}
  on_failure:
    - echo failed at {failed_step}
  on_success: []
`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
