package template

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecuteSqlTemplate(t *testing.T) {
	// Create a temporary template file
	tmpFile, err := os.CreateTemp("", "test_template.sql")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	// Write test template content
	templateContent := "DELETE FROM {{.Table}} WHERE {{.DateColumn}} < now()::TIMESTAMP - INTERVAL ({{.Days}}) DAY;"
	_, err = tmpFile.WriteString(templateContent)
	assert.NoError(t, err)
	tmpFile.Close()

	tests := []struct {
		name    string
		params  map[string]any
		want    string
		wantErr bool
	}{
		{
			name: "successful template execution",
			params: map[string]any{
				"Table":      "f_trends",
				"DateColumn": "date",
				"Days":       365,
			},
			want:    "DELETE FROM f_trends WHERE date < now()::TIMESTAMP - INTERVAL (365) DAY;",
			wantErr: false,
		},
		{
			name:    "missing parameter",
			params:  map[string]any{},
			want:    "DELETE FROM <no value> WHERE <no value> < now()::TIMESTAMP - INTERVAL (<no value>) DAY;",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExecuteSqlTemplate(tmpFile.Name(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, result)
			}
		})
	}
}

func TestExecuteSqlTemplateString(t *testing.T) {
	result, err := ExecuteSqlTemplateString("SELECT count(*) FROM {{.Table}};", map[string]any{"Table": "f_macro"})
	assert.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM f_macro;", result)

	_, err = ExecuteSqlTemplateString("SELECT {{.Broken", nil)
	assert.Error(t, err)
}

func TestReadSqlTemplate(t *testing.T) {
	// Create a temporary template file
	tmpFile, err := os.CreateTemp("", "test_template.sql")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	content := "SELECT * FROM f_price_daily;"
	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	tmpFile.Close()

	result, err := ReadSqlTemplate(tmpFile.Name())
	assert.NoError(t, err)
	assert.Equal(t, content, result)

	_, err = ReadSqlTemplate("nonexistent.sql")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}
