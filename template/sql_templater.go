package template

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// ExecuteSqlTemplate reads a SQL template file and renders it with params.
func ExecuteSqlTemplate(templatePath string, params map[string]any) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", err
	}

	return ExecuteSqlTemplateString(string(content), params)
}

// ExecuteSqlTemplateString renders an in-memory SQL template with params.
func ExecuteSqlTemplateString(content string, params map[string]any) (string, error) {
	tmpl, err := template.New("sql").Parse(content)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ReadSqlTemplate reads a SQL template file and returns its contents as a string
func ReadSqlTemplate(templatePath string) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(content), nil
}
