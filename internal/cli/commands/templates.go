package commands

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed all:templates
var templateFS embed.FS

const templateSuffix = ".tmpl"

// templateData is the data rendered into *.tmpl files.
type templateData struct {
	Dialect string
	Schema  string
}

// copyTemplate copies an embedded project template to targetDir and returns
// the paths it wrote, relative to targetDir. Existing files are left alone
// unless force is set. Files ending in .tmpl are rendered with data and
// written without the suffix.
func copyTemplate(templateName, targetDir string, data templateData, force bool) ([]string, error) {
	root := path.Join("templates", templateName)
	if _, err := fs.Stat(templateFS, root); err != nil {
		return nil, fmt.Errorf("unknown template %q", templateName)
	}

	var written []string
	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if rel == "" {
			return nil
		}
		rel = renameSpecialFiles(rel)
		targetPath := filepath.Join(targetDir, filepath.FromSlash(rel))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0o750)
		}
		if !force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if strings.HasSuffix(p, templateSuffix) {
			if content, err = renderTemplate(p, content, data); err != nil {
				return err
			}
		}
		if err := os.WriteFile(targetPath, content, 0o600); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})
	return written, err
}

func renderTemplate(name string, content []byte, data templateData) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// renameSpecialFiles maps embedded names to their on-disk names: dotfiles
// are stored without the dot and rendered files lose their .tmpl suffix.
func renameSpecialFiles(rel string) string {
	rel = strings.TrimSuffix(rel, templateSuffix)
	dir, base := path.Split(rel)
	if base == "gitignore" {
		return dir + ".gitignore"
	}
	return rel
}

// groupTemplateFiles groups written files by their top-level directory;
// files at the root are grouped under "config".
func groupTemplateFiles(files []string) map[string][]string {
	groups := make(map[string][]string)
	for _, f := range files {
		top, _, nested := strings.Cut(f, "/")
		if !nested {
			top = "config"
		}
		groups[top] = append(groups[top], f)
	}
	return groups
}
