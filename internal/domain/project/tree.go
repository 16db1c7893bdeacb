package project

import (
	"path"
	"sort"
	"strings"
)

// FileNode is one entry of the derived, presentation-only file hierarchy.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	IsFolder bool        `json:"isFolder,omitempty"`
	Language string      `json:"language,omitempty"`
	Children []*FileNode `json:"children,omitempty"`
}

// BuildTree derives a folder hierarchy from the flat files mapping. Folders
// sort before files; siblings sort by name.
func BuildTree(files map[string]string) []*FileNode {
	root := &FileNode{IsFolder: true}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		parts := strings.Split(p, "/")
		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			isLeaf := i == len(parts)-1
			child := findChild(current, part, !isLeaf)
			if child == nil {
				child = &FileNode{
					Name:     part,
					Path:     strings.Join(parts[:i+1], "/"),
					IsFolder: !isLeaf,
				}
				if isLeaf {
					child.Language = LanguageFor(p)
				}
				current.Children = append(current.Children, child)
			}
			current = child
		}
	}

	sortTree(root)
	return root.Children
}

func findChild(node *FileNode, name string, folder bool) *FileNode {
	for _, c := range node.Children {
		if c.Name == name && c.IsFolder == folder {
			return c
		}
	}
	return nil
}

func sortTree(node *FileNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsFolder != b.IsFolder {
			return a.IsFolder
		}
		return a.Name < b.Name
	})
	for _, c := range node.Children {
		sortTree(c)
	}
}

var languages = map[string]string{
	".java":       "java",
	".js":         "javascript",
	".mjs":        "javascript",
	".ts":         "typescript",
	".tsx":        "typescript",
	".jsx":        "javascript",
	".vue":        "javascript",
	".json":       "json",
	".xml":        "xml",
	".yml":        "yaml",
	".yaml":       "yaml",
	".md":         "markdown",
	".html":       "html",
	".css":        "css",
	".go":         "go",
	".py":         "python",
	".sql":        "sql",
	".sh":         "bash",
	".properties": "properties",
}

// LanguageFor returns a syntax-highlighting hint for a file path.
func LanguageFor(p string) string {
	if lang, ok := languages[strings.ToLower(path.Ext(p))]; ok {
		return lang
	}
	return "plaintext"
}
