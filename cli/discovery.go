package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/a04k/cogslash/utils"
)

// CommandDecl is one cogext declaration found in the source.
type CommandDecl struct {
	Kind        string `json:"kind"` // "slash" or "subcommand"
	Handler     string `json:"handler"`
	Name        string `json:"name"`
	Base        string `json:"base,omitempty"`
	Group       string `json:"group,omitempty"`
	Description string `json:"description,omitempty"`
	File        string `json:"file"`
	Line        int    `json:"line"`
}

// Path is the command as typed in Discord, without the slash.
func (d CommandDecl) Path() string {
	parts := []string{d.Name}
	if d.Kind == "subcommand" {
		parts = []string{d.Base}
		if d.Group != "" {
			parts = append(parts, d.Group)
		}
		parts = append(parts, d.Name)
	}
	return strings.Join(parts, " ")
}

var declFuncs = map[string]string{
	"Slash":          "slash",
	"MustSlash":      "slash",
	"Subcommand":     "subcommand",
	"MustSubcommand": "subcommand",
}

// discoverCommands walks root and returns every cogext declaration, sorted
// by command path.
func discoverCommands(root string) ([]CommandDecl, error) {
	var decls []CommandDecl

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			return nil
		}
		found, err := parseDeclFile(path)
		if err != nil {
			return err
		}
		decls = append(decls, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].Path() < decls[j].Path()
	})
	return decls, nil
}

// parseDeclFile extracts the cogext declarations of one file
func parseDeclFile(filename string) ([]CommandDecl, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, nil, 0)
	if err != nil {
		return nil, err
	}

	pkgName := cogextImportName(file)
	if pkgName == "" {
		return nil, nil
	}

	var decls []CommandDecl
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) < 2 {
			return true
		}
		fun := call.Fun
		// cogext.Slash[Args](...)
		if idx, ok := fun.(*ast.IndexExpr); ok {
			fun = idx.X
		}
		sel, ok := fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok || ident.Name != pkgName {
			return true
		}
		kind, ok := declFuncs[sel.Sel.Name]
		if !ok {
			return true
		}

		decl := CommandDecl{
			Kind:    kind,
			Handler: handlerName(call.Args[0]),
			File:    filename,
			Line:    fset.Position(call.Pos()).Line,
		}
		if lit, ok := call.Args[1].(*ast.CompositeLit); ok {
			extractOptions(lit, &decl)
		}
		if decl.Name == "" {
			decl.Name = utils.CommandName(decl.Handler)
		}
		decls = append(decls, decl)
		return true
	})
	return decls, nil
}

// cogextImportName returns the name the file uses for the cogext package,
// or "" when it does not import it.
func cogextImportName(file *ast.File) string {
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || (path != "cogext" && !strings.HasSuffix(path, "/cogext")) {
			continue
		}
		if imp.Name != nil {
			return imp.Name.Name
		}
		return "cogext"
	}
	return ""
}

func handlerName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.SelectorExpr:
		return x.Sel.Name
	case *ast.Ident:
		return x.Name
	}
	return ""
}

// extractOptions reads the string literal fields of a SlashOptions or
// SubcommandOptions literal.
func extractOptions(lit *ast.CompositeLit, decl *CommandDecl) {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		basic, ok := kv.Value.(*ast.BasicLit)
		if !ok || basic.Kind != token.STRING {
			continue
		}
		value, err := strconv.Unquote(basic.Value)
		if err != nil {
			continue
		}
		switch key.Name {
		case "Name":
			decl.Name = value
		case "Base":
			decl.Base = value
		case "SubcommandGroup":
			decl.Group = value
		case "Description":
			decl.Description = value
		}
	}
}
