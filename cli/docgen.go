package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

const (
	docFile     = "cogdoc_gen.go"
	utilsImport = "github.com/a04k/cogslash/utils"
)

var docgenCmd = &cobra.Command{
	Use:   "docgen [dir]",
	Short: "Register handler doc comments as command descriptions",
	Long: `Parse the Go package in dir and write ` + docFile + `, which registers the doc
comment of every documented slash command handler with utils.RegisterDoc.
Commands declared without a description then use it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocgen,
}

var docgenStdout bool

func init() {
	docgenCmd.Flags().BoolVar(&docgenStdout, "stdout", false, "Print the generated file instead of writing it")
}

func runDocgen(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	src, count, err := generateDocs(dir)
	if err != nil {
		return err
	}
	if docgenStdout {
		_, err := cmd.OutOrStdout().Write(src)
		return err
	}

	path := filepath.Join(dir, docFile)
	if err := os.WriteFile(path, src, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d handlers)\n", path, count)
	return nil
}

type handlerDoc struct {
	expr string
	doc  string
}

// generateDocs returns the formatted doc registration file for the package
// in dir and the number of handlers it registers.
func generateDocs(dir string) ([]byte, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == docFile {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	fset := token.NewFileSet()
	var (
		pkgName string
		docs    []handlerDoc
	)
	for _, name := range files {
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, 0, err
		}
		if pkgName == "" {
			pkgName = file.Name.Name
		} else if file.Name.Name != pkgName {
			return nil, 0, fmt.Errorf("%s: package %s, expected %s", name, file.Name.Name, pkgName)
		}
		for _, d := range file.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || fd.Doc == nil || !isHandler(fd) {
				continue
			}
			expr := funcExpr(fd)
			if expr == "" {
				continue
			}
			docs = append(docs, handlerDoc{expr: expr, doc: docText(fd.Name.Name, fd.Doc.Text())})
		}
	}
	if pkgName == "" {
		return nil, 0, fmt.Errorf("no Go files in %s", dir)
	}
	if len(docs) == 0 {
		return nil, 0, fmt.Errorf("no documented handlers in %s", dir)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by cogctl docgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)
	fmt.Fprintf(&buf, "import %q\n\n", utilsImport)
	fmt.Fprintf(&buf, "func init() {\n")
	for _, d := range docs {
		fmt.Fprintf(&buf, "\tutils.RegisterDoc(%s, %s)\n", d.expr, strconv.Quote(d.doc))
	}
	fmt.Fprintf(&buf, "}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, 0, fmt.Errorf("format generated code: %w", err)
	}
	return src, len(docs), nil
}

// isHandler matches func(*model.Context, A) error without type parameters.
func isHandler(fd *ast.FuncDecl) bool {
	t := fd.Type
	if t.TypeParams != nil && t.TypeParams.NumFields() > 0 {
		return false
	}
	if t.Params.NumFields() != 2 || t.Results.NumFields() != 1 {
		return false
	}
	if res, ok := t.Results.List[0].Type.(*ast.Ident); !ok || res.Name != "error" {
		return false
	}
	star, ok := t.Params.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	switch x := star.X.(type) {
	case *ast.SelectorExpr:
		return x.Sel.Name == "Context"
	case *ast.Ident:
		return x.Name == "Context"
	}
	return false
}

// funcExpr renders the expression naming fd: F, T.M or (*T).M. Methods of
// generic types are skipped.
func funcExpr(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return fd.Name.Name
	}
	switch x := fd.Recv.List[0].Type.(type) {
	case *ast.Ident:
		return x.Name + "." + fd.Name.Name
	case *ast.StarExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return "(*" + id.Name + ")." + fd.Name.Name
		}
	}
	return ""
}

// docText drops the leading identifier Go doc comments start with, so
// "Ping replies with pong." becomes "Replies with pong.".
func docText(name, doc string) string {
	doc = strings.TrimSpace(doc)
	rest, ok := strings.CutPrefix(doc, name+" ")
	if !ok {
		return doc
	}
	r, size := utf8.DecodeRuneInString(rest)
	return string(unicode.ToUpper(r)) + rest[size:]
}
