package main

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// UntrackedGoAnalyzer запрещает голые go-операторы в пакетах хранилища и бизнес-логики.
// Фоновая работа там должна идти через workers.Replicator, иначе Drain её не дождётся.
var UntrackedGoAnalyzer = &analysis.Analyzer{
	Name:     "untrackedgo",
	Doc:      "reports go statements in packages whose background work must be tracked by the replicator",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runUntrackedGo,
}

var untrackedGoPackages = "store,service"

func init() {
	UntrackedGoAnalyzer.Flags.StringVar(&untrackedGoPackages, "packages", untrackedGoPackages,
		"comma-separated package path suffixes where go statements are forbidden")
}

func runUntrackedGo(pass *analysis.Pass) (interface{}, error) {
	if !matchesPackage(pass.Pkg.Path(), untrackedGoPackages) {
		return nil, nil
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.GoStmt)(nil)}, func(n ast.Node) {
		file := pass.Fset.File(n.Pos())
		if file != nil && strings.HasSuffix(file.Name(), "_test.go") {
			return
		}
		pass.Reportf(n.Pos(), "untracked go statement: schedule background work through the replicator")
	})
	return nil, nil
}

func matchesPackage(path, suffixes string) bool {
	for _, s := range strings.Split(suffixes, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if path == s || strings.HasSuffix(path, "/"+s) {
			return true
		}
	}
	return false
}
