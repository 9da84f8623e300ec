// Package defaultclient содержит пользовательский анализатор,
// который запрещает http.DefaultClient и функции-обёртки над ним
// (http.Get, http.Head, http.Post, http.PostForm) вне тестов.
// Исходящие запросы должны идти через клиент с настроенным таймаутом.
package defaultclient

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

var forbidden = map[string]bool{
	"net/http.DefaultClient": true,
	"net/http.Get":           true,
	"net/http.Head":          true,
	"net/http.Post":          true,
	"net/http.PostForm":      true,
}

// Analyzer запрещает http.DefaultClient в рабочем коде.
var Analyzer = &analysis.Analyzer{
	Name: "defaultclient",
	Doc:  "запрещает http.DefaultClient и http.Get/Head/Post/PostForm вне тестов",
	Run:  run,
}

// NewAnalyzer возвращает анализатор defaultclient.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		name := pass.Fset.Position(file.Pos()).Filename
		if strings.HasSuffix(name, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			obj := pass.TypesInfo.Uses[sel.Sel]
			if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" {
				return true
			}
			switch obj.(type) {
			case *types.Func, *types.Var:
			default:
				return true
			}
			if forbidden[obj.Pkg().Path()+"."+obj.Name()] {
				pass.Reportf(sel.Pos(), "использование http.%s запрещено, передайте *http.Client с таймаутом", obj.Name())
			}
			return true
		})
	}
	return nil, nil
}
